// Package api provides the HTTP REST API for Sentra.
//
// It exposes account registration and login, device registry operations,
// and sensor-reading access. All device and reading routes require a
// bearer session token and pass through an ownership check; a device that
// exists but belongs to another account returns 403, never 404.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
