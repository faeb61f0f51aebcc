// Package device manages the registry of telemetry devices.
//
// Every device belongs to exactly one account; ownership is assigned at
// creation from the authenticated caller and never transfers. The
// repository exposes OwnerOf for the authorisation layer so access checks
// and data access share one source of truth.
package device
