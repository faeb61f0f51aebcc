package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avollmer/sentra/internal/auth"
	"github.com/avollmer/sentra/internal/device"
)

// deviceRequest is the request body for creating and updating devices.
type deviceRequest struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Location string `json:"location,omitempty"`
}

// handleListDevices returns the caller's devices.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r)
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	devices, err := s.devices.ListByOwner(r.Context(), identity.AccountID)
	if err != nil {
		s.logger.Error("listing devices failed", "error", err)
		writeInternalError(w, "listing devices failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleCreateDevice registers a new device owned by the caller.
// Ownership is taken from the session, never from the request body.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r)
	if !ok {
		writeUnauthorized(w, "authentication required")
		return
	}

	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	d := &device.Device{
		OwnerID:  identity.AccountID,
		Name:     req.Name,
		Kind:     device.Kind(req.Kind),
		Location: req.Location,
	}
	if err := s.devices.Create(r.Context(), d); err != nil {
		if errors.Is(err, device.ErrInvalidName) || errors.Is(err, device.ErrInvalidKind) {
			writeBadRequest(w, err.Error())
			return
		}
		s.logger.Error("creating device failed", "error", err)
		writeInternalError(w, "creating device failed")
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

// handleGetDevice returns a single device after an ownership check.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	d, ok := s.authorizedDevice(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// handleUpdateDevice modifies the caller's device.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	d, ok := s.authorizedDevice(w, r)
	if !ok {
		return
	}

	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name != "" {
		d.Name = req.Name
	}
	if req.Kind != "" {
		d.Kind = device.Kind(req.Kind)
	}
	if req.Location != "" {
		d.Location = req.Location
	}

	if err := s.devices.Update(r.Context(), d); err != nil {
		if errors.Is(err, device.ErrInvalidName) || errors.Is(err, device.ErrInvalidKind) {
			writeBadRequest(w, err.Error())
			return
		}
		s.logger.Error("updating device failed", "error", err)
		writeInternalError(w, "updating device failed")
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// handleDeleteDevice removes the caller's device and its readings.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	d, ok := s.authorizedDevice(w, r)
	if !ok {
		return
	}

	if err := s.devices.Delete(r.Context(), d.ID); err != nil {
		s.logger.Error("deleting device failed", "error", err)
		writeInternalError(w, "deleting device failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorizedDevice runs the ownership check for the {id} route and loads
// the device. On failure it writes the error response and returns
// ok=false: 404 for an unknown device, 403 when it belongs to another
// account.
func (s *Server) authorizedDevice(w http.ResponseWriter, r *http.Request) (*device.Device, bool) {
	identity, ok := identityFrom(r)
	if !ok {
		writeUnauthorized(w, "authentication required")
		return nil, false
	}

	deviceID := chi.URLParam(r, "id")

	if err := s.guard.AuthorizeDevice(r.Context(), identity, deviceID); err != nil {
		switch {
		case errors.Is(err, auth.ErrDeviceNotFound):
			writeNotFound(w, "device not found")
		case errors.Is(err, auth.ErrForbidden):
			writeForbidden(w, "device belongs to another account")
		default:
			s.logger.Error("device authorisation failed", "error", err, "device_id", deviceID)
			writeInternalError(w, "device lookup failed")
		}
		return nil, false
	}

	d, err := s.devices.GetByID(r.Context(), deviceID)
	if err != nil {
		// Deleted between the check and the load.
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return nil, false
		}
		s.logger.Error("loading device failed", "error", err, "device_id", deviceID)
		writeInternalError(w, "device lookup failed")
		return nil, false
	}

	return d, true
}
