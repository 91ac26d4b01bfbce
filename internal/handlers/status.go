package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vlefranc/carnet/internal/db"
	"github.com/vlefranc/carnet/internal/engine"
	"github.com/vlefranc/carnet/internal/middleware"
	"github.com/vlefranc/carnet/internal/models"
	"github.com/vlefranc/carnet/internal/rules"
)

// StatusHandler serves the computed maintenance schedule of a vehicle
type StatusHandler struct {
	engine   *engine.Engine
	catalog  *rules.Catalog
	vehicles db.VehicleCollection
	events   db.EventCollection
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(eng *engine.Engine, catalog *rules.Catalog, vehicles db.VehicleCollection, events db.EventCollection) *StatusHandler {
	return &StatusHandler{
		engine:   eng,
		catalog:  catalog,
		vehicles: vehicles,
		events:   events,
	}
}

// Statuses computes the current maintenance status list for a vehicle,
// sorted most urgent first
func (h *StatusHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), id)
	if err != nil {
		httpStoreError(w, err, "Failed to load vehicle")
		return
	}
	if claims.Role != models.RoleAdmin && vehicle.OwnerID != claims.UserID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	events, err := h.events.FindEventsByVehicle(r.Context(), vehicle.ID.Hex())
	if err != nil {
		http.Error(w, "Failed to load events", http.StatusInternalServerError)
		return
	}

	statuses := h.engine.ComputeStatuses(*vehicle, events, time.Now())
	if statuses == nil {
		statuses = []models.MaintenanceStatus{}
	}

	writeJSON(w, http.StatusOK, statuses)
}

// MaintenanceTypes returns every maintenance type known to the rule
// catalog, for event-entry pickers
func (h *StatusHandler) MaintenanceTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Types())
}
