package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vlefranc/carnet/internal/db"
	"github.com/vlefranc/carnet/internal/middleware"
	"github.com/vlefranc/carnet/internal/models"
)

// EventRequest is the payload for recording a maintenance event.
type EventRequest struct {
	Type  string  `json:"type"`
	Date  string  `json:"date"`
	Km    int     `json:"km"`
	Cost  float64 `json:"cost"`
	Notes string  `json:"notes"`
	Photo string  `json:"photo"`
}

// EventHandler handles maintenance history requests
type EventHandler struct {
	events   db.EventCollection
	vehicles db.VehicleCollection
}

// NewEventHandler creates a new event handler
func NewEventHandler(events db.EventCollection, vehicles db.VehicleCollection) *EventHandler {
	return &EventHandler{
		events:   events,
		vehicles: vehicles,
	}
}

// Create records a maintenance event on a vehicle. When the event's
// odometer reading exceeds the vehicle's current one, the vehicle is
// bumped forward so later distance computations start from it.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	vehicle, ok := h.loadOwnedVehicle(w, r, mux.Vars(r)["id"], "edit_events")
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var req EventRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Type == "" {
		http.Error(w, "Event type is required", http.StatusBadRequest)
		return
	}
	if req.Km < 0 {
		http.Error(w, "Odometer reading must not be negative", http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		http.Error(w, "Invalid event date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	event := models.MaintenanceEvent{
		ID:        primitive.NewObjectID(),
		VehicleID: vehicle.ID.Hex(),
		Type:      req.Type,
		Date:      date,
		Km:        req.Km,
		Cost:      req.Cost,
		Notes:     req.Notes,
		Photo:     req.Photo,
		CreatedAt: time.Now(),
	}

	if err := h.events.InsertEvent(r.Context(), event); err != nil {
		http.Error(w, "Failed to create event", http.StatusInternalServerError)
		return
	}

	if event.Km > vehicle.Km {
		vehicle.Km = event.Km
		if err := h.vehicles.UpdateVehicle(r.Context(), vehicle.ID.Hex(), *vehicle); err != nil {
			// The event is already stored; log and carry on.
			logrus.WithError(err).WithField("vehicle_id", vehicle.ID.Hex()).
				Warn("Failed to bump vehicle odometer")
		}
	}

	writeJSON(w, http.StatusCreated, event)
}

// List returns a vehicle's maintenance history, most recent first
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicle, ok := h.loadOwnedVehicle(w, r, mux.Vars(r)["id"], "view_events")
	if !ok {
		return
	}

	events, err := h.events.FindEventsByVehicle(r.Context(), vehicle.ID.Hex())
	if err != nil {
		http.Error(w, "Failed to list events", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []models.MaintenanceEvent{}
	}

	writeJSON(w, http.StatusOK, events)
}

// Delete removes a maintenance event
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	event, err := h.events.FindEventByID(r.Context(), id)
	if err != nil {
		httpStoreError(w, err, "Failed to load event")
		return
	}

	// Ownership follows the parent vehicle.
	if _, ok := h.loadOwnedVehicle(w, r, event.VehicleID, "edit_events"); !ok {
		return
	}

	if err := h.events.DeleteEvent(r.Context(), id); err != nil {
		httpStoreError(w, err, "Failed to delete event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Event deleted"})
}

func (h *EventHandler) loadOwnedVehicle(w http.ResponseWriter, r *http.Request, id, action string) (*models.Vehicle, bool) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return nil, false
	}
	if !claims.Role.Can(action) {
		http.Error(w, "Insufficient permissions", http.StatusForbidden)
		return nil, false
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), id)
	if err != nil {
		httpStoreError(w, err, "Failed to load vehicle")
		return nil, false
	}
	if claims.Role != models.RoleAdmin && vehicle.OwnerID != claims.UserID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}
	return vehicle, true
}
