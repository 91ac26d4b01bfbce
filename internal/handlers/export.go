package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/vlefranc/carnet/internal/db"
	"github.com/vlefranc/carnet/internal/export"
	"github.com/vlefranc/carnet/internal/middleware"
	"github.com/vlefranc/carnet/internal/models"
)

// ExportHandler renders a vehicle's logbook as a downloadable PDF
type ExportHandler struct {
	vehicles db.VehicleCollection
	events   db.EventCollection
}

// NewExportHandler creates a new export handler
func NewExportHandler(vehicles db.VehicleCollection, events db.EventCollection) *ExportHandler {
	return &ExportHandler{
		vehicles: vehicles,
		events:   events,
	}
}

// Carnet streams the PDF logbook of a vehicle
func (h *ExportHandler) Carnet(w http.ResponseWriter, r *http.Request) {
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

	// Render to a buffer first so a generation failure never sends a
	// truncated document with a 200 status.
	var buf bytes.Buffer
	if err := export.WriteCarnet(&buf, *vehicle, events); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	name := strings.ReplaceAll(vehicle.Name, " ", "_")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=carnet_%s.pdf", name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.Write(buf.Bytes())
}
