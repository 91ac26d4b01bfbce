package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vlefranc/carnet/internal/db"
	"github.com/vlefranc/carnet/internal/models"
)

func TestExportHandler_Carnet(t *testing.T) {
	vehicleID := primitive.NewObjectID()

	t.Run("streams a PDF attachment", func(t *testing.T) {
		mockVehicles := new(MockVehicleCollection)
		mockEvents := new(MockEventCollection)
		handler := NewExportHandler(db.VehicleCollection(mockVehicles), db.EventCollection(mockEvents))

		vehicle := &models.Vehicle{
			ID:      vehicleID,
			OwnerID: "u1",
			Name:    "Clio 4",
			Fuel:    models.FuelEssence,
			Km:      42000,
		}
		history := []models.MaintenanceEvent{
			{VehicleID: vehicleID.Hex(), Type: "Vidange", Date: mustDate("2024-03-10"), Km: 41000, Cost: 89.9},
		}
		mockVehicles.On("FindVehicleByID", mock.Anything, vehicleID.Hex()).Return(vehicle, nil)
		mockEvents.On("FindEventsByVehicle", mock.Anything, vehicleID.Hex()).Return(history, nil)

		req := withClaims(httptest.NewRequest("GET", "/api/vehicles/"+vehicleID.Hex()+"/export", nil), ownerClaims("u1"))
		req = mux.SetURLVars(req, map[string]string{"id": vehicleID.Hex()})
		w := httptest.NewRecorder()

		handler.Carnet(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=carnet_Clio_4.pdf", w.Header().Get("Content-Disposition"))
		assert.True(t, len(w.Body.Bytes()) > 4 && string(w.Body.Bytes()[:4]) == "%PDF")
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		mockVehicles := new(MockVehicleCollection)
		mockEvents := new(MockEventCollection)
		handler := NewExportHandler(db.VehicleCollection(mockVehicles), db.EventCollection(mockEvents))

		vehicle := &models.Vehicle{ID: vehicleID, OwnerID: "u1", Name: "Clio"}
		mockVehicles.On("FindVehicleByID", mock.Anything, vehicleID.Hex()).Return(vehicle, nil)

		req := withClaims(httptest.NewRequest("GET", "/api/vehicles/"+vehicleID.Hex()+"/export", nil), ownerClaims("u2"))
		req = mux.SetURLVars(req, map[string]string{"id": vehicleID.Hex()})
		w := httptest.NewRecorder()

		handler.Carnet(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
