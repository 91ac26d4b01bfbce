package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vlefranc/carnet/internal/db"
	"github.com/vlefranc/carnet/internal/middleware"
	"github.com/vlefranc/carnet/internal/models"
)

// VehicleRequest is the payload for creating or updating a vehicle.
// The registration date uses the YYYY-MM-DD form; an empty string
// means unset.
type VehicleRequest struct {
	Name                  string      `json:"name"`
	Plate                 string      `json:"plate"`
	Fuel                  models.Fuel `json:"fuel"`
	FirstRegistrationDate string      `json:"first_registration_date"`
	Km                    int         `json:"km"`
	ArgusURL              string      `json:"argus_url"`
}

// VehicleHandler handles garage CRUD requests
type VehicleHandler struct {
	vehicles db.VehicleCollection
	// vehicleLimit caps vehicles per owner; 0 means unlimited.
	vehicleLimit int
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicles db.VehicleCollection, vehicleLimit int) *VehicleHandler {
	return &VehicleHandler{
		vehicles:     vehicles,
		vehicleLimit: vehicleLimit,
	}
}

// Create registers a new vehicle for the calling user
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	if !claims.Role.Can("edit_vehicles") {
		http.Error(w, "Insufficient permissions", http.StatusForbidden)
		return
	}

	req, errMsg := decodeVehicleRequest(r)
	if errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	if h.vehicleLimit > 0 {
		count, err := h.vehicles.CountByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "Failed to count vehicles", http.StatusInternalServerError)
			return
		}
		if count >= int64(h.vehicleLimit) {
			http.Error(w, "Vehicle limit reached", http.StatusForbidden)
			return
		}
	}

	vehicle := models.Vehicle{
		ID:                    primitive.NewObjectID(),
		OwnerID:               claims.UserID,
		Name:                  req.Name,
		Plate:                 req.Plate,
		Fuel:                  req.Fuel,
		FirstRegistrationDate: req.registrationDate,
		Km:                    req.Km,
		ArgusURL:              req.ArgusURL,
		CreatedAt:             time.Now(),
		UpdatedAt:             time.Now(),
	}

	if err := h.vehicles.InsertVehicle(r.Context(), vehicle); err != nil {
		http.Error(w, "Failed to create vehicle", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, vehicle)
}

// List returns the calling user's garage (every vehicle for admins)
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	var (
		vehicles []models.Vehicle
		err      error
	)
	if claims.Role == models.RoleAdmin {
		vehicles, err = h.vehicles.FindVehicles(r.Context())
	} else {
		vehicles, err = h.vehicles.FindVehiclesByOwner(r.Context(), claims.UserID)
	}
	if err != nil {
		http.Error(w, "Failed to list vehicles", http.StatusInternalServerError)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}

	writeJSON(w, http.StatusOK, vehicles)
}

// Get returns a single vehicle
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	vehicle, ok := h.loadOwned(w, r, "view_vehicles")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// Update edits a vehicle's mutable fields
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	vehicle, ok := h.loadOwned(w, r, "edit_vehicles")
	if !ok {
		return
	}

	req, errMsg := decodeVehicleRequest(r)
	if errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	vehicle.Name = req.Name
	vehicle.Plate = req.Plate
	vehicle.Fuel = req.Fuel
	vehicle.FirstRegistrationDate = req.registrationDate
	vehicle.Km = req.Km
	vehicle.ArgusURL = req.ArgusURL
	vehicle.UpdatedAt = time.Now()

	if err := h.vehicles.UpdateVehicle(r.Context(), vehicle.ID.Hex(), *vehicle); err != nil {
		httpStoreError(w, err, "Failed to update vehicle")
		return
	}

	writeJSON(w, http.StatusOK, vehicle)
}

// Delete removes a vehicle and, through the storage contract, every
// event referencing it
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vehicle, ok := h.loadOwned(w, r, "edit_vehicles")
	if !ok {
		return
	}

	if err := h.vehicles.DeleteVehicle(r.Context(), vehicle.ID.Hex()); err != nil {
		httpStoreError(w, err, "Failed to delete vehicle")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Vehicle deleted"})
}

// loadOwned fetches the vehicle from the path and enforces the role
// capability and ownership. On failure it writes the response and
// returns ok=false.
func (h *VehicleHandler) loadOwned(w http.ResponseWriter, r *http.Request, action string) (*models.Vehicle, bool) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return nil, false
	}
	if !claims.Role.Can(action) {
		http.Error(w, "Insufficient permissions", http.StatusForbidden)
		return nil, false
	}

	id := mux.Vars(r)["id"]
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

type vehicleRequest struct {
	VehicleRequest
	registrationDate time.Time
}

func decodeVehicleRequest(r *http.Request) (vehicleRequest, string) {
	var req vehicleRequest

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return req, "Failed to read request body"
	}
	if err := json.Unmarshal(body, &req.VehicleRequest); err != nil {
		return req, "Invalid JSON"
	}

	if req.Name == "" {
		return req, "Vehicle name is required"
	}
	if !models.IsValidFuel(req.Fuel) {
		return req, "Invalid fuel category"
	}
	if req.Km < 0 {
		return req, "Odometer reading must not be negative"
	}
	if req.FirstRegistrationDate != "" {
		date, err := time.Parse("2006-01-02", req.FirstRegistrationDate)
		if err != nil {
			return req, "Invalid first registration date, expected YYYY-MM-DD"
		}
		req.registrationDate = date
	}
	return req, ""
}
