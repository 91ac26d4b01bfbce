package db

import (
	"context"
	"time"

	"github.com/vlefranc/carnet/internal/models"
)

// VehicleCollection defines the interface for vehicle storage. Deleting
// a vehicle must also remove every event that references it; the status
// engine relies on that referential-integrity contract implicitly.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	FindVehicles(ctx context.Context) ([]models.Vehicle, error)
	FindVehiclesByOwner(ctx context.Context, ownerID string) ([]models.Vehicle, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error
	DeleteVehicle(ctx context.Context, id string) error
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}

// EventCollection defines the interface for maintenance event storage.
// Events are created and deleted, never updated.
type EventCollection interface {
	InsertEvent(ctx context.Context, event models.MaintenanceEvent) error
	FindEventsByVehicle(ctx context.Context, vehicleID string) ([]models.MaintenanceEvent, error)
	FindAllEvents(ctx context.Context) ([]models.MaintenanceEvent, error)
	FindEventByID(ctx context.Context, id string) (*models.MaintenanceEvent, error)
	DeleteEvent(ctx context.Context, id string) error
	DeleteEventsByVehicle(ctx context.Context, vehicleID string) (int64, error)
}

// AlertCollection keeps the last-notified timestamps used by the
// notification scan's cooldown policy, keyed per (vehicle, type).
type AlertCollection interface {
	LastNotified(ctx context.Context, vehicleID, eventType string) (time.Time, error)
	MarkNotified(ctx context.Context, vehicleID, eventType string, at time.Time) error
}

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, user models.User) error
	DeleteUser(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string) error
}
