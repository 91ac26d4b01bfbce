package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// MaintenanceEvent records that an intervention of a given type was
// performed on a vehicle at a given date and odometer reading. Events
// are immutable once created: they can only be added and deleted.
type MaintenanceEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID string             `bson:"vehicle_id" json:"vehicle_id"`
	Type      string             `bson:"type" json:"type"`
	Date      time.Time          `bson:"date" json:"date"`
	Km        int                `bson:"km" json:"km"`
	Cost      float64            `bson:"cost,omitempty" json:"cost,omitempty"` // in EUR
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Photo     string             `bson:"photo,omitempty" json:"photo,omitempty"` // base64 data URL of the invoice
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
