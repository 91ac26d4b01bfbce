package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Fuel is the fuel/engine category of a vehicle. It selects which
// maintenance rules apply.
type Fuel string

const (
	FuelEssence    Fuel = "Essence"
	FuelDiesel     Fuel = "Diesel"
	FuelHybride    Fuel = "Hybride"
	FuelElectrique Fuel = "Électrique"
)

// IsValidFuel checks if a fuel category is valid.
func IsValidFuel(fuel Fuel) bool {
	switch fuel {
	case FuelEssence, FuelDiesel, FuelHybride, FuelElectrique:
		return true
	default:
		return false
	}
}

// Vehicle represents a vehicle in a user's garage.
type Vehicle struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID               string             `bson:"owner_id" json:"owner_id"`
	Name                  string             `bson:"name" json:"name"`
	Plate                 string             `bson:"plate,omitempty" json:"plate,omitempty"`
	Fuel                  Fuel               `bson:"fuel" json:"fuel"`
	FirstRegistrationDate time.Time          `bson:"first_registration_date,omitempty" json:"first_registration_date,omitempty"`
	Km                    int                `bson:"km" json:"km"`
	ArgusURL              string             `bson:"argus_url,omitempty" json:"argus_url,omitempty"`
	CreatedAt             time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at" json:"updated_at"`
}
