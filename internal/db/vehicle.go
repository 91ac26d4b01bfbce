package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vlefranc/carnet/internal/models"
)

// MongoVehicleCollection implements VehicleCollection for MongoDB. It
// also holds the event collection so vehicle deletion can cascade.
type MongoVehicleCollection struct {
	Vehicles *mongo.Collection
	Events   EventCollection
}

// InsertVehicle inserts a vehicle record into the collection.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	if c.Vehicles == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()
	_, err := c.Vehicles.InsertOne(ctx, vehicle)
	return err
}

// FindVehicles returns every stored vehicle.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context) ([]models.Vehicle, error) {
	return c.find(ctx, bson.M{})
}

// FindVehiclesByOwner returns the vehicles registered by one user.
func (c *MongoVehicleCollection) FindVehiclesByOwner(ctx context.Context, ownerID string) ([]models.Vehicle, error) {
	return c.find(ctx, bson.M{"owner_id": ownerID})
}

func (c *MongoVehicleCollection) find(ctx context.Context, filter bson.M) ([]models.Vehicle, error) {
	if c.Vehicles == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := c.Vehicles.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if c.Vehicles == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID: %w", err)
	}

	var vehicle models.Vehicle
	err = c.Vehicles.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &vehicle, nil
}

// UpdateVehicle updates a vehicle by its ID.
func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	if c.Vehicles == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle ID: %w", err)
	}

	vehicle.UpdatedAt = time.Now()
	result, err := c.Vehicles.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": vehicle})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVehicle deletes a vehicle and every event referencing it. No
// orphaned events may remain after a vehicle deletion.
func (c *MongoVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	if c.Vehicles == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid vehicle ID: %w", err)
	}

	result, err := c.Vehicles.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	if c.Events != nil {
		if _, err := c.Events.DeleteEventsByVehicle(ctx, id); err != nil {
			return fmt.Errorf("cascade delete events: %w", err)
		}
	}
	return nil
}

// CountByOwner counts the vehicles registered by one user.
func (c *MongoVehicleCollection) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	if c.Vehicles == nil {
		return 0, fmt.Errorf("mongo collection is nil")
	}
	return c.Vehicles.CountDocuments(ctx, bson.M{"owner_id": ownerID})
}
