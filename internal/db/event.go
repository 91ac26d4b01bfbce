package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vlefranc/carnet/internal/models"
)

// MongoEventCollection implements EventCollection for MongoDB.
type MongoEventCollection struct {
	Collection *mongo.Collection
}

// InsertEvent inserts a maintenance event into the collection.
func (c *MongoEventCollection) InsertEvent(ctx context.Context, event models.MaintenanceEvent) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	event.CreatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, event)
	return err
}

// FindEventsByVehicle returns a vehicle's events, most recent first.
func (c *MongoEventCollection) FindEventsByVehicle(ctx context.Context, vehicleID string) ([]models.MaintenanceEvent, error) {
	return c.find(ctx, bson.M{"vehicle_id": vehicleID})
}

// FindAllEvents returns every stored event. Used by the notification
// scan, which groups them per vehicle itself.
func (c *MongoEventCollection) FindAllEvents(ctx context.Context) ([]models.MaintenanceEvent, error) {
	return c.find(ctx, bson.M{})
}

func (c *MongoEventCollection) find(ctx context.Context, filter bson.M) ([]models.MaintenanceEvent, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.MaintenanceEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// FindEventByID finds a maintenance event by its ID.
func (c *MongoEventCollection) FindEventByID(ctx context.Context, id string) (*models.MaintenanceEvent, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID: %w", err)
	}

	var event models.MaintenanceEvent
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// DeleteEvent deletes a maintenance event by its ID.
func (c *MongoEventCollection) DeleteEvent(ctx context.Context, id string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid event ID: %w", err)
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEventsByVehicle removes every event belonging to a vehicle and
// returns how many were deleted.
func (c *MongoEventCollection) DeleteEventsByVehicle(ctx context.Context, vehicleID string) (int64, error) {
	if c.Collection == nil {
		return 0, fmt.Errorf("mongo collection is nil")
	}
	result, err := c.Collection.DeleteMany(ctx, bson.M{"vehicle_id": vehicleID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
