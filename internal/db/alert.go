package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// alertRecord is the persisted cooldown state of the notification scan.
type alertRecord struct {
	VehicleID  string    `bson:"vehicle_id"`
	Type       string    `bson:"type"`
	NotifiedAt time.Time `bson:"notified_at"`
}

// MongoAlertCollection implements AlertCollection for MongoDB.
type MongoAlertCollection struct {
	Collection *mongo.Collection
}

// LastNotified returns when an alert for (vehicle, type) was last
// dispatched. The zero time means never.
func (c *MongoAlertCollection) LastNotified(ctx context.Context, vehicleID, eventType string) (time.Time, error) {
	if c.Collection == nil {
		return time.Time{}, fmt.Errorf("mongo collection is nil")
	}

	var rec alertRecord
	err := c.Collection.FindOne(ctx, bson.M{"vehicle_id": vehicleID, "type": eventType}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return rec.NotifiedAt, nil
}

// MarkNotified upserts the last-notified timestamp for (vehicle, type).
func (c *MongoAlertCollection) MarkNotified(ctx context.Context, vehicleID, eventType string, at time.Time) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	filter := bson.M{"vehicle_id": vehicleID, "type": eventType}
	update := bson.M{"$set": bson.M{"notified_at": at}}
	_, err := c.Collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
