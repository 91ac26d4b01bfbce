package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

const (
	alertTopicPrefix = "carnet/alerts/"
	mqttTimeout      = 5 * time.Second
)

// MQTTDispatcher publishes alerts to an MQTT broker, one topic per
// vehicle, so a companion app or home-automation bridge can subscribe.
type MQTTDispatcher struct {
	client mqtt.Client
}

// NewMQTTDispatcher connects to the broker and returns a dispatcher.
func NewMQTTDispatcher(brokerURL, clientID string) (*MQTTDispatcher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", brokerURL, err)
	}
	return &MQTTDispatcher{client: client}, nil
}

// Dispatch publishes the alert as JSON at QoS 1.
func (d *MQTTDispatcher) Dispatch(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	token := d.client.Publish(alertTopicPrefix+alert.VehicleID, 1, false, payload)
	if !token.WaitTimeout(mqttTimeout) {
		return fmt.Errorf("mqtt publish timed out")
	}
	return token.Error()
}

// Close disconnects from the broker.
func (d *MQTTDispatcher) Close() {
	d.client.Disconnect(250)
}

// LogDispatcher writes alerts to the log. It is the graceful fallback
// when no broker is configured or available.
type LogDispatcher struct{}

// Dispatch logs the reminder.
func (LogDispatcher) Dispatch(_ context.Context, alert Alert) error {
	log.WithFields(log.Fields{
		"vehicle_id": alert.VehicleID,
		"type":       alert.Type,
		"status":     alert.Status,
		"body":       alert.Body(),
	}).Info(alert.Title())
	return nil
}
