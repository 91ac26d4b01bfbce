// Package notify runs the due-maintenance scan: it recomputes statuses
// for every stored vehicle and surfaces soon/overdue items, with a
// per-(vehicle, type) cooldown so one computation cycle after another
// does not re-alert. The engine stays side-effect free; all cooldown
// state lives in the alert collection.
package notify

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vlefranc/carnet/internal/db"
	"github.com/vlefranc/carnet/internal/engine"
	"github.com/vlefranc/carnet/internal/models"
)

// Cooldown is the suppression window between two alerts for the same
// (vehicle, type).
const Cooldown = 24 * time.Hour

// Alert is a user-facing maintenance reminder.
type Alert struct {
	VehicleID   string        `json:"vehicle_id"`
	VehicleName string        `json:"vehicle_name"`
	Type        string        `json:"type"`
	Status      models.Status `json:"status"`
	Details     string        `json:"details"`
	At          time.Time     `json:"at"`
}

// Title renders the reminder headline.
func (a Alert) Title() string {
	return fmt.Sprintf("Rappel d'entretien: %s", a.VehicleName)
}

// Body renders the reminder body.
func (a Alert) Body() string {
	return fmt.Sprintf("%s: %s.", a.Type, a.Details)
}

// Dispatcher delivers alerts to the user through whatever facility is
// available.
type Dispatcher interface {
	Dispatch(ctx context.Context, alert Alert) error
}

// Scanner recomputes statuses for every vehicle and dispatches alerts
// for soon/overdue items, subject to the cooldown.
type Scanner struct {
	vehicles   db.VehicleCollection
	events     db.EventCollection
	alerts     db.AlertCollection
	engine     *engine.Engine
	dispatcher Dispatcher

	now func() time.Time
}

// NewScanner creates a scanner over the given stores and dispatcher.
func NewScanner(vehicles db.VehicleCollection, events db.EventCollection, alerts db.AlertCollection, eng *engine.Engine, dispatcher Dispatcher) *Scanner {
	return &Scanner{
		vehicles:   vehicles,
		events:     events,
		alerts:     alerts,
		engine:     eng,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Scan runs one full pass over every stored vehicle.
func (s *Scanner) Scan(ctx context.Context) error {
	now := s.now()

	vehicles, err := s.vehicles.FindVehicles(ctx)
	if err != nil {
		return fmt.Errorf("load vehicles: %w", err)
	}
	events, err := s.events.FindAllEvents(ctx)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}

	byVehicle := make(map[string][]models.MaintenanceEvent)
	for _, ev := range events {
		byVehicle[ev.VehicleID] = append(byVehicle[ev.VehicleID], ev)
	}

	dispatched := 0
	for _, vehicle := range vehicles {
		id := vehicle.ID.Hex()
		statuses := s.engine.ComputeStatuses(vehicle, byVehicle[id], now)

		for _, st := range statuses {
			if st.Status != models.StatusSoon && st.Status != models.StatusOverdue {
				continue
			}

			last, err := s.alerts.LastNotified(ctx, id, st.Type)
			if err != nil {
				log.WithError(err).WithField("vehicle_id", id).Error("Failed to read alert cooldown")
				continue
			}
			if !last.IsZero() && now.Sub(last) <= Cooldown {
				continue
			}

			alert := Alert{
				VehicleID:   id,
				VehicleName: vehicle.Name,
				Type:        st.Type,
				Status:      st.Status,
				Details:     st.Details,
				At:          now,
			}
			if err := s.dispatcher.Dispatch(ctx, alert); err != nil {
				// Leave the cooldown untouched so the next scan retries.
				log.WithError(err).WithFields(log.Fields{
					"vehicle_id": id,
					"type":       st.Type,
				}).Error("Failed to dispatch alert")
				continue
			}
			if err := s.alerts.MarkNotified(ctx, id, st.Type, now); err != nil {
				log.WithError(err).WithField("vehicle_id", id).Error("Failed to record alert cooldown")
			}
			dispatched++
		}
	}

	log.WithFields(log.Fields{
		"vehicles":   len(vehicles),
		"dispatched": dispatched,
	}).Info("Maintenance scan completed")
	return nil
}
