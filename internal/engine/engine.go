package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vlefranc/carnet/internal/models"
	"github.com/vlefranc/carnet/internal/rules"
)

const (
	// firstInspectionMonths is the mandated delay between a vehicle's
	// first registration and its first technical inspection.
	firstInspectionMonths = 48

	// inspectionWarningDays widens the warning window for the technical
	// inspection; every other intervention uses defaultWarningDays.
	inspectionWarningDays = 90
	defaultWarningDays    = 30

	// warningKm is the remaining-distance threshold below which an
	// intervention is flagged "soon".
	warningKm = 1000
)

// Engine computes maintenance statuses for a vehicle from its event
// history. It is a pure projection: it never reads the clock, never
// mutates its inputs and holds no state besides the injected catalog,
// so it is safe to call concurrently.
type Engine struct {
	catalog *rules.Catalog
}

// New creates an engine bound to an immutable rule catalog.
func New(catalog *rules.Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// ComputeStatuses returns one status per catalog rule for the vehicle's
// fuel category, sorted most urgent first (overdue, soon, unknown, ok;
// catalog order preserved among equal urgencies). An unknown fuel
// category yields an empty list. The caller provides now explicitly;
// it is truncated to day granularity so time of day never affects the
// result.
func (e *Engine) ComputeStatuses(vehicle models.Vehicle, events []models.MaintenanceEvent, now time.Time) []models.MaintenanceStatus {
	rr := e.catalog.For(vehicle.Fuel)
	if len(rr) == 0 {
		return nil
	}

	day := atMidnight(now)
	statuses := make([]models.MaintenanceStatus, 0, len(rr))
	for _, rule := range rr {
		statuses = append(statuses, e.statusFor(vehicle, events, rule, day))
	}

	sort.SliceStable(statuses, func(i, j int) bool {
		return models.StatusRank(statuses[i].Status) < models.StatusRank(statuses[j].Status)
	})
	return statuses
}

func (e *Engine) statusFor(vehicle models.Vehicle, events []models.MaintenanceEvent, rule models.MaintenanceRule, now time.Time) models.MaintenanceStatus {
	st := models.MaintenanceStatus{
		Type:        rule.Type,
		EveryMonths: rule.EveryMonths,
		EveryKm:     rule.EveryKm,
	}

	last := lastMatching(events, rule.Type)

	// The first technical inspection is due a fixed delay after
	// registration, not after a previous service.
	if rule.Type == rules.InspectionType && last == nil {
		if vehicle.FirstRegistrationDate.IsZero() {
			st.Status = models.StatusUnknown
			st.Details = "Date de 1ère immat. manquante"
			return st
		}

		due := atMidnight(vehicle.FirstRegistrationDate).AddDate(0, firstInspectionMonths, 0)
		days := daysUntil(due, now)

		switch {
		case now.After(due):
			st.Status = models.StatusOverdue
			st.Details = fmt.Sprintf("À faire depuis le %s", formatDate(due))
		case days <= inspectionWarningDays:
			st.Status = models.StatusSoon
			st.Details = fmt.Sprintf("À prévoir avant le %s (%d jours restants)", formatDate(due), days)
		default:
			st.Status = models.StatusOK
			st.Details = fmt.Sprintf("Prochain: %s", formatDate(due))
		}
		return st
	}

	if last == nil {
		st.Status = models.StatusUnknown
		st.Details = "Aucun historique"
		return st
	}

	var dueDate time.Time
	hasDueDate := false
	if rule.EveryMonths > 0 {
		dueDate = atMidnight(last.Date).AddDate(0, rule.EveryMonths, 0)
		hasDueDate = true
	}

	dueKm := 0
	hasDueKm := false
	if rule.EveryKm > 0 {
		dueKm = last.Km + rule.EveryKm
		hasDueKm = true
	}

	warningDays := defaultWarningDays
	if rule.Type == rules.InspectionType {
		warningDays = inspectionWarningDays
	}

	daysRemaining := daysUntil(dueDate, now)
	kmRemaining := dueKm - vehicle.Km

	switch {
	case (hasDueDate && now.After(dueDate)) || (hasDueKm && vehicle.Km > dueKm):
		st.Status = models.StatusOverdue
		st.Details = "À faire immédiatement"

	case (hasDueDate && daysRemaining <= warningDays) || (hasDueKm && kmRemaining <= warningKm):
		st.Status = models.StatusSoon
		var parts []string
		if hasDueDate && daysRemaining <= warningDays {
			parts = append(parts, fmt.Sprintf("dans %d jours", daysRemaining))
		}
		if hasDueKm && kmRemaining <= warningKm {
			parts = append(parts, fmt.Sprintf("dans %s km", formatKm(kmRemaining)))
		}
		st.Details = "À prévoir " + strings.Join(parts, " ou ")

	default:
		st.Status = models.StatusOK
		var parts []string
		if hasDueDate {
			parts = append(parts, fmt.Sprintf("Prochain: %s", formatDate(dueDate)))
		}
		if hasDueKm {
			parts = append(parts, fmt.Sprintf("à %s km", formatKm(dueKm)))
		}
		st.Details = strings.Join(parts, " / ")
	}
	return st
}

// lastMatching selects the most recent event of the given type. Ties
// on equal dates resolve to the highest odometer reading, then to the
// latest slice position. Events with a zero date never count; a stored
// record with an unparseable date must not abort the whole computation.
func lastMatching(events []models.MaintenanceEvent, typ string) *models.MaintenanceEvent {
	var best *models.MaintenanceEvent
	for i := range events {
		ev := &events[i]
		if ev.Type != typ || ev.Date.IsZero() {
			continue
		}
		if best == nil || ev.Date.After(best.Date) {
			best = ev
			continue
		}
		if ev.Date.Equal(best.Date) && ev.Km >= best.Km {
			best = ev
		}
	}
	return best
}

// atMidnight truncates a time to the start of its day in its location.
func atMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysUntil returns the whole days from now to due, rounded up.
func daysUntil(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}
