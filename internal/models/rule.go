package models

// MaintenanceRule defines how often an intervention type should recur.
// A zero EveryMonths or EveryKm means that dimension does not apply.
type MaintenanceRule struct {
	Type        string `json:"type"`
	EveryMonths int    `json:"every_months,omitempty"`
	EveryKm     int    `json:"every_km,omitempty"`
}

// Status is the urgency classification of a maintenance rule for a
// given vehicle.
type Status string

const (
	StatusOverdue Status = "overdue"
	StatusSoon    Status = "soon"
	StatusUnknown Status = "unknown"
	StatusOK      Status = "ok"
)

// StatusRank orders classifications from most to least urgent. Lower
// is more urgent.
func StatusRank(s Status) int {
	switch s {
	case StatusOverdue:
		return 0
	case StatusSoon:
		return 1
	case StatusUnknown:
		return 2
	case StatusOK:
		return 3
	default:
		return 4
	}
}

// MaintenanceStatus is the derived, per-rule result of the status
// engine. It is recomputed on demand and never persisted.
type MaintenanceStatus struct {
	Type        string `json:"type"`
	EveryMonths int    `json:"every_months,omitempty"`
	EveryKm     int    `json:"every_km,omitempty"`
	Status      Status `json:"status"`
	Details     string `json:"details"`
}
