package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlefranc/carnet/internal/models"
	"github.com/vlefranc/carnet/internal/rules"
)

var testNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func statusByType(statuses []models.MaintenanceStatus, typ string) *models.MaintenanceStatus {
	for i := range statuses {
		if statuses[i].Type == typ {
			return &statuses[i]
		}
	}
	return nil
}

// oilCatalog is a synthetic single-rule catalog so individual rule
// behaviour can be tested without the full production table.
func oilCatalog() *rules.Catalog {
	return rules.New([]models.Fuel{models.FuelEssence}, map[models.Fuel][]models.MaintenanceRule{
		models.FuelEssence: {
			{Type: "Vidange & Filtre à huile", EveryMonths: 12, EveryKm: 15000},
		},
	})
}

func TestComputeStatuses_UnknownFuel(t *testing.T) {
	e := New(rules.Default())
	vehicle := models.Vehicle{Fuel: "Kérosène", Km: 10000}

	statuses := e.ComputeStatuses(vehicle, nil, testNow)
	assert.Empty(t, statuses)
}

// Scenario A: registered five years ago, no events at all. The first
// inspection was due after four years and is already overdue; every
// other rule has no history.
func TestComputeStatuses_FreshHistoryOverdueInspection(t *testing.T) {
	e := New(rules.Default())
	vehicle := models.Vehicle{
		Fuel:                  models.FuelEssence,
		FirstRegistrationDate: date(2019, time.June, 15),
		Km:                    80000,
	}

	statuses := e.ComputeStatuses(vehicle, nil, testNow)
	require.Len(t, statuses, 7)

	ct := statusByType(statuses, rules.InspectionType)
	require.NotNil(t, ct)
	assert.Equal(t, models.StatusOverdue, ct.Status)
	assert.Equal(t, "À faire depuis le 15/06/2023", ct.Details)

	for _, st := range statuses {
		if st.Type == rules.InspectionType {
			continue
		}
		assert.Equal(t, models.StatusUnknown, st.Status, st.Type)
		assert.Equal(t, "Aucun historique", st.Details, st.Type)
	}
}

func TestComputeStatuses_BootstrapInspectionSoon(t *testing.T) {
	e := New(rules.Default())
	vehicle := models.Vehicle{
		Fuel: models.FuelDiesel,
		// First due 2024-08-15, 61 days out: inside the 90-day window.
		FirstRegistrationDate: date(2020, time.August, 15),
	}

	statuses := e.ComputeStatuses(vehicle, nil, testNow)
	ct := statusByType(statuses, rules.InspectionType)
	require.NotNil(t, ct)
	assert.Equal(t, models.StatusSoon, ct.Status)
	assert.Equal(t, "À prévoir avant le 15/08/2024 (61 jours restants)", ct.Details)
}

func TestComputeStatuses_BootstrapInspectionOK(t *testing.T) {
	e := New(rules.Default())
	vehicle := models.Vehicle{
		Fuel:                  models.FuelEssence,
		FirstRegistrationDate: date(2023, time.January, 10),
	}

	statuses := e.ComputeStatuses(vehicle, nil, testNow)
	ct := statusByType(statuses, rules.InspectionType)
	require.NotNil(t, ct)
	assert.Equal(t, models.StatusOK, ct.Status)
	assert.Equal(t, "Prochain: 10/01/2027", ct.Details)
}

// Scenario D: registration date unset on an electric vehicle.
func TestComputeStatuses_MissingRegistrationDate(t *testing.T) {
	e := New(rules.Default())
	vehicle := models.Vehicle{Fuel: models.FuelElectrique}

	statuses := e.ComputeStatuses(vehicle, nil, testNow)
	require.Len(t, statuses, 4)

	ct := statusByType(statuses, rules.InspectionType)
	require.NotNil(t, ct)
	assert.Equal(t, models.StatusUnknown, ct.Status)
	assert.Equal(t, "Date de 1ère immat. manquante", ct.Details)

	for _, st := range statuses {
		if st.Type != rules.InspectionType {
			assert.Equal(t, "Aucun historique", st.Details, st.Type)
		}
	}
}

// Scenario B: service 11 months and 14 500 km ago on a 12-month /
// 15 000 km rule. Both dimensions sit inside their warning windows; the
// details must spell out the remaining distance.
func TestComputeStatuses_SoonByDistance(t *testing.T) {
	e := New(oilCatalog())
	vehicle := models.Vehicle{Fuel: models.FuelEssence, Km: 24500}
	events := []models.MaintenanceEvent{
		{VehicleID: "v1", Type: "Vidange & Filtre à huile", Date: date(2023, time.July, 15), Km: 10000},
	}

	statuses := e.ComputeStatuses(vehicle, events, testNow)
	require.Len(t, statuses, 1)
	assert.Equal(t, models.StatusSoon, statuses[0].Status)
	assert.Equal(t, "À prévoir dans 30 jours ou dans 500 km", statuses[0].Details)
}

// Scenario C: same service but the odometer has passed the due
// distance, so the time dimension no longer matters.
func TestComputeStatuses_OverdueByDistance(t *testing.T) {
	e := New(oilCatalog())
	vehicle := models.Vehicle{Fuel: models.FuelEssence, Km: 26000}
	events := []models.MaintenanceEvent{
		{VehicleID: "v1", Type: "Vidange & Filtre à huile", Date: date(2023, time.July, 15), Km: 10000},
	}

	statuses := e.ComputeStatuses(vehicle, events, testNow)
	require.Len(t, statuses, 1)
	assert.Equal(t, models.StatusOverdue, statuses[0].Status)
	assert.Equal(t, "À faire immédiatement", statuses[0].Details)
}

func TestComputeStatuses_OKBothDimensions(t *testing.T) {
	e := New(oilCatalog())
	vehicle := models.Vehicle{Fuel: models.FuelEssence, Km: 21000}
	events := []models.MaintenanceEvent{
		{Type: "Vidange & Filtre à huile", Date: date(2024, time.January, 10), Km: 20000},
	}

	statuses := e.ComputeStatuses(vehicle, events, testNow)
	require.Len(t, statuses, 1)
	assert.Equal(t, models.StatusOK, statuses[0].Status)
	assert.Equal(t, "Prochain: 10/01/2025 / à 35 000 km", statuses[0].Details)
}

// Scenario E: with two events of the same type only the later one
// drives the due computation.
func TestComputeStatuses_LatestEventWins(t *testing.T) {
	e := New(oilCatalog())
	vehicle := models.Vehicle{Fuel: models.FuelEssence, Km: 21000}
	events := []models.MaintenanceEvent{
		{Type: "Vidange & Filtre à huile", Date: date(2022, time.March, 1), Km: 5000},
		{Type: "Vidange & Filtre à huile", Date: date(2024, time.January, 10), Km: 20000},
	}

	statuses := e.ComputeStatuses(vehicle, events, testNow)
	require.Len(t, statuses, 1)
	// The 2022 event alone would be overdue on both dimensions.
	assert.Equal(t, models.StatusOK, statuses[0].Status)
}

func TestComputeStatuses_SameDayTieBreak(t *testing.T) {
	e := New(oilCatalog())
	// Two same-day services: the higher odometer reading wins, so the
	// due distance is 9 000 + 15 000 = 24 000, not 19 000.
	vehicle := models.Vehicle{Fuel: models.FuelEssence, Km: 20000}
	events := []models.MaintenanceEvent{
		{Type: "Vidange & Filtre à huile", Date: date(2024, time.May, 1), Km: 9000},
		{Type: "Vidange & Filtre à huile", Date: date(2024, time.May, 1), Km: 4000},
	}

	statuses := e.ComputeStatuses(vehicle, events, testNow)
	require.Len(t, statuses, 1)
	assert.NotEqual(t, models.StatusOverdue, statuses[0].Status)

	// Reversed input order must give the same result.
	reversed := []models.MaintenanceEvent{events[1], events[0]}
	again := e.ComputeStatuses(vehicle, reversed, testNow)
	assert.Equal(t, statuses, again)
}

func TestComputeStatuses_ZeroDateEventIgnored(t *testing.T) {
	e := New(oilCatalog())
	vehicle := models.Vehicle{Fuel: models.FuelEssence, Km: 20000}
	events := []models.MaintenanceEvent{
		{Type: "Vidange & Filtre à huile", Km: 19000}, // date never stored
	}

	statuses := e.ComputeStatuses(vehicle, events, testNow)
	require.Len(t, statuses, 1)
	assert.Equal(t, models.StatusUnknown, statuses[0].Status)
	assert.Equal(t, "Aucun historique", statuses[0].Details)
}

// A rule with neither interval must never be classified against an
// undefined due value: unknown without history, ok with it.
func TestComputeStatuses_RuleWithoutIntervals(t *testing.T) {
	catalog := rules.New([]models.Fuel{models.FuelEssence}, map[models.Fuel][]models.MaintenanceRule{
		models.FuelEssence: {{Type: "Géométrie"}},
	})
	e := New(catalog)
	vehicle := models.Vehicle{Fuel: models.FuelEssence, Km: 999999}

	statuses := e.ComputeStatuses(vehicle, nil, testNow)
	require.Len(t, statuses, 1)
	assert.Equal(t, models.StatusUnknown, statuses[0].Status)

	events := []models.MaintenanceEvent{{Type: "Géométrie", Date: date(2020, time.January, 1), Km: 10}}
	statuses = e.ComputeStatuses(vehicle, events, testNow)
	require.Len(t, statuses, 1)
	assert.Equal(t, models.StatusOK, statuses[0].Status)
}

func TestComputeStatuses_Idempotent(t *testing.T) {
	e := New(rules.Default())
	vehicle := models.Vehicle{
		Fuel:                  models.FuelDiesel,
		FirstRegistrationDate: date(2018, time.March, 2),
		Km:                    120000,
	}
	events := []models.MaintenanceEvent{
		{Type: "Vidange & Filtre à huile", Date: date(2024, time.February, 1), Km: 115000},
		{Type: "Liquide de frein", Date: date(2021, time.February, 1), Km: 90000},
	}

	first := e.ComputeStatuses(vehicle, events, testNow)
	second := e.ComputeStatuses(vehicle, events, testNow)
	assert.Equal(t, first, second)
}

func TestComputeStatuses_InputsNotMutated(t *testing.T) {
	e := New(rules.Default())
	events := []models.MaintenanceEvent{
		{Type: "Liquide de frein", Date: date(2023, time.April, 4), Km: 50000},
		{Type: "Vidange & Filtre à huile", Date: date(2024, time.January, 1), Km: 60000},
	}
	snapshot := append([]models.MaintenanceEvent(nil), events...)

	vehicle := models.Vehicle{Fuel: models.FuelHybride, Km: 61000, FirstRegistrationDate: date(2020, time.May, 5)}
	e.ComputeStatuses(vehicle, events, testNow)
	assert.Equal(t, snapshot, events)
}

func TestComputeStatuses_TimeOfDayIrrelevant(t *testing.T) {
	e := New(rules.Default())
	vehicle := models.Vehicle{
		Fuel:                  models.FuelEssence,
		FirstRegistrationDate: date(2021, time.June, 1),
		Km:                    30000,
	}
	events := []models.MaintenanceEvent{
		{Type: "Vidange & Filtre à huile", Date: date(2023, time.December, 1), Km: 25000},
	}

	morning := e.ComputeStatuses(vehicle, events, time.Date(2024, 6, 15, 0, 1, 0, 0, time.UTC))
	evening := e.ComputeStatuses(vehicle, events, time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, morning, evening)
}

// Holding everything else fixed, advancing the clock may only move a
// rule towards a more urgent classification.
func TestComputeStatuses_MonotonicInTime(t *testing.T) {
	e := New(oilCatalog())
	vehicle := models.Vehicle{Fuel: models.FuelEssence, Km: 12000}
	events := []models.MaintenanceEvent{
		{Type: "Vidange & Filtre à huile", Date: date(2024, time.January, 1), Km: 11000},
	}

	prevRank := models.StatusRank(models.StatusOK)
	for d := 0; d < 500; d += 7 {
		now := date(2024, time.January, 2).AddDate(0, 0, d)
		statuses := e.ComputeStatuses(vehicle, events, now)
		require.Len(t, statuses, 1)
		rank := models.StatusRank(statuses[0].Status)
		assert.LessOrEqual(t, rank, prevRank, "classification regressed at day %d", d)
		prevRank = rank
	}
}

func TestComputeStatuses_SortedByUrgency(t *testing.T) {
	e := New(rules.Default())
	vehicle := models.Vehicle{
		Fuel:                  models.FuelEssence,
		FirstRegistrationDate: date(2015, time.January, 1),
		Km:                    90000,
	}
	events := []models.MaintenanceEvent{
		// Overdue by distance.
		{Type: "Vidange & Filtre à huile", Date: date(2024, time.May, 1), Km: 70000},
		// Comfortably OK.
		{Type: "Liquide de frein", Date: date(2024, time.January, 1), Km: 85000},
		// Soon: six-month cadence ending within 30 days.
		{Type: "Pneus été/hiver", Date: date(2024, time.January, 1), Km: 85000},
		// Bootstrap inspection long overdue; everything else unknown.
	}

	statuses := e.ComputeStatuses(vehicle, events, testNow)
	require.Len(t, statuses, 7)
	for i := 1; i < len(statuses); i++ {
		assert.LessOrEqual(t,
			models.StatusRank(statuses[i-1].Status),
			models.StatusRank(statuses[i].Status),
			"entry %d (%s) out of order", i, statuses[i].Type)
	}
}

// Equal urgencies keep their catalog order: the sort is stable.
func TestComputeStatuses_StableWithinUrgency(t *testing.T) {
	e := New(rules.Default())
	vehicle := models.Vehicle{Fuel: models.FuelEssence}

	statuses := e.ComputeStatuses(vehicle, nil, testNow)
	require.Len(t, statuses, 7)

	var unknowns []string
	for _, st := range statuses {
		if st.Status == models.StatusUnknown && st.Type != rules.InspectionType {
			unknowns = append(unknowns, st.Type)
		}
	}
	assert.Equal(t, []string{
		"Vidange & Filtre à huile",
		"Filtre à air",
		"Filtre habitacle",
		"Bougies d'allumage",
		"Liquide de frein",
		"Pneus été/hiver",
	}, unknowns)
}

func TestFormatKm(t *testing.T) {
	assert.Equal(t, "0", formatKm(0))
	assert.Equal(t, "500", formatKm(500))
	assert.Equal(t, "15 000", formatKm(15000))
	assert.Equal(t, "1 234 567", formatKm(1234567))
	assert.Equal(t, "-1 000", formatKm(-1000))
}
