package rules

import (
	"github.com/vlefranc/carnet/internal/models"
)

// InspectionType is the intervention whose first occurrence is mandated
// a fixed delay after the vehicle's registration rather than after a
// previous service.
const InspectionType = "Contrôle Technique"

// Catalog maps a fuel category to its ordered list of maintenance
// rules. A catalog is established at startup and never mutated.
type Catalog struct {
	rules map[models.Fuel][]models.MaintenanceRule
	order []models.Fuel
}

// New builds a catalog from a per-fuel rule table. The insertion order
// of the fuels slice fixes the order used by Types.
func New(fuels []models.Fuel, table map[models.Fuel][]models.MaintenanceRule) *Catalog {
	c := &Catalog{
		rules: make(map[models.Fuel][]models.MaintenanceRule, len(table)),
		order: append([]models.Fuel(nil), fuels...),
	}
	for fuel, rr := range table {
		c.rules[fuel] = append([]models.MaintenanceRule(nil), rr...)
	}
	return c
}

// For returns the ordered rules for a fuel category. An unknown
// category yields nil, which the engine treats as "no rules apply".
func (c *Catalog) For(fuel models.Fuel) []models.MaintenanceRule {
	rr, ok := c.rules[fuel]
	if !ok {
		return nil
	}
	return append([]models.MaintenanceRule(nil), rr...)
}

// Types returns the union of intervention types across all categories,
// deduplicated, in catalog order. This is the vocabulary offered when
// the user logs an intervention manually.
func (c *Catalog) Types() []string {
	seen := make(map[string]bool)
	var types []string
	for _, fuel := range c.order {
		for _, r := range c.rules[fuel] {
			if !seen[r.Type] {
				seen[r.Type] = true
				types = append(types, r.Type)
			}
		}
	}
	return types
}

// Default returns the stock catalog for French passenger vehicles.
func Default() *Catalog {
	fuels := []models.Fuel{models.FuelEssence, models.FuelDiesel, models.FuelHybride, models.FuelElectrique}
	return New(fuels, map[models.Fuel][]models.MaintenanceRule{
		models.FuelEssence: {
			{Type: "Vidange & Filtre à huile", EveryMonths: 12, EveryKm: 15000},
			{Type: "Filtre à air", EveryKm: 30000},
			{Type: "Filtre habitacle", EveryMonths: 12, EveryKm: 15000},
			{Type: "Bougies d'allumage", EveryKm: 60000},
			{Type: "Liquide de frein", EveryMonths: 24},
			{Type: InspectionType, EveryMonths: 24},
			{Type: "Pneus été/hiver", EveryMonths: 6},
		},
		models.FuelDiesel: {
			{Type: "Vidange & Filtre à huile", EveryMonths: 12, EveryKm: 20000},
			{Type: "Filtre à carburant", EveryKm: 40000},
			{Type: "Filtre à air", EveryKm: 40000},
			{Type: "Filtre habitacle", EveryMonths: 12, EveryKm: 20000},
			{Type: "Liquide de frein", EveryMonths: 24},
			{Type: InspectionType, EveryMonths: 24},
			{Type: "Pneus été/hiver", EveryMonths: 6},
		},
		models.FuelHybride: {
			{Type: "Vidange & Filtre à huile", EveryMonths: 12, EveryKm: 15000},
			{Type: "Filtre à air", EveryKm: 40000},
			{Type: "Filtre habitacle", EveryMonths: 12, EveryKm: 15000},
			{Type: "Liquide de frein", EveryMonths: 24},
			{Type: InspectionType, EveryMonths: 24},
			{Type: "Pneus été/hiver", EveryMonths: 6},
		},
		models.FuelElectrique: {
			{Type: "Filtre habitacle", EveryMonths: 12, EveryKm: 25000},
			{Type: "Liquide de frein", EveryMonths: 24},
			{Type: InspectionType, EveryMonths: 24},
			{Type: "Pneus été/hiver", EveryMonths: 6},
		},
	})
}
