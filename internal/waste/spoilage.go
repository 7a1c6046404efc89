package waste

import "github.com/prepflow/inventory-intel/internal/domain"

// SpoilageModel holds the per-category spoilage constants. Shelf lives are
// domain constants, not derived.
type SpoilageModel struct {
	BaseShelfLifeHours     float64
	TemperatureSensitivity float64
	HumidityImpact         float64
	QualityDegradationRate float64
}

// DefaultSpoilageModels is the category spoilage table.
func DefaultSpoilageModels() map[domain.Category]SpoilageModel {
	return map[domain.Category]SpoilageModel{
		domain.CategoryDairy: {
			BaseShelfLifeHours:     168, // 7 days
			TemperatureSensitivity: 0.8,
			HumidityImpact:         0.3,
			QualityDegradationRate: 0.15,
		},
		domain.CategoryVegetables: {
			BaseShelfLifeHours:     120, // 5 days
			TemperatureSensitivity: 0.6,
			HumidityImpact:         0.7,
			QualityDegradationRate: 0.25,
		},
		domain.CategoryProtein: {
			BaseShelfLifeHours:     72, // 3 days
			TemperatureSensitivity: 0.9,
			HumidityImpact:         0.2,
			QualityDegradationRate: 0.35,
		},
		domain.CategoryGrains: {
			BaseShelfLifeHours:     2160, // 90 days
			TemperatureSensitivity: 0.1,
			HumidityImpact:         0.8,
			QualityDegradationRate: 0.05,
		},
		domain.CategoryOther: {
			BaseShelfLifeHours:     720, // 30 days
			TemperatureSensitivity: 0.3,
			HumidityImpact:         0.4,
			QualityDegradationRate: 0.10,
		},
	}
}
