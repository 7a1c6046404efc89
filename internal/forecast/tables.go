package forecast

import "github.com/prepflow/inventory-intel/internal/domain"

// WeatherSensitivity describes how a category's demand reacts to heat, cold
// and rain. Values are relative adjustments applied on top of a 1.0 baseline.
type WeatherSensitivity struct {
	Heat float64
	Cold float64
	Rain float64
}

// DefaultWeatherSensitivities is the category sensitivity table. Kept as data
// so the multiplier logic stays free of category conditionals and tests can
// substitute fixtures.
func DefaultWeatherSensitivities() map[domain.Category]WeatherSensitivity {
	return map[domain.Category]WeatherSensitivity{
		domain.CategoryDairy:      {Heat: -0.3, Cold: 0.1, Rain: 0.05},
		domain.CategoryVegetables: {Heat: -0.2, Cold: 0.05, Rain: -0.1},
		domain.CategoryProtein:    {Heat: 0.2, Cold: -0.1, Rain: 0.1},
		domain.CategoryGrains:     {Heat: 0, Cold: 0, Rain: 0},
		domain.CategoryOther:      {Heat: 0, Cold: 0, Rain: 0},
	}
}
