package estimate

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/joseph-ayodele/fieldops/internal/common"
)

// Settings is the business rate table. Percentages are whole numbers (15 = 15 %).
type Settings struct {
	// Material prices
	PMMConcentrate  float64 `toml:"pmm_concentrate"`
	Sand50lb        float64 `toml:"sand_50lb"`
	PrepSeal        float64 `toml:"prep_seal"`
	FastDry         float64 `toml:"fast_dry"`
	CrackFiller30lb float64 `toml:"crack_filler_30lb"`
	PropaneRefill   float64 `toml:"propane_refill"`
	HotMixAsphalt   float64 `toml:"hot_mix_asphalt"`
	ColdPatch       float64 `toml:"cold_patch"`
	LinePaint       float64 `toml:"line_paint"`

	// Application rates
	SealcoatingCoverage float64 `toml:"sealcoating_coverage"`
	WaterRatio          float64 `toml:"water_ratio"`
	FastDryRatio        float64 `toml:"fast_dry_ratio"`
	PrepSealCoverage    float64 `toml:"prep_seal_coverage"`
	StallLinearFeet     float64 `toml:"stall_linear_feet"`
	StripingCoverage    float64 `toml:"striping_coverage"`

	// Labor
	EmployeeRate        float64 `toml:"employee_rate"`
	CrackFillEfficiency float64 `toml:"crack_fill_efficiency"`
	SealcoatEfficiency  float64 `toml:"sealcoat_efficiency"`
	StripingEfficiency  float64 `toml:"striping_efficiency"`
	PatchingEfficiency  float64 `toml:"patching_efficiency"`

	// Equipment and travel
	FuelOperational     float64 `toml:"fuel_operational"`
	VehicleMPG          float64 `toml:"vehicle_mpg"`
	FuelPrice           float64 `toml:"fuel_price"`
	EquipmentHourlyRate float64 `toml:"equipment_hourly_rate"`
	DefaultTravelMiles  float64 `toml:"default_travel_miles"`

	OverheadPercentage float64 `toml:"overhead_percentage"`
	ProfitPercentage   float64 `toml:"profit_percentage"`
}

// DefaultSettings returns the stock rate table.
func DefaultSettings() Settings {
	return Settings{
		PMMConcentrate:  3.65,
		Sand50lb:        10.00,
		PrepSeal:        50.00,
		FastDry:         140.00,
		CrackFiller30lb: 44.95,
		PropaneRefill:   10.00,
		HotMixAsphalt:   3.50,
		ColdPatch:       3.00,
		LinePaint:       0.87,

		SealcoatingCoverage: 76,
		WaterRatio:          0.2,
		FastDryRatio:        2,
		PrepSealCoverage:    175,
		StallLinearFeet:     20,
		StripingCoverage:    250,

		EmployeeRate:        20.00,
		CrackFillEfficiency: 100,
		SealcoatEfficiency:  2000,
		StripingEfficiency:  500,
		PatchingEfficiency:  50,

		FuelOperational:     2,
		VehicleMPG:          17.5,
		FuelPrice:           3.50,
		EquipmentHourlyRate: 5,
		DefaultTravelMiles:  25,

		OverheadPercentage: 15,
		ProfitPercentage:   25,
	}
}

// LoadSettings overlays the TOML file at path onto the defaults. An empty path
// returns the defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return Settings{}, fmt.Errorf("decode settings %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Settings{}, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown settings keys in %s: %v", path, undecoded), common.ErrValidation)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects rates that would be used as divisors or make prices negative.
func (s Settings) Validate() error {
	v := common.NewValidator()
	positive := func(name string, f float64) {
		if f <= 0 {
			v.Add(name, "must be greater than zero")
		}
	}
	positive("sealcoating_coverage", s.SealcoatingCoverage)
	positive("prep_seal_coverage", s.PrepSealCoverage)
	positive("striping_coverage", s.StripingCoverage)
	positive("crack_fill_efficiency", s.CrackFillEfficiency)
	positive("sealcoat_efficiency", s.SealcoatEfficiency)
	positive("striping_efficiency", s.StripingEfficiency)
	positive("patching_efficiency", s.PatchingEfficiency)
	positive("vehicle_mpg", s.VehicleMPG)

	for name, f := range map[string]float64{
		"pmm_concentrate": s.PMMConcentrate, "sand_50lb": s.Sand50lb, "prep_seal": s.PrepSeal,
		"fast_dry": s.FastDry, "crack_filler_30lb": s.CrackFiller30lb, "propane_refill": s.PropaneRefill,
		"hot_mix_asphalt": s.HotMixAsphalt, "cold_patch": s.ColdPatch, "line_paint": s.LinePaint,
		"water_ratio": s.WaterRatio, "fast_dry_ratio": s.FastDryRatio, "stall_linear_feet": s.StallLinearFeet,
		"employee_rate": s.EmployeeRate, "fuel_operational": s.FuelOperational, "fuel_price": s.FuelPrice,
		"equipment_hourly_rate": s.EquipmentHourlyRate, "default_travel_miles": s.DefaultTravelMiles,
		"overhead_percentage": s.OverheadPercentage, "profit_percentage": s.ProfitPercentage,
	} {
		v.Field(name, f, common.NonNegative)
	}
	return v.Error()
}
