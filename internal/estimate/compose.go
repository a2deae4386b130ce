// Package estimate prices asphalt jobs from measurements and the business rate table.
package estimate

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/fieldops/constants"
	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/entity"
	"github.com/joseph-ayodele/fieldops/internal/geo"
	"github.com/joseph-ayodele/fieldops/internal/materials"
	"github.com/joseph-ayodele/fieldops/internal/utils"
)

// Input is what the estimator needs to know about a job.
type Input struct {
	JobType        constants.JobType       `json:"jobType"`
	SquareFootage  float64                 `json:"squareFootage,omitempty"`
	LinearFootage  float64                 `json:"linearFootage,omitempty"`
	NumberOfStalls int                     `json:"numberOfStalls,omitempty"`
	Coats          float64                 `json:"coats,omitempty"`
	HasOilSpots    bool                    `json:"hasOilSpots,omitempty"`
	CrackSeverity  constants.CrackSeverity `json:"crackSeverity,omitempty"`
	PatchType      constants.PatchType     `json:"patchType,omitempty"`
	JobAddress     string                  `json:"jobAddress"`
	JobLocation    *geo.Point              `json:"jobLocation,omitempty"`
}

var crackPoundsPerFoot = map[constants.CrackSeverity]float64{
	constants.CrackSeverityLight:  0.05,
	constants.CrackSeverityMedium: 0.08,
	constants.CrackSeverityHeavy:  0.12,
}

const (
	crackBoxPounds      = 30
	propaneFeetPerTank  = 1000
	sandBagsPer100Gal   = 6
	fastDryPerGallons   = 125
	bucketGallons       = 5
	oilSpotShare        = 0.1
	sealcoatCrewSize    = 2
	defaultSealcoatCoat = 1
)

// Composer prices estimates against one rate table and business location.
type Composer struct {
	settings Settings
	business geo.Point
}

func NewComposer(settings Settings, business geo.Point) *Composer {
	return &Composer{settings: settings, business: business}
}

func (c *Composer) Settings() Settings {
	return c.settings
}

// Validate checks that in carries the measurements its job type needs.
func (in *Input) Validate() error {
	v := common.NewValidator()
	v.Field("squareFootage", in.SquareFootage, common.NonNegative)
	v.Field("linearFootage", in.LinearFootage, common.NonNegative)
	v.Field("coats", in.Coats, common.NonNegative)
	if in.NumberOfStalls < 0 {
		v.Add("numberOfStalls", "must be a non-negative number")
	}
	if in.CrackSeverity != "" {
		if _, ok := crackPoundsPerFoot[in.CrackSeverity]; !ok {
			v.Add("crackSeverity", "must be LIGHT, MEDIUM or HEAVY")
		}
	}
	switch in.PatchType {
	case "", constants.PatchHot, constants.PatchCold:
	default:
		v.Add("patchType", "must be HOT or COLD")
	}
	if in.JobLocation != nil {
		v.Field("jobLocation.latitude", in.JobLocation.Latitude, common.Latitude)
		v.Field("jobLocation.longitude", in.JobLocation.Longitude, common.Longitude)
	}

	jobType := in.JobType
	if jobType == "" {
		v.Add("jobType", "is required")
	} else if jt, err := ParseJobType(string(jobType)); err != nil {
		var verrs common.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, e := range verrs {
			v.Add(e.Field, e.Message)
		}
	} else {
		jobType = jt
	}

	switch jobType {
	case constants.JobTypeSealcoating, constants.JobTypeAsphaltPatching:
		if in.SquareFootage <= 0 {
			v.Add("squareFootage", "is required for "+string(jobType))
		}
	case constants.JobTypeCrackRepair:
		if in.LinearFootage <= 0 {
			v.Add("linearFootage", "is required for "+string(jobType))
		}
	case constants.JobTypeLineStriping:
		if in.NumberOfStalls <= 0 {
			v.Add("numberOfStalls", "is required for "+string(jobType))
		}
	case constants.JobTypeCombination:
		if in.SquareFootage <= 0 && in.LinearFootage <= 0 && in.NumberOfStalls <= 0 {
			v.Add("(root)", "a combination job needs square footage, linear footage or stalls")
		}
	}
	return v.Error()
}

// Compose prices in. Each money field is rounded to cents and totals are sums
// of the rounded parts, so the breakdown always adds up.
func (c *Composer) Compose(in Input) (entity.EstimateBreakdown, error) {
	if jt, err := ParseJobType(string(in.JobType)); err == nil {
		in.JobType = jt
	}
	if err := in.Validate(); err != nil {
		return entity.EstimateBreakdown{}, err
	}
	if in.CrackSeverity == "" {
		in.CrackSeverity = constants.DefaultCrackSeverity
	}
	if in.Coats <= 0 {
		in.Coats = defaultSealcoatCoat
	}

	var lines []entity.MaterialLine
	hours := 0.0
	sealcoat := func() {
		lines = append(lines, c.sealcoatMaterials(in.SquareFootage, in.Coats, in.HasOilSpots)...)
		hours += in.SquareFootage / c.settings.SealcoatEfficiency * sealcoatCrewSize
	}
	crack := func() {
		lines = append(lines, c.crackMaterials(in.LinearFootage, in.CrackSeverity)...)
		hours += in.LinearFootage / c.settings.CrackFillEfficiency
	}
	striping := func() {
		lines = append(lines, c.stripingMaterials(in.NumberOfStalls)...)
		hours += float64(in.NumberOfStalls) * c.settings.StallLinearFeet / c.settings.StripingEfficiency
	}

	switch in.JobType {
	case constants.JobTypeSealcoating:
		sealcoat()
	case constants.JobTypeCrackRepair:
		crack()
	case constants.JobTypeLineStriping:
		striping()
	case constants.JobTypeAsphaltPatching:
		lines = append(lines, c.patchMaterial(in.SquareFootage, in.PatchType))
		hours += in.SquareFootage / c.settings.PatchingEfficiency
	case constants.JobTypeCombination:
		if in.SquareFootage > 0 {
			sealcoat()
		}
		if in.LinearFootage > 0 {
			crack()
		}
		if in.NumberOfStalls > 0 {
			striping()
		}
	}

	materialsCost := decimal.Zero
	for _, l := range lines {
		materialsCost = materialsCost.Add(utils.Money(l.Cost))
	}

	s := c.settings
	hoursD := decimal.NewFromFloat(hours)
	fuelPrice := decimal.NewFromFloat(s.FuelPrice)
	laborCost := hoursD.Mul(decimal.NewFromFloat(s.EmployeeRate)).Round(2)
	fuelCost := hoursD.Mul(decimal.NewFromFloat(s.FuelOperational)).Mul(fuelPrice).Round(2)
	equipmentCost := hoursD.Mul(decimal.NewFromFloat(s.EquipmentHourlyRate)).Round(2)

	miles := c.travelMiles(in.JobLocation)
	travelCost := decimal.NewFromFloat(miles).Mul(decimal.NewFromInt(2)).
		Div(decimal.NewFromFloat(s.VehicleMPG)).Mul(fuelPrice).Round(2)

	subtotal := materialsCost.Add(laborCost).Add(fuelCost).Add(equipmentCost).Add(travelCost)
	overhead := percentOf(subtotal, s.OverheadPercentage)
	profit := percentOf(subtotal, s.ProfitPercentage)
	total := subtotal.Add(overhead).Add(profit)

	if lines == nil {
		lines = []entity.MaterialLine{}
	}
	return entity.EstimateBreakdown{
		Materials:     lines,
		MaterialsCost: materialsCost.InexactFloat64(),
		Labor: entity.LaborCost{
			Hours: utils.Round2(hours),
			Rate:  s.EmployeeRate,
			Cost:  laborCost.InexactFloat64(),
		},
		Equipment: entity.EquipmentCost{
			EquipmentCost: equipmentCost.InexactFloat64(),
			FuelCost:      fuelCost.InexactFloat64(),
		},
		Travel: entity.TravelCost{
			Distance: utils.Round2(miles),
			Cost:     travelCost.InexactFloat64(),
		},
		Subtotal: subtotal.InexactFloat64(),
		Overhead: overhead.InexactFloat64(),
		Profit:   profit.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}, nil
}

// travelMiles is the one-way distance to the job: great-circle when the job
// is located, the configured default otherwise.
func (c *Composer) travelMiles(job *geo.Point) float64 {
	if job == nil {
		return c.settings.DefaultTravelMiles
	}
	return geo.MetersToMiles(geo.Distance(c.business, *job))
}

func (c *Composer) sealcoatMaterials(area, coats float64, oilSpots bool) []entity.MaterialLine {
	s := c.settings
	mixed := materials.SealerGallons(materials.SealcoatParams{
		AreaSqFt: area, Coats: coats, CoverageSqFtPerGallon: s.SealcoatingCoverage,
	})
	// derive from the exact volume; mixed is rounded for display only
	exact := decimal.NewFromFloat(area).Mul(decimal.NewFromFloat(coats)).
		Div(decimal.NewFromFloat(s.SealcoatingCoverage))
	concentrate := exact.Div(decimal.NewFromFloat(1 + s.WaterRatio))
	concentrateGal := concentrate.Ceil()

	out := []entity.MaterialLine{
		c.line("SealMaster PMM Concentrate", concentrateGal.InexactFloat64(), "gallon", s.PMMConcentrate),
	}
	out[0].Gallons = &mixed

	sandBags := concentrate.Div(decimal.NewFromInt(100)).Mul(decimal.NewFromInt(sandBagsPer100Gal)).Ceil()
	out = append(out, c.line("Sand (50lb bags)", sandBags.InexactFloat64(), "bag", s.Sand50lb))

	fastDryGal := concentrate.Div(decimal.NewFromInt(fastDryPerGallons)).Mul(decimal.NewFromFloat(s.FastDryRatio)).Ceil()
	if fastDryGal.IsPositive() {
		buckets := fastDryGal.Div(decimal.NewFromInt(bucketGallons)).Ceil()
		out = append(out, c.line("Fast Dry Additive", buckets.InexactFloat64(), "bucket", s.FastDry))
	}

	if oilSpots {
		prep := decimal.NewFromFloat(area).Mul(decimal.NewFromFloat(oilSpotShare)).
			Div(decimal.NewFromFloat(s.PrepSealCoverage)).
			Div(decimal.NewFromInt(bucketGallons)).Ceil()
		out = append(out, c.line("Prep Seal (Oil Spot Primer)", prep.InexactFloat64(), "bucket", s.PrepSeal))
	}
	return out
}

func (c *Composer) crackMaterials(linearFeet float64, severity constants.CrackSeverity) []entity.MaterialLine {
	s := c.settings
	pounds := materials.CrackFillerPounds(materials.CrackFillParams{
		LinearFeet: linearFeet, PoundsPerLinearFoot: crackPoundsPerFoot[severity],
	})
	boxes := decimal.NewFromFloat(pounds).Div(decimal.NewFromInt(crackBoxPounds)).Ceil()
	tanks := decimal.NewFromFloat(linearFeet).Div(decimal.NewFromInt(propaneFeetPerTank)).Ceil()
	return []entity.MaterialLine{
		c.line("Hot Pour Crack Filler (30lb box)", boxes.InexactFloat64(), "box", s.CrackFiller30lb),
		c.line("Propane Tank Refill", tanks.InexactFloat64(), "tank", s.PropaneRefill),
	}
}

func (c *Composer) stripingMaterials(stalls int) []entity.MaterialLine {
	s := c.settings
	lf := float64(stalls) * s.StallLinearFeet
	gallons := materials.StripingGallons(materials.StripingParams{LinearFeet: lf, CoverageLfPerGallon: s.StripingCoverage})
	l := c.line("Line Striping Paint", lf, "linear_foot", s.LinePaint)
	l.Gallons = &gallons
	return []entity.MaterialLine{l}
}

// patchMaterial prices patching per square foot; cold patch is the temporary repair.
func (c *Composer) patchMaterial(area float64, kind constants.PatchType) entity.MaterialLine {
	if kind == constants.PatchCold {
		return c.line("Cold Patch Asphalt", area, "square_foot", c.settings.ColdPatch)
	}
	return c.line("Hot Mix Asphalt", area, "square_foot", c.settings.HotMixAsphalt)
}

func (c *Composer) line(name string, qty float64, unit string, unitPrice float64) entity.MaterialLine {
	cost := decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(unitPrice)).Round(2)
	return entity.MaterialLine{
		Name:      name,
		Quantity:  qty,
		Unit:      unit,
		UnitPrice: unitPrice,
		Cost:      cost.InexactFloat64(),
	}
}

func percentOf(d decimal.Decimal, pct float64) decimal.Decimal {
	return d.Mul(decimal.NewFromFloat(pct)).Div(decimal.NewFromInt(100)).Round(2)
}
