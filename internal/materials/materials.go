// Package materials converts job measurements into material quantities.
//
// Every function is total: a non-positive coverage rate yields 0 rather than
// an error, and results are rounded to two decimals.
package materials

import "github.com/joseph-ayodele/fieldops/internal/utils"

// SealcoatParams describes a sealcoating pass over a lot.
type SealcoatParams struct {
	AreaSqFt              float64 `json:"areaSqFt"`
	Coats                 float64 `json:"coats"`
	CoverageSqFtPerGallon float64 `json:"coverageSqFtPerGallon"`
}

// CrackFillParams describes hot-pour crack filling.
type CrackFillParams struct {
	LinearFeet          float64 `json:"linearFeet"`
	PoundsPerLinearFoot float64 `json:"poundsPerLinearFoot"`
}

// StripingParams describes painted line work.
type StripingParams struct {
	LinearFeet          float64 `json:"linearFeet"`
	CoverageLfPerGallon float64 `json:"coverageLfPerGallon"`
}

// SealerGallons returns area*coats/coverage.
func SealerGallons(p SealcoatParams) float64 {
	if p.CoverageSqFtPerGallon <= 0 {
		return 0
	}
	return utils.Round2(p.AreaSqFt * p.Coats / p.CoverageSqFtPerGallon)
}

// CrackFillerPounds returns linearFeet*poundsPerLinearFoot.
func CrackFillerPounds(p CrackFillParams) float64 {
	return utils.Round2(p.LinearFeet * p.PoundsPerLinearFoot)
}

// StripingGallons returns linearFeet/coverage.
func StripingGallons(p StripingParams) float64 {
	if p.CoverageLfPerGallon <= 0 {
		return 0
	}
	return utils.Round2(p.LinearFeet / p.CoverageLfPerGallon)
}

// Request carries any subset of the three calculations.
type Request struct {
	Sealcoat *SealcoatParams  `json:"sealcoat,omitempty"`
	Crack    *CrackFillParams `json:"crack,omitempty"`
	Striping *StripingParams  `json:"striping,omitempty"`
}

// Result holds a value for each calculation present in the Request.
type Result struct {
	SealcoatGallons   *float64 `json:"sealcoatGallons,omitempty"`
	CrackFillerPounds *float64 `json:"crackFillerPounds,omitempty"`
	StripingGallons   *float64 `json:"stripingGallons,omitempty"`
}

// Calculate runs the calculations named in req.
func Calculate(req Request) Result {
	var res Result
	if req.Sealcoat != nil {
		v := SealerGallons(*req.Sealcoat)
		res.SealcoatGallons = &v
	}
	if req.Crack != nil {
		v := CrackFillerPounds(*req.Crack)
		res.CrackFillerPounds = &v
	}
	if req.Striping != nil {
		v := StripingGallons(*req.Striping)
		res.StripingGallons = &v
	}
	return res
}
