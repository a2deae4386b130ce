package materials

import "testing"

func TestSealerGallons(t *testing.T) {
	tests := []struct {
		name string
		in   SealcoatParams
		want float64
	}{
		{"two coats", SealcoatParams{AreaSqFt: 10000, Coats: 2, CoverageSqFtPerGallon: 100}, 200},
		{"rounded", SealcoatParams{AreaSqFt: 1000, Coats: 1, CoverageSqFtPerGallon: 76}, 13.16},
		{"zero coverage", SealcoatParams{AreaSqFt: 1000, Coats: 2, CoverageSqFtPerGallon: 0}, 0},
		{"negative coverage", SealcoatParams{AreaSqFt: 1000, Coats: 2, CoverageSqFtPerGallon: -5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SealerGallons(tt.in); got != tt.want {
				t.Errorf("SealerGallons(%+v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCrackFillerPounds(t *testing.T) {
	if got := CrackFillerPounds(CrackFillParams{LinearFeet: 500, PoundsPerLinearFoot: 0.12}); got != 60 {
		t.Errorf("CrackFillerPounds = %v, want 60", got)
	}
	if got := CrackFillerPounds(CrackFillParams{LinearFeet: 333, PoundsPerLinearFoot: 0.08}); got != 26.64 {
		t.Errorf("CrackFillerPounds = %v, want 26.64", got)
	}
}

func TestStripingGallons(t *testing.T) {
	if got := StripingGallons(StripingParams{LinearFeet: 1000, CoverageLfPerGallon: 250}); got != 4 {
		t.Errorf("StripingGallons = %v, want 4", got)
	}
	if got := StripingGallons(StripingParams{LinearFeet: 1000, CoverageLfPerGallon: 0}); got != 0 {
		t.Errorf("StripingGallons zero coverage = %v, want 0", got)
	}
}

func TestCalculateOnlyRequested(t *testing.T) {
	res := Calculate(Request{Crack: &CrackFillParams{LinearFeet: 500, PoundsPerLinearFoot: 0.12}})
	if res.SealcoatGallons != nil || res.StripingGallons != nil {
		t.Fatalf("unexpected results: %+v", res)
	}
	if res.CrackFillerPounds == nil || *res.CrackFillerPounds != 60 {
		t.Fatalf("CrackFillerPounds = %v", res.CrackFillerPounds)
	}

	all := Calculate(Request{
		Sealcoat: &SealcoatParams{AreaSqFt: 10000, Coats: 2, CoverageSqFtPerGallon: 100},
		Crack:    &CrackFillParams{LinearFeet: 500, PoundsPerLinearFoot: 0.12},
		Striping: &StripingParams{LinearFeet: 1000, CoverageLfPerGallon: 250},
	})
	if *all.SealcoatGallons != 200 || *all.CrackFillerPounds != 60 || *all.StripingGallons != 4 {
		t.Errorf("Calculate = %v/%v/%v", *all.SealcoatGallons, *all.CrackFillerPounds, *all.StripingGallons)
	}
}
