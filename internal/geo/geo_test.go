package geo

import (
	"math"
	"testing"
)

var (
	stuart    = Point{Latitude: 36.6484, Longitude: -80.2737}
	madison   = Point{Latitude: 36.3857, Longitude: -79.9595}
	greensbro = Point{Latitude: 36.0726, Longitude: -79.7920}
)

func TestDistanceToSelfIsZero(t *testing.T) {
	for _, p := range []Point{stuart, madison, {0, 0}, {90, 180}, {-90, -180}, {-33.8688, 151.2093}} {
		if d := Distance(p, p); d != 0 {
			t.Errorf("Distance(%v,%v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceSymmetric(t *testing.T) {
	pairs := [][2]Point{{stuart, madison}, {madison, greensbro}, {{0, 0}, {10, 170}}, {{-45, 20}, {60, -100}}}
	for _, pr := range pairs {
		ab := Distance(pr[0], pr[1])
		ba := Distance(pr[1], pr[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("Distance not symmetric: %v vs %v", ab, ba)
		}
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// one degree of latitude along a meridian
	d := Distance(Point{0, 0}, Point{1, 0})
	want := EarthRadiusMeters * math.Pi / 180
	if math.Abs(d-want) > 1e-6 {
		t.Errorf("Distance = %v, want %v", d, want)
	}

	miles := MetersToMiles(Distance(stuart, madison))
	if miles < 24 || miles > 27 {
		t.Errorf("Stuart->Madison = %.2f mi, want about 25", miles)
	}
}

func TestWithinRadius(t *testing.T) {
	near := Point{Latitude: 36.6500, Longitude: -80.2737}
	radius := MilesToMeters(0.5)
	if !WithinRadius(near, stuart, radius) {
		t.Errorf("point %.0fm away should be inside %.0fm", Distance(near, stuart), radius)
	}
	if WithinRadius(madison, stuart, radius) {
		t.Error("Madison should be outside the yard geofence")
	}
	// boundary is inclusive
	d := Distance(near, stuart)
	if !WithinRadius(near, stuart, d) {
		t.Error("point exactly on the boundary should count as inside")
	}
}

func TestTotalDistanceMiles(t *testing.T) {
	if got := TotalDistanceMiles(nil); got != 0 {
		t.Errorf("empty path = %v, want 0", got)
	}
	if got := TotalDistanceMiles([]Point{stuart}); got != 0 {
		t.Errorf("single point = %v, want 0", got)
	}
	path := []Point{stuart, madison, greensbro}
	want := MetersToMiles(Distance(stuart, madison) + Distance(madison, greensbro))
	if got := TotalDistanceMiles(path); math.Abs(got-want) > 1e-9 {
		t.Errorf("TotalDistanceMiles = %v, want %v", got, want)
	}
}

func TestCheckFences(t *testing.T) {
	fences := []Fence{
		{ID: "yard", Name: "Yard", Center: stuart, RadiusMeters: 800},
		{ID: "supplier", Name: "SealMaster", Center: madison, RadiusMeters: 800},
	}
	got := CheckFences(stuart, fences)
	if len(got) != 2 {
		t.Fatalf("got %d checks, want 2", len(got))
	}
	if !got[0].Inside || got[0].DistanceMeters != 0 {
		t.Errorf("yard check = %+v", got[0])
	}
	if got[1].Inside {
		t.Errorf("supplier check = %+v, want outside", got[1])
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(stuart); err != nil {
		t.Errorf("Validate(stuart) = %v", err)
	}
	for _, p := range []Point{{91, 0}, {-91, 0}, {0, 181}, {0, -181}, {math.NaN(), 0}} {
		if err := Validate(p); err == nil {
			t.Errorf("Validate(%v) should fail", p)
		}
	}
}
