package geo

// Fence is a named circular boundary.
type Fence struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Center       Point   `json:"center"`
	RadiusMeters float64 `json:"radiusMeters"`
}

// Contains reports whether p is inside the fence.
func (f Fence) Contains(p Point) bool {
	return WithinRadius(p, f.Center, f.RadiusMeters)
}

type FenceCheck struct {
	FenceID        string  `json:"fenceId"`
	FenceName      string  `json:"fenceName"`
	Inside         bool    `json:"inside"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// CheckFences evaluates p against every fence, preserving fence order.
func CheckFences(p Point, fences []Fence) []FenceCheck {
	out := make([]FenceCheck, 0, len(fences))
	for _, f := range fences {
		d := Distance(p, f.Center)
		out = append(out, FenceCheck{
			FenceID:        f.ID,
			FenceName:      f.Name,
			Inside:         d <= f.RadiusMeters,
			DistanceMeters: d,
		})
	}
	return out
}
