package cli

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/fieldops/internal/geo"
	"github.com/joseph-ayodele/fieldops/internal/materials"
	"github.com/joseph-ayodele/fieldops/internal/utils"
	"github.com/joseph-ayodele/fieldops/internal/weather"
)

type MaterialsCmd struct {
	Area           float64 `help:"Sealcoat area in square feet."`
	Coats          float64 `help:"Sealcoat coats." default:"1"`
	Coverage       float64 `help:"Sealer coverage, sq ft per gallon." default:"80"`
	CrackFeet      float64 `help:"Crack length in linear feet."`
	PoundsPerFoot  float64 `help:"Crack filler pounds per linear foot." default:"0.08"`
	StripeFeet     float64 `help:"Painted line length in linear feet."`
	StripeCoverage float64 `help:"Paint coverage, linear feet per gallon." default:"250"`
}

func (cmd *MaterialsCmd) Run(ctx *Context) error {
	var req materials.Request
	if cmd.Area > 0 {
		req.Sealcoat = &materials.SealcoatParams{AreaSqFt: cmd.Area, Coats: cmd.Coats, CoverageSqFtPerGallon: cmd.Coverage}
	}
	if cmd.CrackFeet > 0 {
		req.Crack = &materials.CrackFillParams{LinearFeet: cmd.CrackFeet, PoundsPerLinearFoot: cmd.PoundsPerFoot}
	}
	if cmd.StripeFeet > 0 {
		req.Striping = &materials.StripingParams{LinearFeet: cmd.StripeFeet, CoverageLfPerGallon: cmd.StripeCoverage}
	}
	if req.Sealcoat == nil && req.Crack == nil && req.Striping == nil {
		return fmt.Errorf("nothing to calculate: pass --area, --crack-feet or --stripe-feet")
	}
	return ctx.printJSON(materials.Calculate(req))
}

type WeatherClassifyCmd struct {
	Temp      float64 `help:"Temperature in °F." required:""`
	Condition string  `help:"Condition, e.g. Clear, Clouds, Rain." default:"Clear"`
	Wind      float64 `help:"Wind speed in mph."`
	Precip    float64 `help:"Precipitation in inches."`
}

func (cmd *WeatherClassifyCmd) Run(ctx *Context) error {
	a := weather.Classify(weather.Sample{TempF: cmd.Temp, Condition: cmd.Condition, WindMph: cmd.Wind, PrecipitationIn: cmd.Precip})
	fmt.Fprintln(ctx.Out, a.Recommendation)
	for _, r := range a.Reasons {
		fmt.Fprintf(ctx.Out, "  - %s\n", r)
	}
	return nil
}

type WeatherCmd struct {
	Classify WeatherClassifyCmd `cmd:"" help:"Classify current conditions as PROCEED, CAUTION or DELAY."`
}

type DistanceCmd struct {
	From string `arg:"" help:"Origin as lat,lng."`
	To   string `arg:"" optional:"" help:"Destination as lat,lng (default: the business yard)."`
}

func (cmd *DistanceCmd) Run(ctx *Context) error {
	from, err := parsePoint(cmd.From)
	if err != nil {
		return err
	}
	cfg, err := ctx.LoadConfig()
	if err != nil {
		return err
	}
	yard := geo.Point{Latitude: cfg.Business.Latitude, Longitude: cfg.Business.Longitude}
	to := yard
	if strings.TrimSpace(cmd.To) != "" {
		if to, err = parsePoint(cmd.To); err != nil {
			return err
		}
	}
	meters := geo.Distance(from, to)
	fmt.Fprintf(ctx.Out, "%.1f m (%.2f mi)\n", meters, utils.Round2(geo.MetersToMiles(meters)))
	if to == yard {
		fmt.Fprintf(ctx.Out, "within geofence: %v\n", geo.WithinRadius(from, yard, cfg.Business.GeofenceRadiusMeters))
	}
	return nil
}

type RouteCmd struct {
	Stops []string `arg:"" help:"Two or more stops as lat,lng, in driving order."`
}

func (cmd *RouteCmd) Run(ctx *Context) error {
	if len(cmd.Stops) < 2 {
		return fmt.Errorf("a route needs at least two stops")
	}
	path := make([]geo.Point, 0, len(cmd.Stops))
	for _, raw := range cmd.Stops {
		p, err := parsePoint(raw)
		if err != nil {
			return err
		}
		path = append(path, p)
	}
	fmt.Fprintf(ctx.Out, "%.2f mi over %d legs\n", utils.Round2(geo.TotalDistanceMiles(path)), len(path)-1)
	return nil
}
