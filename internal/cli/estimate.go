package cli

import (
	"errors"
	"fmt"

	"github.com/joseph-ayodele/fieldops/constants"
	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/entity"
	"github.com/joseph-ayodele/fieldops/internal/estimate"
	"github.com/joseph-ayodele/fieldops/internal/geo"
	"github.com/joseph-ayodele/fieldops/internal/services/estimates"
)

type EstimateCmd struct {
	JobType  string  `arg:"" help:"Job type, e.g. sealcoating, crack_repair, line_striping."`
	Sqft     float64 `help:"Square footage."`
	Lf       float64 `help:"Linear footage of cracks."`
	Stalls   int     `help:"Number of parking stalls."`
	Coats    float64 `help:"Sealcoat coats." default:"1"`
	OilSpots bool    `help:"Prime oil spots before sealing."`
	Severity string  `help:"Crack severity: LIGHT, MEDIUM or HEAVY." default:"MEDIUM"`
	Patch    string  `help:"Patch material for asphalt patching: HOT or COLD." default:"HOT" enum:"HOT,COLD"`
	Address  string  `help:"Job address."`
	Location string  `help:"Job coordinate as lat,lng; travel uses the default distance when omitted."`
	Settings string  `help:"TOML rate table overriding the built-in prices." type:"path"`
	Save     bool    `help:"Persist the estimate and assign it a number."`
	JSON     bool    `name:"json" help:"Print JSON instead of a table."`
}

func (cmd *EstimateCmd) input() (estimate.Input, error) {
	jt, err := estimate.ParseJobType(cmd.JobType)
	if err != nil {
		return estimate.Input{}, err
	}
	in := estimate.Input{
		JobType:        jt,
		SquareFootage:  cmd.Sqft,
		LinearFootage:  cmd.Lf,
		NumberOfStalls: cmd.Stalls,
		Coats:          cmd.Coats,
		HasOilSpots:    cmd.OilSpots,
		CrackSeverity:  constants.CrackSeverity(cmd.Severity),
		PatchType:      constants.PatchType(cmd.Patch),
		JobAddress:     cmd.Address,
	}
	if cmd.Location != "" {
		p, err := parsePoint(cmd.Location)
		if err != nil {
			return estimate.Input{}, err
		}
		in.JobLocation = &p
	}
	return in, nil
}

func (cmd *EstimateCmd) Run(ctx *Context) error {
	in, err := cmd.input()
	if err != nil {
		return describe(err)
	}

	if cmd.Save {
		return cmd.save(ctx, in)
	}

	cfg, err := ctx.LoadConfig()
	if err != nil {
		return err
	}
	path := cmd.Settings
	if path == "" {
		path = cfg.Business.SettingsFile
	}
	settings, err := estimate.LoadSettings(path)
	if err != nil {
		return err
	}
	composer := estimate.NewComposer(settings, geo.Point{Latitude: cfg.Business.Latitude, Longitude: cfg.Business.Longitude})
	b, err := composer.Compose(in)
	if err != nil {
		return describe(err)
	}
	return cmd.print(ctx, fmt.Sprintf("%s estimate (preview)", in.JobType), b, nil)
}

func (cmd *EstimateCmd) save(ctx *Context, in estimate.Input) error {
	cfg, err := ctx.config()
	if err != nil {
		return err
	}
	if cmd.Settings != "" {
		cfg.Business.SettingsFile = cmd.Settings
	}
	a, err := ctx.build(cfg)
	if err != nil {
		return err
	}
	defer a.Close(ctx.Ctx)

	est, err := a.Estimates.Create(ctx.Ctx, estimates.CreateRequest{Input: in})
	if err != nil {
		return describe(err)
	}
	return cmd.print(ctx, fmt.Sprintf("%s %s", est.Number, in.JobType), est.Breakdown, est)
}

func (cmd *EstimateCmd) print(ctx *Context, title string, b entity.EstimateBreakdown, est *entity.Estimate) error {
	if cmd.JSON {
		if est != nil {
			return ctx.printJSON(est)
		}
		return ctx.printJSON(b)
	}
	fmt.Fprintln(ctx.Out, renderBreakdown(title, b))
	if est != nil {
		fmt.Fprintf(ctx.Out, "valid until %s\n", est.ValidUntil.Format("2006-01-02"))
	}
	return nil
}

// describe expands validation failures into one line per field.
func describe(err error) error {
	var ve common.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msg := "invalid estimate:"
	for _, f := range ve {
		msg += fmt.Sprintf("\n  %s %s", f.Field, f.Message)
	}
	return errors.New(msg)
}
