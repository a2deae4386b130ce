package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/joseph-ayodele/fieldops/internal/cli"
	"github.com/joseph-ayodele/fieldops/internal/common"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"TOML config file (also FIELDOPS_CONFIG)." type:"path"`
	Verbose bool   `short:"v" help:"Log at debug level."`

	Migrate   cli.MigrateCmd   `cmd:"" help:"Apply database migrations."`
	DBHealth  cli.DBHealthCmd  `cmd:"" name:"dbhealth" help:"Ping the database and list employees."`
	Materials cli.MaterialsCmd `cmd:"" help:"Calculate sealer, crack filler and paint quantities."`
	Weather   cli.WeatherCmd   `cmd:"" help:"Weather suitability checks."`
	Estimate  cli.EstimateCmd  `cmd:"" help:"Price a job."`
	Distance  cli.DistanceCmd  `cmd:"" help:"Great-circle distance between two coordinates."`
	Route     cli.RouteCmd     `cmd:"" help:"Total great-circle length of a multi-stop route."`
	Export    cli.ExportCmd    `cmd:"" help:"Write timesheets or estimates to an Excel workbook."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("fieldops"),
		kong.Description("Field operations toolkit for asphalt maintenance crews"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	if CLI.Config != "" {
		_ = os.Setenv("FIELDOPS_CONFIG", CLI.Config)
	}
	level := slog.LevelWarn
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	appCtx := &cli.Context{
		Ctx:        sigCtx,
		Logger:     logger,
		Out:        os.Stdout,
		LoadConfig: common.LoadConfig,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
