package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/fieldops/internal/utils"
)

type ExportCmd struct {
	Kind     string `arg:"" enum:"timesheets,estimates" help:"What to export: timesheets or estimates."`
	Out      string `short:"o" help:"Output .xlsx file." default:"export.xlsx" type:"path"`
	Employee string `help:"Restrict timesheets to one employee ID."`
	From     string `help:"First day (YYYY-MM-DD) for timesheets."`
	To       string `help:"Last day (YYYY-MM-DD) for timesheets."`
}

func (cmd *ExportCmd) Run(ctx *Context) error {
	cfg, err := ctx.config()
	if err != nil {
		return err
	}
	a, err := ctx.build(cfg)
	if err != nil {
		return err
	}
	defer a.Close(ctx.Ctx)

	var data []byte
	switch cmd.Kind {
	case "timesheets":
		var employeeID *uuid.UUID
		if cmd.Employee != "" {
			id, err := uuid.Parse(cmd.Employee)
			if err != nil {
				return fmt.Errorf("employee: %w", err)
			}
			employeeID = &id
		}
		from, err := optionalDay(cmd.From)
		if err != nil {
			return fmt.Errorf("from: %w", err)
		}
		to, err := optionalDay(cmd.To)
		if err != nil {
			return fmt.Errorf("to: %w", err)
		}
		data, err = a.Export.TimesheetsXLSX(ctx.Ctx, employeeID, from, to)
		if err != nil {
			return err
		}
	default:
		data, err = a.Export.EstimatesXLSX(ctx.Ctx)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(cmd.Out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cmd.Out, err)
	}
	ctx.Logger.Info("export written", "kind", cmd.Kind, "path", cmd.Out, "bytes", len(data))
	fmt.Fprintf(ctx.Out, "wrote %s\n", cmd.Out)
	return nil
}

func optionalDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := utils.ParseYMD(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
