package cli

import (
	"fmt"
	"time"

	"github.com/joseph-ayodele/fieldops/internal/repository"
)

type MigrateCmd struct{}

func (cmd *MigrateCmd) Run(ctx *Context) error {
	cfg, err := ctx.config()
	if err != nil {
		return err
	}
	db, err := repository.Open(ctx.Ctx, cfg.Database, ctx.Logger)
	if err != nil {
		return fmt.Errorf("opening DB: %w", err)
	}
	defer repository.Close(db, ctx.Logger)

	if err := repository.Migrate(db, ctx.Logger); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, "migrations applied")
	return nil
}

type DBHealthCmd struct {
	Timeout time.Duration `help:"Ping timeout." default:"1s"`
}

func (cmd *DBHealthCmd) Run(ctx *Context) error {
	cfg, err := ctx.config()
	if err != nil {
		return err
	}
	db, err := repository.Open(ctx.Ctx, cfg.Database, ctx.Logger)
	if err != nil {
		return fmt.Errorf("opening DB: %w", err)
	}
	defer repository.Close(db, ctx.Logger)

	if err := repository.HealthCheck(ctx.Ctx, db, cmd.Timeout, ctx.Logger); err != nil {
		return fmt.Errorf("DB health: FAIL (%w)", err)
	}
	fmt.Fprintln(ctx.Out, "DB health: OK")

	employees, err := repository.NewEmployeeRepository(db, ctx.Logger).List(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("listing employees: %w", err)
	}
	fmt.Fprintf(ctx.Out, "employees count: %d\n", len(employees))
	for _, e := range employees {
		fmt.Fprintf(ctx.Out, "- [%s] %s (%s, $%.2f/h)\n", e.ID, e.Name, e.Role, e.HourlyRate)
	}
	return nil
}
