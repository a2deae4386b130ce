// Package cli implements the fieldops command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/fieldops/internal/app"
	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/geo"
)

// Context is passed to every command's Run method.
type Context struct {
	Ctx        context.Context
	Logger     *slog.Logger
	Out        io.Writer
	LoadConfig func() (*common.Config, error)
}

func (c *Context) config() (*common.Config, error) {
	cfg, err := c.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// build wires the application for a one-shot command. Migrations are
// applied so a fresh database works without a separate migrate run.
func (c *Context) build(cfg *common.Config) (*app.App, error) {
	return app.Build(c.Ctx, cfg, c.Logger, app.Options{Migrate: true})
}

func (c *Context) printJSON(v any) error {
	enc := json.NewEncoder(c.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parsePoint reads "lat,lng".
func parsePoint(s string) (geo.Point, error) {
	latRaw, lngRaw, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Point{}, fmt.Errorf("coordinate %q must be lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("latitude %q: %w", latRaw, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngRaw), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("longitude %q: %w", lngRaw, err)
	}
	p := geo.Point{Latitude: lat, Longitude: lng}
	if err := geo.Validate(p); err != nil {
		return geo.Point{}, err
	}
	return p, nil
}
