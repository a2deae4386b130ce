package gamification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joseph-ayodele/fieldops/constants"
	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/kv"
)

// Flags reads and writes feature flags through a kv.Store. Environment
// overrides win over stored values and cannot be changed at runtime.
type Flags struct {
	store     kv.Store
	overrides map[string]bool
	logger    *slog.Logger
	mu        sync.Mutex
}

func NewFlags(store kv.Store, overrides map[string]bool, logger *slog.Logger) *Flags {
	return &Flags{store: store, overrides: overrides, logger: logger}
}

// All returns every known flag, defaulting to false.
func (f *Flags) All(ctx context.Context) (map[constants.FeatureFlag]bool, error) {
	stored := map[string]bool{}
	if _, err := kv.GetJSON(ctx, f.store, constants.KeyFeatureFlags, &stored); err != nil {
		return nil, common.InternalError("failed to load feature flags", err)
	}
	out := make(map[constants.FeatureFlag]bool, len(constants.AllFeatureFlags))
	for _, flag := range constants.AllFeatureFlags {
		out[flag] = stored[string(flag)]
		if v, ok := f.overrides[string(flag)]; ok {
			out[flag] = v
		}
	}
	return out, nil
}

// Enabled reports a single flag.
func (f *Flags) Enabled(ctx context.Context, flag constants.FeatureFlag) (bool, error) {
	all, err := f.All(ctx)
	if err != nil {
		return false, err
	}
	return all[flag], nil
}

// Set updates the stored values of the given flags and returns the result.
func (f *Flags) Set(ctx context.Context, updates map[string]bool) (map[constants.FeatureFlag]bool, error) {
	v := common.NewValidator()
	for name := range updates {
		if !knownFlag(name) {
			v.Add(name, "unknown feature flag")
		} else if _, ok := f.overrides[name]; ok {
			v.Add(name, "overridden by environment")
		}
	}
	if err := v.Error(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	stored := map[string]bool{}
	if _, err := kv.GetJSON(ctx, f.store, constants.KeyFeatureFlags, &stored); err != nil {
		return nil, common.InternalError("failed to load feature flags", err)
	}
	for name, on := range updates {
		stored[name] = on
	}
	if err := kv.SetJSON(ctx, f.store, constants.KeyFeatureFlags, stored); err != nil {
		return nil, common.InternalError("failed to save feature flags", err)
	}
	f.logger.Info("feature flags updated", "flags", fmt.Sprint(updates))
	return f.All(ctx)
}

func knownFlag(name string) bool {
	for _, flag := range constants.AllFeatureFlags {
		if string(flag) == name {
			return true
		}
	}
	return false
}
