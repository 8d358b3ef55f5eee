package engine

import (
	"context"

	"github.com/accrava/secretsweep/internal/types"
)

// CollectorFunc adapts a function to the Collector interface.
type CollectorFunc struct {
	ID string
	Fn func(ctx context.Context) ([]types.ScanUnit, error)
}

func (c CollectorFunc) Name() string { return c.ID }

func (c CollectorFunc) Collect(ctx context.Context) ([]types.ScanUnit, error) {
	return c.Fn(ctx)
}

// Static returns a collector that always yields units.
func Static(name string, units []types.ScanUnit) Collector {
	return CollectorFunc{ID: name, Fn: func(context.Context) ([]types.ScanUnit, error) {
		return units, nil
	}}
}
