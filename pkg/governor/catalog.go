package governor

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/quotient-project/quotient/pkg/capacity"
	"github.com/quotient-project/quotient/pkg/models"
)

// Catalog holds the total capacity per resource type, discovered once at
// startup. It is immutable afterwards, so reads need no locking.
type Catalog struct {
	capacities models.Capacities
}

// NewCatalog discovers capacities from the given provider.
func NewCatalog(ctx context.Context, provider capacity.Provider) (*Catalog, error) {
	capacities, err := provider.GetTotalCapacity(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range models.ResourceTypes() {
		log.Ctx(ctx).Info().
			Str("ResourceType", t.String()).
			Float64("Capacity", capacities.Get(t)).
			Str("Unit", t.Unit()).
			Msg("Discovered resource capacity")
	}
	return NewCatalogFromCapacities(capacities), nil
}

// NewCatalogFromCapacities builds a catalog from known capacities, bypassing
// discovery. Used by tests and by configured-only deployments.
func NewCatalogFromCapacities(capacities models.Capacities) *Catalog {
	return &Catalog{capacities: capacities}
}

// Capacity returns the total capacity of the type, or 0 if the type was
// never discovered or configured.
func (c *Catalog) Capacity(t models.ResourceType) float64 {
	return c.capacities.Get(t)
}

// Capacities returns a copy of all capacities.
func (c *Catalog) Capacities() models.Capacities {
	return c.capacities
}
