package route

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
)

// Repository loads routes from storage.
type Repository interface {
	List(ctx context.Context) ([]models.Route, error)
}

// Catalog is read-only route reference data. It is built once and never
// mutated, so lookups need no locking.
type Catalog struct {
	byID  map[string]models.Route
	order []string
}

// NewCatalog builds a catalog. Later duplicates of an id replace earlier ones.
func NewCatalog(routes []models.Route) *Catalog {
	c := &Catalog{byID: make(map[string]models.Route, len(routes))}
	for _, r := range routes {
		if _, exists := c.byID[r.ID]; !exists {
			c.order = append(c.order, r.ID)
		}
		c.byID[r.ID] = r
	}
	return c
}

// Load builds the catalog from the demo routes and, when repo is not nil,
// the routes stored in the database.
func Load(ctx context.Context, repo Repository, log logger.Logger) (*Catalog, error) {
	routes := DemoRoutes()
	if repo != nil {
		stored, err := repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("route.Load: %w", err)
		}
		routes = append(routes, stored...)
		log.Info(ctx, "routes loaded from database", "count", len(stored))
	}

	for _, r := range routes {
		if err := Validate(r); err != nil {
			return nil, fmt.Errorf("route.Load: %s: %w", r.ID, err)
		}
	}
	return NewCatalog(routes), nil
}

// Validate checks that a route is usable by the geofence rules.
func Validate(r models.Route) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("route id is empty")
	}
	for _, z := range r.DangerZones {
		if z.Radius <= 0 {
			return fmt.Errorf("danger zone %q has non-positive radius", z.Description)
		}
	}
	return nil
}

// Get returns a copy of the route with the given id.
func (c *Catalog) Get(id string) (models.Route, error) {
	r, ok := c.byID[id]
	if !ok {
		return models.Route{}, types.ErrRouteNotFound
	}
	return clone(r), nil
}

// List returns copies of all routes in load order.
func (c *Catalog) List() []models.Route {
	out := make([]models.Route, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, clone(c.byID[id]))
	}
	return out
}

func clone(r models.Route) models.Route {
	r.Waypoints = slices.Clone(r.Waypoints)
	r.DangerZones = slices.Clone(r.DangerZones)
	r.VehicleTypes = slices.Clone(r.VehicleTypes)
	return r
}

// IDs returns the sorted route ids.
func (c *Catalog) IDs() []string {
	ids := slices.Clone(c.order)
	slices.Sort(ids)
	return ids
}
