package search

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/logger"
)

var tracer = otel.Tracer("github.com/vophuhao/tour-cam-trai-sub001/internal/search")

type PropertyStore interface {
	FindProperties(ctx context.Context, q PropertyQuery, sort []SortField, skip, limit int64) ([]Property, error)
	CountProperties(ctx context.Context, q PropertyQuery) (int64, error)
	// FindPropertiesByMinPrice orders properties by the lowest base price of their
	// active sites. Properties without active sites get NoActivePrice and come last.
	FindPropertiesByMinPrice(ctx context.Context, q PropertyQuery, desc bool, skip, limit int64) ([]PricedProperty, error)
}

type SiteStore interface {
	FindSiteRefs(ctx context.Context, q SiteQuery) ([]SiteRef, error)
	MinActivePrice(ctx context.Context, propertyID string) (float64, bool, error)
}

type BookingStore interface {
	FindBookings(ctx context.Context, q BookingQuery) ([]Booking, error)
}

type HostStore interface {
	HostSummaries(ctx context.Context, ids []string) (map[string]HostSummary, error)
}

type Config struct {
	L                   *logger.Logger
	Defaults            Defaults
	ConcurrentResolvers bool
	EnrichmentWorkers   int
}

type Engine struct {
	l          *logger.Logger
	conf       Config
	properties PropertyStore
	sites      SiteStore
	bookings   BookingStore
	hosts      HostStore
}

func New(conf Config, properties PropertyStore, sites SiteStore, bookings BookingStore, hosts HostStore) *Engine {
	if conf.L == nil {
		conf.L = logger.Discard()
	}

	if conf.Defaults.Limit < 1 {
		conf.Defaults.Limit = 10
	}

	if conf.EnrichmentWorkers < 1 {
		conf.EnrichmentWorkers = 8
	}

	return &Engine{
		l:          conf.L,
		conf:       conf,
		properties: properties,
		sites:      sites,
		bookings:   bookings,
		hosts:      hosts,
	}
}

// Search resolves criteria into one page of bookable properties. Criteria that
// cannot match anything produce an empty page, not an error.
func (e *Engine) Search(ctx context.Context, criteria Criteria) (*Result, error) {
	c := criteria.Normalized(e.conf.Defaults)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "search.Search")
	defer span.End()

	candidates, err := e.resolveCandidates(ctx, c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("resolve candidates: %w", err)
	}

	if candidates.Empty() {
		return EmptyResult(c), nil
	}

	res, err := e.rankerFor(c.SortBy).RankAndPaginate(ctx, propertyQuery(c, candidates), c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("rank and paginate: %w", err)
	}

	span.SetAttributes(attribute.Int64("search.total", res.Pagination.Total))

	return res, nil
}

// propertyQuery combines the candidate ids with the property-level filters.
func propertyQuery(c Criteria, candidates Candidates) PropertyQuery {
	q := PropertyQuery{
		Text:       c.Search,
		City:       c.City,
		State:      c.State,
		Country:    c.Country,
		IsActive:   c.IsActive,
		IsFeatured: c.IsFeatured,
		IsVerified: c.IsVerified,
		HostID:     c.Host,
		MinRating:  c.MinRating,
	}

	if candidates.Constrained() {
		q.Restricted = true
		q.IDs = candidates.IDs().Sorted()
	}

	if c.HasGeo() {
		q.Geo = NewGeoFilter(*c.Lat, *c.Lng, *c.Radius, c.SortBy)
	}

	return q
}

func (e *Engine) resolveCandidates(ctx context.Context, c Criteria) (Candidates, error) {
	var active []resolver

	for _, r := range e.resolvers() {
		if r.applies(c) {
			active = append(active, r)
		}
	}

	if e.conf.ConcurrentResolvers && len(active) > 1 {
		return e.resolveConcurrently(ctx, c, active)
	}

	var candidates Candidates

	for _, r := range active {
		ids, err := e.runResolver(ctx, c, r)
		if err != nil {
			return Candidates{}, err
		}

		candidates = candidates.Narrow(ids)
		if candidates.Empty() {
			e.l.LogDebugf("Resolver %s left no candidates, skipping the rest", r.name)

			return candidates, nil
		}
	}

	return candidates, nil
}

// resolveConcurrently runs independent resolvers in parallel. The first empty
// result cancels the others.
func (e *Engine) resolveConcurrently(ctx context.Context, c Criteria, active []resolver) (Candidates, error) {
	results := make([]IDSet, len(active))

	g, gctx := errgroup.WithContext(ctx)

	for i, r := range active {
		g.Go(func() error {
			ids, err := e.runResolver(gctx, c, r)
			if err != nil {
				return err
			}

			if ids.Len() == 0 {
				e.l.LogDebugf("Resolver %s left no candidates, cancelling the rest", r.name)

				return errEmptyCandidates
			}

			results[i] = ids

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, errEmptyCandidates) {
			return Candidates{}.Narrow(IDSet{}), nil
		}

		return Candidates{}, err
	}

	var candidates Candidates

	for _, ids := range results {
		candidates = candidates.Narrow(ids)
		if candidates.Empty() {
			break
		}
	}

	return candidates, nil
}

func (e *Engine) runResolver(ctx context.Context, c Criteria, r resolver) (IDSet, error) {
	ctx, span := tracer.Start(ctx, "search.resolver."+r.name)
	defer span.End()

	ids, err := r.resolve(ctx, c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("resolve %s: %w", r.name, err)
	}

	span.SetAttributes(attribute.Int("search.candidates", ids.Len()))

	return ids, nil
}
