package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/logger"
)

// NoActivePrice is the min price given to properties without an active site.
// It is finite so stores can sort on it.
const NoActivePrice = 1e9

// Ranker orders the properties matching q and returns the requested page.
type Ranker interface {
	RankAndPaginate(ctx context.Context, q PropertyQuery, c Criteria) (*Result, error)
}

func (e *Engine) rankerFor(key SortKey) Ranker {
	if key == SortMinPriceAsc || key == SortMinPriceDesc {
		return &minPriceRanker{
			l:          e.l,
			properties: e.properties,
			hosts:      e.hosts,
		}
	}

	return &storedFieldRanker{
		l:          e.l,
		properties: e.properties,
		sites:      e.sites,
		hosts:      e.hosts,
		workers:    e.conf.EnrichmentWorkers,
	}
}

// storedFieldRanker sorts on stored property fields and looks up the min price
// of each returned row for display.
type storedFieldRanker struct {
	l          *logger.Logger
	properties PropertyStore
	sites      SiteStore
	hosts      HostStore
	workers    int
}

func (r *storedFieldRanker) RankAndPaginate(ctx context.Context, q PropertyQuery, c Criteria) (*Result, error) {
	ctx, span := tracer.Start(ctx, "search.rank.storedField")
	defer span.End()

	sortFields, err := sortFieldsFor(c.SortBy, q.Geo)
	if err != nil {
		return nil, fmt.Errorf("sort by %q: %w", c.SortBy, err)
	}

	total, err := r.properties.CountProperties(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count properties: %w", err)
	}

	pagination := NewPagination(c.Page, c.Limit, total)
	if total == 0 || pagination.Skip() >= total {
		return &Result{Properties: []Listing{}, Pagination: pagination}, nil
	}

	properties, err := r.properties.FindProperties(ctx, q, sortFields, pagination.Skip(), int64(c.Limit))
	if err != nil {
		return nil, fmt.Errorf("find properties: %w", err)
	}

	listings, err := attachHosts(ctx, r.hosts, properties)
	if err != nil {
		return nil, err
	}

	if err := r.enrichMinPrice(ctx, listings); err != nil {
		return nil, err
	}

	r.l.LogDebugf("Ranked %d of %d properties by %v", len(listings), total, sortFields)

	return &Result{Properties: listings, Pagination: pagination}, nil
}

func (r *storedFieldRanker) enrichMinPrice(ctx context.Context, listings []Listing) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i := range listings {
		listing := &listings[i]

		g.Go(func() error {
			price, ok, err := r.sites.MinActivePrice(gctx, listing.ID)
			if err != nil {
				return fmt.Errorf("min active price of property %s: %w", listing.ID, err)
			}

			if ok {
				listing.MinPrice = &price
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("enrich min price: %w", err)
	}

	return nil
}

// minPriceRanker lets the store compute and sort on the min active price.
type minPriceRanker struct {
	l          *logger.Logger
	properties PropertyStore
	hosts      HostStore
}

func (r *minPriceRanker) RankAndPaginate(ctx context.Context, q PropertyQuery, c Criteria) (*Result, error) {
	ctx, span := tracer.Start(ctx, "search.rank.minPrice")
	defer span.End()

	total, err := r.properties.CountProperties(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count properties: %w", err)
	}

	pagination := NewPagination(c.Page, c.Limit, total)
	if total == 0 || pagination.Skip() >= total {
		return &Result{Properties: []Listing{}, Pagination: pagination}, nil
	}

	priced, err := r.properties.FindPropertiesByMinPrice(ctx, q, c.SortBy == SortMinPriceDesc, pagination.Skip(), int64(c.Limit))
	if err != nil {
		return nil, fmt.Errorf("find properties by min price: %w", err)
	}

	properties := make([]Property, 0, len(priced))
	for i := range priced {
		properties = append(properties, priced[i].Property)
	}

	listings, err := attachHosts(ctx, r.hosts, properties)
	if err != nil {
		return nil, err
	}

	for i := range listings {
		if price := priced[i].MinPrice; price < NoActivePrice {
			listings[i].MinPrice = &price
		}
	}

	r.l.LogDebugf("Ranked %d of %d properties by min price", len(listings), total)

	return &Result{Properties: listings, Pagination: pagination}, nil
}

// attachHosts wraps properties into listings carrying their host summary.
func attachHosts(ctx context.Context, hosts HostStore, properties []Property) ([]Listing, error) {
	seen := make(map[string]struct{}, len(properties))
	ids := make([]string, 0, len(properties))

	for i := range properties {
		id := properties[i].HostID
		if id == "" {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	var summaries map[string]HostSummary

	if len(ids) > 0 {
		var err error

		summaries, err = hosts.HostSummaries(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("host summaries: %w", err)
		}
	}

	listings := make([]Listing, 0, len(properties))

	for i := range properties {
		listing := Listing{Property: &properties[i]}

		if summary, ok := summaries[properties[i].HostID]; ok {
			listing.Host = &summary
		}

		listings = append(listings, listing)
	}

	return listings, nil
}
