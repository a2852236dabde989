package migration

import (
	"context"
	"testing"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/idgen/simple"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/logger"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/search"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/storage/memory"
)

func TestUpSeedsSearchableCatalog(t *testing.T) {
	ctx := context.Background()
	db := memory.New(memory.Config{L: logger.Discard()})

	if err := Up(ctx, logger.Discard(), db, db, simple.New()); err != nil {
		t.Fatalf("Up() error = %v", err)
	}

	engine := search.New(search.Config{}, db, db, db, db)

	res, err := engine.Search(ctx, search.Criteria{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if res.Pagination.Total != 4 {
		t.Errorf("total = %d, want 4", res.Pagination.Total)
	}

	for _, listing := range res.Properties {
		if listing.Host == nil {
			t.Errorf("property %s has no host summary", listing.Name)
		}
	}
}

func TestDemoStats(t *testing.T) {
	data, err := Demo(context.Background(), simple.New())
	if err != nil {
		t.Fatalf("Demo() error = %v", err)
	}

	total := 0
	for _, p := range data.Properties {
		total += p.Stats.TotalSites
	}

	if total != len(data.Sites) {
		t.Errorf("sum of totalSites = %d, want %d", total, len(data.Sites))
	}
}
