package simple

import (
	"context"
	"fmt"
	"sync"
)

// Generator hands out sequential ids shaped like MongoDB ObjectIDs.
type Generator struct {
	mu      sync.Mutex
	counter uint64
}

func New() *Generator {
	//nolint:exhaustruct
	return &Generator{}
}

func (g *Generator) GetID(_ context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++

	return fmt.Sprintf("%024x", g.counter), nil
}
