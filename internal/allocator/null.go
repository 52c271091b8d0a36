package allocator

import (
	"context"

	"github.com/google/uuid"

	"github.com/jbweber/homelab/hil/internal/repository"
)

// nullAllocator hands out random identifiers for deployments without a VLAN
// fabric. It never runs out and keeps no state.
type nullAllocator struct{}

// NewNull creates the null allocator
func NewNull() Allocator {
	return nullAllocator{}
}

func (nullAllocator) Name() string {
	return Null
}

func (nullAllocator) Allocate(context.Context, repository.Querier) (string, error) {
	return uuid.NewString(), nil
}

func (nullAllocator) Free(context.Context, repository.Querier, string) error {
	return nil
}

func (nullAllocator) Populate(context.Context, repository.Querier) error {
	return nil
}
