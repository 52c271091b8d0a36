// Package allocator hands out and reclaims network identifiers. Exactly one
// strategy is active per process; it is built from configuration and passed
// to the components that create and delete networks.
package allocator

import (
	"context"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/repository"
)

// Allocator manages a pool of network identifiers. Every method runs against
// the caller's Querier so allocation commits or rolls back together with the
// network row that triggered it.
type Allocator interface {
	// Name returns the strategy name used in configuration
	Name() string

	// Allocate claims a free identifier. Returns domain.ErrAllocationExhausted
	// when none is left.
	Allocate(ctx context.Context, q repository.Querier) (string, error)

	// Free returns an identifier to the pool. Unknown identifiers are logged
	// and ignored.
	Free(ctx context.Context, q repository.Querier, id string) error

	// Populate seeds the pool from configuration. Safe to run repeatedly.
	Populate(ctx context.Context, q repository.Querier) error
}

// Strategy names
const (
	VLANPool = "vlan_pool"
	Null     = "null"
)

// Options selects and configures one strategy
type Options struct {
	VLANPool *VLANPoolOptions
	Null     bool
}

// VLANPoolOptions configures the vlan_pool strategy
type VLANPoolOptions struct {
	// VLANs is a range list such as "100-109,300,702"
	VLANs string
}

// New builds the allocator selected by opts. Selecting zero or more than one
// strategy is an error.
func New(opts Options) (Allocator, error) {
	switch {
	case opts.VLANPool != nil && opts.Null:
		return nil, fmt.Errorf("only one allocator may be configured: %w", domain.ErrBadArgument)
	case opts.VLANPool != nil:
		return NewVLANPool(opts.VLANPool.VLANs)
	case opts.Null:
		return NewNull(), nil
	default:
		return nil, fmt.Errorf("no allocator configured: %w", domain.ErrBadArgument)
	}
}
