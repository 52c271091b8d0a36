package allocator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/log"
	"github.com/jbweber/homelab/hil/internal/repository"
)

// Valid 802.1Q identifiers
const (
	minVLAN = 1
	maxVLAN = 4094
)

// vlanPool allocates 802.1Q VLAN numbers from the vlans table
type vlanPool struct {
	vlans []int
}

// NewVLANPool creates a vlan_pool allocator seeded from a range list
func NewVLANPool(ranges string) (Allocator, error) {
	vlans, err := ParseRanges(ranges)
	if err != nil {
		return nil, err
	}
	for _, v := range vlans {
		if v < minVLAN || v > maxVLAN {
			return nil, fmt.Errorf("vlan %d outside %d-%d: %w", v, minVLAN, maxVLAN, domain.ErrBadArgument)
		}
	}
	return &vlanPool{vlans: vlans}, nil
}

func (p *vlanPool) Name() string {
	return VLANPool
}

// Allocate claims the smallest available VLAN that no network already uses
func (p *vlanPool) Allocate(ctx context.Context, q repository.Querier) (string, error) {
	var vlan int
	err := q.QueryRowContext(ctx, `
		SELECT vlan_no FROM vlans
		WHERE available = 1
		  AND CAST(vlan_no AS TEXT) NOT IN (SELECT network_id FROM networks)
		ORDER BY vlan_no ASC
		LIMIT 1`).Scan(&vlan)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrAllocationExhausted
	}
	if err != nil {
		return "", fmt.Errorf("failed to query vlan pool: %v: %w", err, domain.ErrServer)
	}

	if _, err := q.ExecContext(ctx, "UPDATE vlans SET available = 0 WHERE vlan_no = ?", vlan); err != nil {
		return "", fmt.Errorf("failed to claim vlan %d: %v: %w", vlan, err, domain.ErrServer)
	}

	log.G(ctx).WithField("vlan", vlan).Debug("allocated vlan")
	return strconv.Itoa(vlan), nil
}

// Free marks a VLAN available again
func (p *vlanPool) Free(ctx context.Context, q repository.Querier, id string) error {
	logger := log.G(ctx).WithField("network_id", id)

	vlan, err := strconv.Atoi(id)
	if err != nil {
		logger.Warn("ignoring free of non-numeric vlan")
		return nil
	}

	result, err := q.ExecContext(ctx, "UPDATE vlans SET available = 1 WHERE vlan_no = ?", vlan)
	if err != nil {
		return fmt.Errorf("failed to free vlan %d: %v: %w", vlan, err, domain.ErrServer)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v: %w", err, domain.ErrServer)
	}
	if n == 0 {
		logger.Warn("ignoring free of vlan outside the pool")
	}
	return nil
}

// Populate inserts every configured VLAN not yet in the table. Existing rows
// keep their availability.
func (p *vlanPool) Populate(ctx context.Context, q repository.Querier) error {
	added := 0
	for _, vlan := range p.vlans {
		result, err := q.ExecContext(ctx, "INSERT OR IGNORE INTO vlans (vlan_no, available) VALUES (?, 1)", vlan)
		if err != nil {
			return fmt.Errorf("failed to populate vlan %d: %v: %w", vlan, err, domain.ErrServer)
		}
		if n, err := result.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	log.G(ctx).WithFields(logrus.Fields{
		"configured": len(p.vlans),
		"added":      added,
	}).Info("populated vlan pool")
	return nil
}
