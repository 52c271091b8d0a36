package repository

import (
	"context"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
)

// AttachmentRepository defines operations on applied nic attachments. Rows
// are written only by the reconciler once the switch has been reconfigured.
type AttachmentRepository interface {
	Repository[domain.NetworkAttachment, int64]
	FindByNic(ctx context.Context, nicID int64) (domain.NetworkAttachment, error)
	FindByNetwork(ctx context.Context, networkID int64) ([]domain.NetworkAttachment, error)
	DeleteByNic(ctx context.Context, nicID int64) error
	CountByNetwork(ctx context.Context, networkID int64) (int, error)
}

// attachmentRepositoryImpl implements AttachmentRepository
type attachmentRepositoryImpl struct {
	baseRepository[domain.NetworkAttachment]
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(q Querier) AttachmentRepository {
	return &attachmentRepositoryImpl{
		baseRepository: newBaseRepository(q, "network_attachments", "id, nic_id, network_id, channel", scanAttachment),
	}
}

func scanAttachment(s scanner) (domain.NetworkAttachment, error) {
	var a domain.NetworkAttachment
	err := s.Scan(&a.ID, &a.NicID, &a.NetworkID, &a.Channel)
	return a, err
}

// Save records a nic as attached. A nic carries at most one attachment.
func (r *attachmentRepositoryImpl) Save(ctx context.Context, a domain.NetworkAttachment) (domain.NetworkAttachment, error) {
	if a.Channel == "" {
		a.Channel = domain.DefaultChannel
	}

	dup, err := r.count(ctx, "nic_id = ? AND id != ?", a.NicID, a.ID)
	if err != nil {
		return domain.NetworkAttachment{}, err
	}
	if dup > 0 {
		return domain.NetworkAttachment{}, fmt.Errorf("nic %d is already attached: %w", a.NicID, domain.ErrDuplicate)
	}

	if a.ID == 0 {
		id, err := r.insert(ctx, "INSERT INTO network_attachments (nic_id, network_id, channel) VALUES (?, ?, ?)",
			a.NicID, a.NetworkID, a.Channel)
		if err != nil {
			return domain.NetworkAttachment{}, err
		}
		a.ID = id
		return a, nil
	}

	err = r.exec(ctx, a.ID, "UPDATE network_attachments SET network_id = ?, channel = ? WHERE id = ?", a.NetworkID, a.Channel, a.ID)
	if err != nil {
		return domain.NetworkAttachment{}, err
	}
	return a, nil
}

// FindByNic finds the attachment of a nic
func (r *attachmentRepositoryImpl) FindByNic(ctx context.Context, nicID int64) (domain.NetworkAttachment, error) {
	return r.findOne(ctx, fmt.Sprintf("for nic %d", nicID), "nic_id = ?", nicID)
}

// FindByNetwork lists the attachments of a network
func (r *attachmentRepositoryImpl) FindByNetwork(ctx context.Context, networkID int64) ([]domain.NetworkAttachment, error) {
	return r.findMany(ctx, "network_id = ?", networkID)
}

// DeleteByNic removes the attachment of a nic if there is one
func (r *attachmentRepositoryImpl) DeleteByNic(ctx context.Context, nicID int64) error {
	if _, err := r.q.ExecContext(ctx, "DELETE FROM network_attachments WHERE nic_id = ?", nicID); err != nil {
		return fmt.Errorf("failed to delete attachment: %v: %w", err, domain.ErrServer)
	}
	return nil
}

// CountByNetwork counts the nics attached to a network
func (r *attachmentRepositoryImpl) CountByNetwork(ctx context.Context, networkID int64) (int, error) {
	return r.count(ctx, "network_id = ?", networkID)
}
