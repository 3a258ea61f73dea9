package repository

import (
	"context"
	"fmt"

	"photoshare-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ShareRepository handles database operations for image shares
type ShareRepository struct {
	db *pgxpool.Pool
}

// NewShareRepository creates a new share repository
func NewShareRepository(db *pgxpool.Pool) *ShareRepository {
	return &ShareRepository{db: db}
}

// Create creates a new image share
func (r *ShareRepository) Create(ctx context.Context, share *models.ImageShare) error {
	query := `
		INSERT INTO image_shares (image_id, user_id, group_id)
		VALUES ($1, $2, $3)
		RETURNING id, shared_at
	`
	err := r.db.QueryRow(ctx, query, share.ImageID, share.UserID, share.GroupID).
		Scan(&share.ID, &share.SharedAt)
	if err != nil {
		return fmt.Errorf("failed to create image share: %w", err)
	}
	return nil
}

// ListByImage retrieves all shares of an image
func (r *ShareRepository) ListByImage(ctx context.Context, imageID int64) ([]*models.ImageShare, error) {
	query := `
		SELECT id, image_id, user_id, group_id, shared_at
		FROM image_shares
		WHERE image_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get image shares: %w", err)
	}
	defer rows.Close()

	shares := []*models.ImageShare{}
	for rows.Next() {
		var share models.ImageShare
		if err := rows.Scan(&share.ID, &share.ImageID, &share.UserID, &share.GroupID, &share.SharedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image share: %w", err)
		}
		shares = append(shares, &share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating image shares: %w", err)
	}
	return shares, nil
}

// HasUserShare checks if an image is shared directly with a user
func (r *ShareRepository) HasUserShare(ctx context.Context, imageID, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM image_shares WHERE image_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, imageID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user share: %w", err)
	}
	return exists, nil
}

// HasGroupShareForMember checks if an image is shared with any group the user belongs to
func (r *ShareRepository) HasGroupShareForMember(ctx context.Context, imageID, userID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM image_shares s
			JOIN group_members gm ON gm.group_id = s.group_id
			WHERE s.image_id = $1 AND gm.user_id = $2
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, imageID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check group share: %w", err)
	}
	return exists, nil
}
