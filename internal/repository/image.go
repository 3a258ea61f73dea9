package repository

import (
	"context"
	"fmt"
	"time"

	"photoshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ImageRepository handles database operations for images
type ImageRepository struct {
	db *pgxpool.Pool
}

// NewImageRepository creates a new image repository
func NewImageRepository(db *pgxpool.Pool) *ImageRepository {
	return &ImageRepository{db: db}
}

const imageColumns = `i.id, i.owner_id, i.path, i.description, i.uploaded_at`

// Create creates a new image
func (r *ImageRepository) Create(ctx context.Context, image *models.Image) error {
	query := `
		INSERT INTO images (owner_id, path, description)
		VALUES ($1, $2, $3)
		RETURNING id, uploaded_at
	`
	err := r.db.QueryRow(ctx, query, image.OwnerID, image.Path, image.Description).
		Scan(&image.ID, &image.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

// GetByID retrieves an image by ID
func (r *ImageRepository) GetByID(ctx context.Context, id int64) (*models.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images i WHERE i.id = $1`
	var image models.Image
	err := r.db.QueryRow(ctx, query, id).Scan(
		&image.ID, &image.OwnerID, &image.Path, &image.Description, &image.UploadedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return &image, nil
}

// GetByPath retrieves the image whose stored asset lives at path
func (r *ImageRepository) GetByPath(ctx context.Context, path string) (*models.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images i WHERE i.path = $1`
	var image models.Image
	err := r.db.QueryRow(ctx, query, path).Scan(
		&image.ID, &image.OwnerID, &image.Path, &image.Description, &image.UploadedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get image by path: %w", err)
	}
	return &image, nil
}

// ListByOwner retrieves all images of a user, most recent first
func (r *ImageRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Image, error) {
	query := `
		SELECT ` + imageColumns + `
		FROM images i
		WHERE i.owner_id = $1
		ORDER BY i.uploaded_at DESC, i.id DESC
	`
	return r.list(ctx, query, ownerID)
}

// ListByOwnerBetween retrieves a user's images with from <= uploaded_at < to
func (r *ImageRepository) ListByOwnerBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]*models.Image, error) {
	query := `
		SELECT ` + imageColumns + `
		FROM images i
		WHERE i.owner_id = $1 AND i.uploaded_at >= $2 AND i.uploaded_at < $3
		ORDER BY i.uploaded_at DESC, i.id DESC
	`
	return r.list(ctx, query, ownerID, from, to)
}

// ListDates returns the distinct months with images for a user, most recent first.
// Months are zero-indexed.
func (r *ImageRepository) ListDates(ctx context.Context, ownerID int64) ([]models.ImageDate, error) {
	query := `
		SELECT DISTINCT
			EXTRACT(YEAR FROM uploaded_at AT TIME ZONE 'UTC')::int AS year,
			EXTRACT(MONTH FROM uploaded_at AT TIME ZONE 'UTC')::int - 1 AS month
		FROM images
		WHERE owner_id = $1
		ORDER BY year DESC, month DESC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get image dates: %w", err)
	}
	defer rows.Close()

	dates := []models.ImageDate{}
	for rows.Next() {
		var d models.ImageDate
		if err := rows.Scan(&d.Year, &d.Month); err != nil {
			return nil, fmt.Errorf("failed to scan image date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating image dates: %w", err)
	}
	return dates, nil
}

// ListSharedWithUser retrieves images other users shared with userID directly or through a group
func (r *ImageRepository) ListSharedWithUser(ctx context.Context, userID int64) ([]*models.Image, error) {
	query := `
		SELECT DISTINCT ` + imageColumns + `
		FROM images i
		JOIN image_shares s ON s.image_id = i.id
		LEFT JOIN group_members gm ON gm.group_id = s.group_id AND gm.user_id = $1
		WHERE i.owner_id <> $1 AND (s.user_id = $1 OR gm.user_id IS NOT NULL)
		ORDER BY i.uploaded_at DESC, i.id DESC
	`
	return r.list(ctx, query, userID)
}

// ListSharedWithGroup retrieves images shared with a group
func (r *ImageRepository) ListSharedWithGroup(ctx context.Context, groupID int64) ([]*models.Image, error) {
	query := `
		SELECT DISTINCT ` + imageColumns + `
		FROM images i
		JOIN image_shares s ON s.image_id = i.id
		WHERE s.group_id = $1
		ORDER BY i.uploaded_at DESC, i.id DESC
	`
	return r.list(ctx, query, groupID)
}

// Delete removes an image together with its shares and notifications in one transaction
func (r *ImageRepository) Delete(ctx context.Context, id int64) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM notifications WHERE image_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete image notifications: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM image_shares WHERE image_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete image shares: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM images WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete image: %w", err)
		}
		return nil
	})
}

func (r *ImageRepository) list(ctx context.Context, query string, args ...any) ([]*models.Image, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get images: %w", err)
	}
	defer rows.Close()

	images := []*models.Image{}
	for rows.Next() {
		var image models.Image
		err := rows.Scan(&image.ID, &image.OwnerID, &image.Path, &image.Description, &image.UploadedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, &image)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}
	return images, nil
}
