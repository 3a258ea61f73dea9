package repository

import (
	"context"
	"fmt"

	"photoshare-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FriendshipRepository handles database operations for friendships
type FriendshipRepository struct {
	db *pgxpool.Pool
}

// NewFriendshipRepository creates a new friendship repository
func NewFriendshipRepository(db *pgxpool.Pool) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

const friendshipColumns = `id, requester_id, addressee_id, status, created_at`

// Create creates a new friendship row. A row for the same unordered pair yields ErrDuplicate.
func (r *FriendshipRepository) Create(ctx context.Context, f *models.Friendship) error {
	query := `
		INSERT INTO friendships (requester_id, addressee_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, f.RequesterID, f.AddresseeID, f.Status).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create friendship: %w", err)
	}
	return nil
}

// GetByID retrieves a friendship by ID
func (r *FriendshipRepository) GetByID(ctx context.Context, id int64) (*models.Friendship, error) {
	query := `SELECT ` + friendshipColumns + ` FROM friendships WHERE id = $1`
	var f models.Friendship
	err := r.db.QueryRow(ctx, query, id).Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}
	return &f, nil
}

// GetBetween retrieves the friendship between two users in either direction
func (r *FriendshipRepository) GetBetween(ctx context.Context, userA, userB int64) (*models.Friendship, error) {
	query := `
		SELECT ` + friendshipColumns + `
		FROM friendships
		WHERE (requester_id = $1 AND addressee_id = $2) OR (requester_id = $2 AND addressee_id = $1)
		LIMIT 1
	`
	var f models.Friendship
	err := r.db.QueryRow(ctx, query, userA, userB).Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get friendship between users: %w", err)
	}
	return &f, nil
}

// ListAccepted retrieves accepted friendships involving a user
func (r *FriendshipRepository) ListAccepted(ctx context.Context, userID int64) ([]*models.Friendship, error) {
	query := `
		SELECT ` + friendshipColumns + `
		FROM friendships
		WHERE (requester_id = $1 OR addressee_id = $1) AND status = $2
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID, models.FriendshipAccepted)
}

// ListPendingFor retrieves pending requests addressed to a user
func (r *FriendshipRepository) ListPendingFor(ctx context.Context, addresseeID int64) ([]*models.Friendship, error) {
	query := `
		SELECT ` + friendshipColumns + `
		FROM friendships
		WHERE addressee_id = $1 AND status = $2
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, addresseeID, models.FriendshipPending)
}

// Respond moves a pending friendship to status. It reports false when the row was not pending.
func (r *FriendshipRepository) Respond(ctx context.Context, id int64, status models.FriendshipStatus) (bool, error) {
	query := `UPDATE friendships SET status = $1 WHERE id = $2 AND status = $3`
	result, err := r.db.Exec(ctx, query, status, id, models.FriendshipPending)
	if err != nil {
		return false, fmt.Errorf("failed to update friendship status: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *FriendshipRepository) list(ctx context.Context, query string, args ...any) ([]*models.Friendship, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get friendships: %w", err)
	}
	defer rows.Close()

	friendships := []*models.Friendship{}
	for rows.Next() {
		var f models.Friendship
		if err := rows.Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", err)
		}
		friendships = append(friendships, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friendships: %w", err)
	}
	return friendships, nil
}
