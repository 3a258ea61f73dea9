package repository

import (
	"context"
	"fmt"

	"photoshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GroupRepository handles database operations for groups and memberships
type GroupRepository struct {
	db *pgxpool.Pool
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

const groupColumns = `g.id, g.name, g.description, g.created_by, g.created_at`

// Create creates a group and adds its creator as the first member
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO groups (name, description, created_by)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`
		err := tx.QueryRow(ctx, query, group.Name, group.Description, group.CreatedBy).
			Scan(&group.ID, &group.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}

		creator := models.NewGroupMembership(group.ID, group.CreatedBy)
		if err := insertMember(ctx, tx, creator); err != nil {
			return err
		}
		return nil
	})
}

// GetByID retrieves a group by ID
func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.id = $1`
	var group models.Group
	err := r.db.QueryRow(ctx, query, id).Scan(
		&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &group, nil
}

// ListByMember retrieves the groups a user belongs to
func (r *GroupRepository) ListByMember(ctx context.Context, userID int64) ([]*models.Group, error) {
	query := `
		SELECT ` + groupColumns + `
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = $1
		ORDER BY g.created_at DESC, g.id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}
	defer rows.Close()

	groups := []*models.Group{}
	for rows.Next() {
		var group models.Group
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}

// AddMember adds a user to a group. An existing membership yields ErrDuplicate.
func (r *GroupRepository) AddMember(ctx context.Context, membership *models.GroupMembership) error {
	return insertMember(ctx, r.db, membership)
}

// RemoveMember removes a user from a group and reports whether a membership existed
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID int64) (bool, error) {
	query := `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`
	result, err := r.db.Exec(ctx, query, groupID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove group member: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListMembers retrieves the memberships of a group in join order
func (r *GroupRepository) ListMembers(ctx context.Context, groupID int64) ([]*models.GroupMembership, error) {
	query := `
		SELECT id, group_id, user_id, joined_at
		FROM group_members
		WHERE group_id = $1
		ORDER BY joined_at, id
	`
	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	members := []*models.GroupMembership{}
	for rows.Next() {
		var m models.GroupMembership
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group members: %w", err)
	}
	return members, nil
}

// IsMember checks if a user belongs to a group
func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, groupID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check group membership: %w", err)
	}
	return exists, nil
}

func insertMember(ctx context.Context, q querier, m *models.GroupMembership) error {
	query := `
		INSERT INTO group_members (group_id, user_id)
		VALUES ($1, $2)
		RETURNING id, joined_at
	`
	err := q.QueryRow(ctx, query, m.GroupID, m.UserID).Scan(&m.ID, &m.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}
