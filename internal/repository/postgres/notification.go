package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"studioflow/internal/domain"
	"studioflow/internal/domain/models"
	"studioflow/internal/domain/repositories"
)

// PostgresNotificationRepository implements the NotificationRepository interface
type PostgresNotificationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(config *RepositoryConfig) repositories.NotificationRepository {
	return &PostgresNotificationRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a notification
func (r *PostgresNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (organization_id, type, title, message, related_client_id, related_contract_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, r.tables.Notifications)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		n.OrganizationID,
		n.Type,
		n.Title,
		n.Message,
		n.RelatedClientID,
		n.RelatedContractID,
		n.IsRead,
		n.CreatedAt,
	).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

// List retrieves notifications newest first
func (r *PostgresNotificationRepository) List(ctx context.Context, organizationID string, unreadOnly bool) ([]models.Notification, error) {
	query := fmt.Sprintf(`
		SELECT id, organization_id, type, title, message, related_client_id, related_contract_id, is_read, created_at
		FROM %s
		WHERE organization_id = $1 AND ($2 = FALSE OR is_read = FALSE)
		ORDER BY created_at DESC
		LIMIT 200
	`, r.tables.Notifications)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, organizationID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(
			&n.ID,
			&n.OrganizationID,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.RelatedClientID,
			&n.RelatedContractID,
			&n.IsRead,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead flags a notification as read
func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id, organizationID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_read = TRUE
		WHERE id = $1 AND organization_id = $2
	`, r.tables.Notifications)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, organizationID)
	if err != nil {
		if IsPgInvalidTextError(err) {
			return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
