// Package expenses provides the expense repository over PostgreSQL.
package expenses

import (
	"context"

	"github.com/aequatio-app/aequatio/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	GetByID(ctx context.Context, id string, userID string) (*models.Expense, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Expense, error)
	SetReceiptKey(ctx context.Context, id string, userID string, key string) error
}
