package expenses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aequatio-app/aequatio/internal/common"
	"github.com/aequatio-app/aequatio/internal/dbx"
	"github.com/aequatio-app/aequatio/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, expense *models.Expense) (*models.Expense, error) {

	query :=
		`INSERT INTO expenses (id, user_id, title, amount, currency, description, category, expense_date, vendor)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		expense.ID, expense.UserID, expense.Title, expense.Amount, expense.Currency,
		nullString(expense.Description), string(expense.Category), expense.ExpenseDate,
		nullString(expense.Vendor)).
		Scan(&expense.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return expense, nil
}

// GetByID returns the expense only when it belongs to userID, otherwise
// common.ErrorNotFound. Ownership is part of the lookup so callers cannot
// read other users' expenses.
func (r *PostgresRepository) GetByID(ctx context.Context, id string, userID string) (*models.Expense, error) {
	query := selectColumns + `
		 WHERE id = $1 AND user_id = $2
		 `

	row := r.db.QueryRowContext(ctx, query, id, userID)

	expense, err := scanExpense(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return expense, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	query := selectColumns + `
		 WHERE user_id = $1
		 ORDER BY expense_date DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) SetReceiptKey(ctx context.Context, id string, userID string, key string) error {
	query :=
		`UPDATE expenses SET receipt_key = $3, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, userID, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

const selectColumns = `SELECT id, user_id, title, amount, currency, description, category, expense_date, vendor, receipt_key, created_at, updated_at FROM expenses`

func scanExpense(scan func(dest ...any) error) (*models.Expense, error) {
	expense := &models.Expense{}
	var description, vendor, receiptKey sql.NullString
	var category string
	var updatedAt sql.NullTime

	err := scan(&expense.ID, &expense.UserID, &expense.Title, &expense.Amount,
		&expense.Currency, &description, &category, &expense.ExpenseDate,
		&vendor, &receiptKey, &expense.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	expense.Description = description.String
	expense.Vendor = vendor.String
	expense.ReceiptKey = receiptKey.String
	expense.Category = models.ExpenseCategory(category)
	if updatedAt.Valid {
		expense.UpdatedAt = &updatedAt.Time
	}

	return expense, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
