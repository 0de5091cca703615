package httpapi

import (
	"time"

	"github.com/aequatio-app/aequatio/internal/server/models"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserResponse carries the public user fields. The password hash is never
// serialized.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type ExpenseCreateRequest struct {
	Title       string    `json:"title" binding:"required"`
	Amount      float64   `json:"amount" binding:"required"`
	Currency    string    `json:"currency" binding:"required"`
	Description string    `json:"description"`
	Category    string    `json:"category" binding:"required"`
	ExpenseDate time.Time `json:"expense_date" binding:"required"`
	Vendor      string    `json:"vendor"`
}

type ExpenseResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	ExpenseDate time.Time  `json:"expense_date"`
	Vendor      string     `json:"vendor,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func newExpenseResponse(e *models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Title:       e.Title,
		Amount:      e.Amount,
		Currency:    e.Currency,
		Description: e.Description,
		Category:    string(e.Category),
		ExpenseDate: e.ExpenseDate,
		Vendor:      e.Vendor,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

type ReceiptUploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

type ReceiptDownloadResponse struct {
	DownloadURL string `json:"download_url"`
}
