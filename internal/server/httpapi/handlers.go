package httpapi

import (
	"errors"
	"net/http"

	"github.com/aequatio-app/aequatio/internal/common"
	"github.com/aequatio-app/aequatio/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to Aequatio API",
		"version": "1.0.0",
	})
}

// writeError maps service errors onto HTTP statuses. Authentication failures
// get a uniform body so callers cannot tell an unknown email from a wrong
// password.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "username or email already registered"})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrorUnauthorized):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect email or password"})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (s *Server) registerUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metadata := map[string]string{
		"ip_address": c.ClientIP(),
		"user_agent": c.GetHeader("User-Agent"),
	}

	user, err := s.users.Register(c.Request.Context(), req.Username, req.Email, req.Password, metadata)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := s.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) getUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		s.writeError(c, common.ErrorNotFound)
		return
	}

	user, err := s.users.GetByID(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

func (s *Server) createExpense(c *gin.Context) {
	var req ExpenseCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expense := &models.Expense{
		Title:       req.Title,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		Category:    models.ExpenseCategory(req.Category),
		ExpenseDate: req.ExpenseDate,
		Vendor:      req.Vendor,
	}

	created, err := s.expenses.Create(c.Request.Context(), currentUserID(c), expense)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newExpenseResponse(created))
}

func (s *Server) listExpenses(c *gin.Context) {
	list, err := s.expenses.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]ExpenseResponse, 0, len(list))
	for _, e := range list {
		resp = append(resp, newExpenseResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getExpense(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		s.writeError(c, common.ErrorNotFound)
		return
	}

	expense, err := s.expenses.GetByID(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newExpenseResponse(expense))
}

func (s *Server) presignReceiptUpload(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		s.writeError(c, common.ErrorNotFound)
		return
	}

	key, url, err := s.expenses.PresignReceiptUpload(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReceiptUploadResponse{Key: key, UploadURL: url})
}

func (s *Server) presignReceiptDownload(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		s.writeError(c, common.ErrorNotFound)
		return
	}

	url, err := s.expenses.PresignReceiptDownload(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReceiptDownloadResponse{DownloadURL: url})
}
