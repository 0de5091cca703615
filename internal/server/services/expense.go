package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aequatio-app/aequatio/internal/common"
	sc "github.com/aequatio-app/aequatio/internal/server/config"
	"github.com/aequatio-app/aequatio/internal/server/models"
	"github.com/aequatio-app/aequatio/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ExpenseService manages expenses and their receipt attachments stored in an
// S3-compatible backend.
type ExpenseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewExpenseService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *ExpenseService {
	return &ExpenseService{
		db:          db,
		repomanager: repomanager,
		config:      config,
	}
}

// Create validates the expense, assigns it an id and owner, and persists it.
func (s *ExpenseService) Create(ctx context.Context, userID string, expense *models.Expense) (*models.Expense, error) {

	if err := validateExpense(expense); err != nil {
		return nil, err
	}

	expense.ID = uuid.NewString()
	expense.UserID = userID

	created, err := s.repomanager.Expenses(s.db).Create(ctx, expense)
	if err != nil {
		return nil, fmt.Errorf("error creating expense: %v", err)
	}

	return created, nil
}

// GetByID returns the expense with the given id if it belongs to userID.
func (s *ExpenseService) GetByID(ctx context.Context, userID string, id string) (*models.Expense, error) {
	return s.repomanager.Expenses(s.db).GetByID(ctx, id, userID)
}

// ListByUser returns all expenses of the given user, newest first.
func (s *ExpenseService) ListByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	return s.repomanager.Expenses(s.db).ListByUser(ctx, userID)
}

func receiptStorageKey(expenseID string) string {
	d := time.Now()
	return fmt.Sprintf("receipts/%d/%d/%d/%s", d.Year(), d.Month(), d.Day(), expenseID)
}

func (s *ExpenseService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// PresignReceiptUpload returns a presigned PUT URL for the expense's receipt
// and records the storage key on the expense. The expense must belong to
// userID.
func (s *ExpenseService) PresignReceiptUpload(ctx context.Context, userID string, expenseID string) (string, string, error) {

	repo := s.repomanager.Expenses(s.db)

	expense, err := repo.GetByID(ctx, expenseID, userID)
	if err != nil {
		return "", "", err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := expense.ReceiptKey
	if key == "" {
		key = receiptStorageKey(expense.ID)
	}

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", err
	}

	if err := repo.SetReceiptKey(ctx, expense.ID, userID, key); err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// PresignReceiptDownload returns a presigned GET URL for the expense's
// receipt. common.ErrorNotFound is returned when no receipt was attached.
func (s *ExpenseService) PresignReceiptDownload(ctx context.Context, userID string, expenseID string) (string, error) {

	expense, err := s.repomanager.Expenses(s.db).GetByID(ctx, expenseID, userID)
	if err != nil {
		return "", err
	}
	if expense.ReceiptKey == "" {
		return "", common.ErrorNotFound
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &expense.ReceiptKey,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

func validateExpense(e *models.Expense) error {
	if len(e.Title) < 1 || len(e.Title) > 100 {
		return fmt.Errorf("%w: title must be 1-100 characters", common.ErrorValidation)
	}
	if e.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", common.ErrorValidation)
	}
	if _, ok := models.ValidCurrencies[e.Currency]; !ok {
		return fmt.Errorf("%w: currency %q is not a supported ISO 4217 code", common.ErrorValidation, e.Currency)
	}
	if len(e.Description) > 500 {
		return fmt.Errorf("%w: description must be at most 500 characters", common.ErrorValidation)
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", common.ErrorValidation, e.Category)
	}
	if e.ExpenseDate.IsZero() {
		return fmt.Errorf("%w: expense date is required", common.ErrorValidation)
	}
	if len(e.Vendor) > 100 {
		return fmt.Errorf("%w: vendor must be at most 100 characters", common.ErrorValidation)
	}
	return nil
}
