// Package httpapi exposes the public JSON API over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aequatio-app/aequatio/internal/logging"
	"github.com/aequatio-app/aequatio/internal/server/services"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address   string
	users     *services.UserService
	expenses  *services.ExpenseService
	logger    logging.Logger
	jwtSecret []byte
}

func NewServer(a string, l logging.Logger, us *services.UserService, es *services.ExpenseService, secretKey string) *Server {
	return &Server{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		expenses:  es,
		jwtSecret: []byte(secretKey),
	}
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	v1.GET("/", s.welcome)
	v1.POST("/users/register", s.registerUser)
	v1.POST("/auth/login", s.login)
	v1.GET("/users/:id", s.getUser)

	authed := v1.Group("", s.bearerAuth())
	authed.POST("/expenses", s.createExpense)
	authed.GET("/expenses", s.listExpenses)
	authed.GET("/expenses/:id", s.getExpense)
	authed.POST("/expenses/:id/receipt", s.presignReceiptUpload)
	authed.GET("/expenses/:id/receipt", s.presignReceiptDownload)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{Addr: s.address, Handler: s.router()}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "error shutting down HTTP server", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
