package http

import (
	"time"

	"oneshelf-backend/internal/adapter/middleware"
	"oneshelf-backend/internal/domain/auth"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type Routes struct {
	Health    *Handler
	Loans     *LoanHandler
	Approvals *ApprovalHandler

	JWTSecret      []byte
	Redis          *redis.Client
	IdempotencyTTL time.Duration
}

// Register mounts every route on e. Mutating routes run behind the
// idempotency middleware, which needs the claim Authenticate sets.
func (r Routes) Register(e *echo.Echo) {
	authn := middleware.Authenticate(r.JWTSecret)
	idem := middleware.IdempotencyMiddleware(r.Redis, r.IdempotencyTTL)
	patrons := middleware.RequireRoles(auth.Patrons...)
	staff := middleware.RequireRoles(auth.Staff...)

	e.GET("/health", r.Health.Health)
	e.GET("/loan", r.Loans.Availability)

	e.POST("/loan", r.Loans.CreateLoan, authn, patrons, idem)
	e.DELETE("/loan/:loanId", r.Loans.DeleteLoan, authn, patrons, idem)
	e.GET("/loan/user", r.Loans.ListUserLoans, authn, patrons)

	e.PATCH("/loan/:loanId", r.Approvals.ApproveLoan, authn, staff, idem)
	e.GET("/loan/book", r.Approvals.BookLoans, authn, staff)
	e.GET("/loan/availBooks", r.Approvals.PendingLoans, authn, staff)
	e.GET("/loan/activeLoans", r.Approvals.ActiveLoans, authn, staff)
}
