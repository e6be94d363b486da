package http

import (
	"net/http"
	"strconv"

	"oneshelf-backend/internal/adapter/middleware"
	"oneshelf-backend/internal/domain/inventory"
	"oneshelf-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	BookID    uint64 `json:"bookId"    validate:"required,gte=1"`
	AuthorID  uint64 `json:"authorId"  validate:"required,gte=1"`
	StartDate string `json:"startDate" validate:"required,iso8601"`
	RetDate   string `json:"retDate"   validate:"required,iso8601"`
}

type releaseLoanReq struct {
	BookID   uint64 `json:"bookId"   validate:"required,gte=1"`
	AuthorID uint64 `json:"authorId" validate:"required,gte=1"`
	// nil means a return of an approved loan
	Approved *bool `json:"approved"`
}

type availabilityReq struct {
	LibraryID uint64 `query:"libraryId" validate:"required,gte=1"`
	BookID    uint64 `query:"bookId"    validate:"required,gte=1"`
	AuthorID  uint64 `query:"authorId"  validate:"required,gte=1"`
}

// CreateLoan files a loan request for the caller (POST /loan).
func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	start, _ := parseDate(req.StartDate)
	ret, _ := parseDate(req.RetDate)

	l, err := h.uc.Request(c.Request().Context(), middleware.ClaimFrom(c), loan.RequestInput{
		BookID:     req.BookID,
		AuthorID:   req.AuthorID,
		StartDate:  start,
		ReturnDate: ret,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

// DeleteLoan returns an approved loan or cancels a pending request
// (DELETE /loan/:loanId).
func (h *LoanHandler) DeleteLoan(c echo.Context) error {
	loanID, err := pathLoanID(c)
	if err != nil {
		return badRequest(c, "invalid loanId path param")
	}
	var req releaseLoanReq
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	approved := req.Approved == nil || *req.Approved

	err = h.uc.Release(c.Request().Context(), middleware.ClaimFrom(c), loan.ReleaseInput{
		LoanID:   loanID,
		BookID:   req.BookID,
		AuthorID: req.AuthorID,
		Approved: approved,
	})
	if err != nil {
		return respondError(c, err)
	}
	status := "cancelled"
	if approved {
		status = "returned"
	}
	return c.JSON(http.StatusOK, map[string]any{"loanId": loanID, "status": status})
}

// ListUserLoans lists the caller's loans (GET /loan/user?approved=).
func (h *LoanHandler) ListUserLoans(c echo.Context) error {
	approved, err := queryBool(c, "approved", true)
	if err != nil {
		return badRequest(c, "approved must be a boolean")
	}
	out, err := h.uc.ListForUser(c.Request().Context(), middleware.ClaimFrom(c), approved)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Availability reports a library's shelf count for one book
// (GET /loan?libraryId=&bookId=&authorId=).
func (h *LoanHandler) Availability(c echo.Context) error {
	var req availabilityReq
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return badRequest(c, "invalid query")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.Availability(c.Request().Context(), inventory.Key{
		LibraryID: req.LibraryID,
		BookID:    req.BookID,
		AuthorID:  req.AuthorID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func pathLoanID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("loanId"), 10, 64)
	if err == nil && id == 0 {
		err = strconv.ErrRange
	}
	return id, err
}

func queryBool(c echo.Context, name string, def bool) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseBool(raw)
}
