package http

import (
	"net/http"
	"strconv"

	"oneshelf-backend/internal/adapter/middleware"
	"oneshelf-backend/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct{ uc *approval.Usecase }

func NewApprovalHandler(uc *approval.Usecase) *ApprovalHandler { return &ApprovalHandler{uc: uc} }

type approveLoanReq struct {
	UserID   uint64 `json:"userId"   validate:"required,gte=1"`
	BookID   uint64 `json:"bookId"   validate:"required,gte=1"`
	AuthorID uint64 `json:"authorId" validate:"required,gte=1"`
}

// ApproveLoan hands a copy from the caller's library to a pending request
// (PATCH /loan/:loanId).
func (h *ApprovalHandler) ApproveLoan(c echo.Context) error {
	// Validate path param
	loanID, err := pathLoanID(c)
	if err != nil {
		return badRequest(c, "invalid loanId path param")
	}
	// Bind + validate body payload JSON
	var req approveLoanReq
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	dto, err := h.uc.Approve(c.Request().Context(), middleware.ClaimFrom(c), approval.ApproveInput{
		LoanID:   loanID,
		UserID:   req.UserID,
		BookID:   req.BookID,
		AuthorID: req.AuthorID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// PendingLoans lists requests the caller's library can fill (GET /loan/availBooks).
func (h *ApprovalHandler) PendingLoans(c echo.Context) error {
	out, err := h.uc.Pending(c.Request().Context(), middleware.ClaimFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ActiveLoans lists loans out from the caller's library (GET /loan/activeLoans).
func (h *ApprovalHandler) ActiveLoans(c echo.Context) error {
	out, err := h.uc.Active(c.Request().Context(), middleware.ClaimFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// BookLoans lists loans of one book (GET /loan/book?bookId=&authorId=&approved=).
func (h *ApprovalHandler) BookLoans(c echo.Context) error {
	bookID, errB := strconv.ParseUint(c.QueryParam("bookId"), 10, 64)
	authorID, errA := strconv.ParseUint(c.QueryParam("authorId"), 10, 64)
	if errB != nil || errA != nil {
		return badRequest(c, "bookId and authorId must be positive integers")
	}
	approved, err := queryBool(c, "approved", true)
	if err != nil {
		return badRequest(c, "approved must be a boolean")
	}
	out, err := h.uc.ForBook(c.Request().Context(), middleware.ClaimFrom(c), bookID, authorID, approved)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
