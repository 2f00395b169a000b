package http

import (
	"errors"
	"net/http"

	"agriloan-backend/internal/domain/farmer"
	"agriloan-backend/internal/domain/ledger"
	"agriloan-backend/internal/domain/lender"
	"agriloan-backend/internal/domain/loan"
	"agriloan-backend/internal/usecase/auth"
	"agriloan-backend/internal/usecase/kyc"
	ucLoan "agriloan-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

// statusFor maps domain errors to an HTTP status and client message.
// Unknown errors are 500 with a generic message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, loan.ErrNotFound):
		return http.StatusNotFound, "Loan not found"
	case errors.Is(err, farmer.ErrNotFound):
		return http.StatusNotFound, "Farmer not found"
	case errors.Is(err, lender.ErrNotFound):
		return http.StatusNotFound, "Lender not found"
	case errors.Is(err, loan.ErrNotAuthorized):
		return http.StatusForbidden, "Not authorized"
	case errors.Is(err, loan.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, loan.ErrInterestRateOutOfRange):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, loan.ErrInvalidInput),
		errors.Is(err, ucLoan.ErrFarmerNotFound),
		errors.Is(err, ucLoan.ErrLenderNotFound),
		errors.Is(err, auth.ErrMissingFields),
		errors.Is(err, kyc.ErrMissingDocuments):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrEmailInUse):
		return http.StatusBadRequest, "Email already in use"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, farmer.ErrAlreadyVerified):
		return http.StatusBadRequest, "KYC already completed"
	case errors.Is(err, ledger.ErrRecordOutOfRange):
		return http.StatusNotFound, "Ledger record not found"
	case errors.Is(err, ledger.ErrUnavailable), errors.Is(err, ledger.ErrConfiguration):
		return http.StatusServiceUnavailable, "Ledger unavailable"
	case errors.Is(err, ledger.ErrReadFailed):
		return http.StatusBadGateway, "Ledger read failed"
	default:
		return http.StatusInternalServerError, "Server error"
	}
}

// writeError answers with the mapped status. Server errors are handed to
// echo with the cause attached so the request logger records it.
func writeError(c echo.Context, err error) error {
	code, msg := statusFor(err)
	if code == http.StatusInternalServerError {
		return echo.NewHTTPError(code, ErrorResponse{Error: msg}).SetInternal(err)
	}
	return c.JSON(code, ErrorResponse{Error: msg})
}

// bindAndValidate writes the 400/422 response itself; ok is false when it did.
func bindAndValidate(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
