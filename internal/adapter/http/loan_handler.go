package http

import (
	"net/http"

	appmw "agriloan-backend/internal/adapter/middleware"
	"agriloan-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type applyLoanReq struct {
	LenderID     string  `json:"lender_id"     validate:"required"`
	Amount       float64 `json:"amount"        validate:"gt=0,dec2"`
	TenureMonths int     `json:"tenure_months" validate:"gte=1,lte=120"`
	Purpose      string  `json:"purpose"       validate:"max=1000"`
}

// Omitted fields keep the values the farmer applied with.
type approveLoanReq struct {
	ApplicationID string   `json:"application_id" validate:"required"`
	Amount        *float64 `json:"amount"         validate:"omitempty,gt=0,dec2"`
	InterestRate  *float64 `json:"interest_rate"  validate:"omitempty,gte=5,lte=12,dec2"`
	TenureMonths  *int     `json:"tenure_months"  validate:"omitempty,gte=1,lte=120"`
}

type rejectLoanReq struct {
	ApplicationID string `json:"application_id" validate:"required"`
	Reason        string `json:"reason"         validate:"max=1000"`
}

type disburseLoanReq struct {
	ApplicationID string `json:"application_id" validate:"required"`
}

func callerID(c echo.Context) (string, bool) {
	id, ok := appmw.IdentityFrom(c)
	return id.ID, ok && id.ID != ""
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Missing token"})
}

func decimalPtr(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}

// Apply: POST /loan/apply (farmer)
func (h *LoanHandler) Apply(c echo.Context) error {
	farmerID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req applyLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Apply(c.Request().Context(), loan.ApplyInput{
		FarmerID:     farmerID,
		LenderID:     req.LenderID,
		Amount:       decimal.NewFromFloat(req.Amount),
		TenureMonths: req.TenureMonths,
		Purpose:      req.Purpose,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"success": true, "loan": dto})
}

// Mine: GET /loan/me (farmer)
func (h *LoanHandler) Mine(c echo.Context) error {
	farmerID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	loans, err := h.uc.ListForFarmer(c.Request().Context(), farmerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "loans": loans})
}

// Assigned: GET /lender/loan/assigned (lender)
func (h *LoanHandler) Assigned(c echo.Context) error {
	lenderID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	loans, err := h.uc.ListForLender(c.Request().Context(), lenderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "loans": loans})
}

// Approve: POST /lender/loan/approve (lender)
func (h *LoanHandler) Approve(c echo.Context) error {
	lenderID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req approveLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Approve(c.Request().Context(), loan.ApproveInput{
		ApplicationID: req.ApplicationID,
		LenderID:      lenderID,
		Amount:        decimalPtr(req.Amount),
		InterestRate:  decimalPtr(req.InterestRate),
		TenureMonths:  req.TenureMonths,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "loan": dto})
}

// Reject: POST /lender/loan/reject (lender)
func (h *LoanHandler) Reject(c echo.Context) error {
	lenderID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req rejectLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Reject(c.Request().Context(), loan.RejectInput{
		ApplicationID: req.ApplicationID,
		LenderID:      lenderID,
		Reason:        req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "loan": dto})
}

// Disburse: POST /lender/loan/disburse (lender)
func (h *LoanHandler) Disburse(c echo.Context) error {
	lenderID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req disburseLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Disburse(c.Request().Context(), loan.DisburseInput{
		ApplicationID: req.ApplicationID,
		LenderID:      lenderID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":      true,
		"message":      "Loan disbursed successfully",
		"disbursement": dto,
	})
}
