package http

import (
	"net/http"
	"strings"
	"time"

	"agriloan-backend/internal/usecase/auth"
	"agriloan-backend/internal/usecase/kyc"

	"github.com/labstack/echo/v4"
)

// AccountHandler serves registration, login, KYC and profile routes.
type AccountHandler struct {
	auth *auth.Usecase
	kyc  *kyc.Usecase
}

func NewAccountHandler(a *auth.Usecase, k *kyc.Usecase) *AccountHandler {
	return &AccountHandler{auth: a, kyc: k}
}

type registerFarmerReq struct {
	Name        string `json:"name"         validate:"required"`
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required"`
	Location    string `json:"location"     validate:"required"`
	BankAccount string `json:"bank_account" validate:"max=64"`
}

type registerLenderReq struct {
	Name        string `json:"name"         validate:"required"`
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required"`
	BankAccount string `json:"bank_account" validate:"max=64"`
}

type loginReq struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type completeKYCReq struct {
	Aadhar string `json:"aadhar" validate:"required,aadhar"`
	PAN    string `json:"pan"    validate:"required,pan"`
}

type sessionResp struct {
	Success bool `json:"success"`
	*auth.Session
}

type profileResp struct {
	FarmerID    string    `json:"farmer_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Location    string    `json:"location"`
	PAN         *string   `json:"pan"`
	Aadhar      *string   `json:"aadhar"`
	BankAccount string    `json:"bank_account"`
	KYCVerified bool      `json:"kyc_verified"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (h *AccountHandler) session(c echo.Context, s *auth.Session, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResp{Success: true, Session: s})
}

func (h *AccountHandler) RegisterFarmer(c echo.Context) error {
	var req registerFarmerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	s, err := h.auth.RegisterFarmer(c.Request().Context(), auth.FarmerRegisterInput{
		Name:        strings.TrimSpace(req.Name),
		Email:       req.Email,
		Password:    req.Password,
		Location:    strings.TrimSpace(req.Location),
		BankAccount: strings.TrimSpace(req.BankAccount),
	})
	return h.session(c, s, err)
}

func (h *AccountHandler) LoginFarmer(c echo.Context) error {
	var req loginReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	s, err := h.auth.LoginFarmer(c.Request().Context(), auth.LoginInput(req))
	return h.session(c, s, err)
}

func (h *AccountHandler) RegisterLender(c echo.Context) error {
	var req registerLenderReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	s, err := h.auth.RegisterLender(c.Request().Context(), auth.LenderRegisterInput{
		Name:        strings.TrimSpace(req.Name),
		Email:       req.Email,
		Password:    req.Password,
		BankAccount: strings.TrimSpace(req.BankAccount),
	})
	return h.session(c, s, err)
}

func (h *AccountHandler) LoginLender(c echo.Context) error {
	var req loginReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	s, err := h.auth.LoginLender(c.Request().Context(), auth.LoginInput(req))
	return h.session(c, s, err)
}

// CompleteKYC: POST /kyc/complete-kyc (farmer)
func (h *AccountHandler) CompleteKYC(c echo.Context) error {
	farmerID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	var req completeKYCReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	k, err := h.kyc.Complete(c.Request().Context(), kyc.CompleteInput{
		FarmerID: farmerID,
		Aadhar:   req.Aadhar,
		PAN:      req.PAN,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"message":  "KYC completed",
		"kyc_hash": k.KYCHash,
	})
}

// Profile: GET /farmer/profile (farmer)
func (h *AccountHandler) Profile(c echo.Context) error {
	farmerID, ok := callerID(c)
	if !ok {
		return unauthorized(c)
	}
	f, err := h.auth.FarmerProfile(c.Request().Context(), farmerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "farmer": profileResp{
		FarmerID:    f.FarmerID,
		Name:        f.Name,
		Email:       f.Email,
		Location:    f.Location,
		PAN:         f.PANNumber,
		Aadhar:      f.AadharNumber,
		BankAccount: f.BankAccount,
		KYCVerified: f.KYCVerified,
		CreatedAt:   f.CreatedAt,
	}})
}

// Lenders: GET /lender/list (public)
func (h *AccountHandler) Lenders(c echo.Context) error {
	lenders, err := h.auth.Lenders(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "lenders": lenders})
}
