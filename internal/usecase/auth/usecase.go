// Package auth registers and logs in farmers and lenders and serves their
// account views.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agriloan-backend/internal/domain/farmer"
	"agriloan-backend/internal/domain/lender"
	"agriloan-backend/pkg/id"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleFarmer = "farmer"
	RoleLender = "lender"

	RedirectFarmerDashboard = "/dashboard"
	RedirectFarmerKYC       = "/farmer/kyc"
	RedirectLenderDashboard = "/lender/dashboard"
)

var (
	ErrMissingFields      = errors.New("all fields required")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type TokenSigner interface {
	Sign(role, id, email string) (string, error)
}

type FarmerRegisterInput struct {
	Name        string
	Email       string
	Password    string
	Location    string
	BankAccount string
}

type LenderRegisterInput struct {
	Name        string
	Email       string
	Password    string
	BankAccount string
}

type LoginInput struct {
	Email    string
	Password string
}

// Session is what a successful register/login hands back to the client.
type Session struct {
	Role     string         `json:"role"`
	Token    string         `json:"token"`
	Redirect string         `json:"redirect"`
	Farmer   *farmer.Farmer `json:"farmer,omitempty"`
	Lender   *lender.Lender `json:"lender,omitempty"`
}

type Usecase struct {
	farmers farmer.Repository
	lenders lender.Repository
	tokens  TokenSigner
	log     *logrus.Logger
	cost    int
}

func NewUsecase(farmers farmer.Repository, lenders lender.Repository, tokens TokenSigner, log *logrus.Logger) *Usecase {
	return &Usecase{farmers: farmers, lenders: lenders, tokens: tokens, log: log, cost: bcrypt.DefaultCost}
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func (u *Usecase) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

func (u *Usecase) RegisterFarmer(ctx context.Context, in FarmerRegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if in.Name == "" || email == "" || in.Password == "" || in.Location == "" {
		return nil, ErrMissingFields
	}
	if _, err := u.farmers.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, farmer.ErrNotFound) {
		return nil, err
	}

	pw, err := u.hash(in.Password)
	if err != nil {
		return nil, err
	}
	f := &farmer.Farmer{
		FarmerID:     id.New(),
		Email:        email,
		Name:         in.Name,
		PasswordHash: pw,
		Location:     in.Location,
		BankAccount:  in.BankAccount,
	}
	if err := u.farmers.Create(ctx, f); err != nil {
		return nil, err
	}
	u.log.WithField("farmer_id", f.FarmerID).Info("auth: farmer registered")
	return u.farmerSession(f, RedirectFarmerDashboard)
}

func (u *Usecase) LoginFarmer(ctx context.Context, in LoginInput) (*Session, error) {
	f, err := u.farmers.GetByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, farmer.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(f.PasswordHash), []byte(in.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	redirect := RedirectFarmerKYC
	if f.KYCVerified {
		redirect = RedirectFarmerDashboard
	}
	return u.farmerSession(f, redirect)
}

func (u *Usecase) farmerSession(f *farmer.Farmer, redirect string) (*Session, error) {
	tok, err := u.tokens.Sign(RoleFarmer, f.FarmerID, f.Email)
	if err != nil {
		return nil, err
	}
	return &Session{Role: RoleFarmer, Token: tok, Redirect: redirect, Farmer: f}, nil
}

func (u *Usecase) RegisterLender(ctx context.Context, in LenderRegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if in.Name == "" || email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if _, err := u.lenders.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, lender.ErrNotFound) {
		return nil, err
	}

	pw, err := u.hash(in.Password)
	if err != nil {
		return nil, err
	}
	l := &lender.Lender{
		LenderID:     id.New(),
		Email:        email,
		Name:         in.Name,
		PasswordHash: pw,
		BankAccount:  in.BankAccount,
	}
	if err := u.lenders.Create(ctx, l); err != nil {
		return nil, err
	}
	u.log.WithField("lender_id", l.LenderID).Info("auth: lender registered")
	return u.lenderSession(l)
}

func (u *Usecase) LoginLender(ctx context.Context, in LoginInput) (*Session, error) {
	l, err := u.lenders.GetByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, lender.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(l.PasswordHash), []byte(in.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u.lenderSession(l)
}

func (u *Usecase) lenderSession(l *lender.Lender) (*Session, error) {
	tok, err := u.tokens.Sign(RoleLender, l.LenderID, l.Email)
	if err != nil {
		return nil, err
	}
	return &Session{Role: RoleLender, Token: tok, Redirect: RedirectLenderDashboard, Lender: l}, nil
}

func (u *Usecase) FarmerProfile(ctx context.Context, farmerID string) (*farmer.Farmer, error) {
	return u.farmers.GetByID(ctx, farmerID)
}

// Lenders is the public lender directory (id and name only).
func (u *Usecase) Lenders(ctx context.Context) ([]lender.Summary, error) {
	out, err := u.lenders.List(ctx)
	if out == nil && err == nil {
		out = []lender.Summary{}
	}
	return out, err
}
