package http

import (
	"time"

	appmw "agriloan-backend/internal/adapter/middleware"
	"agriloan-backend/internal/infrastructure/metrics"
	"agriloan-backend/internal/infrastructure/token"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type ServerDeps struct {
	Log    *logrus.Logger
	Tokens appmw.TokenParser
	// Redis enables the idempotency store; nil leaves mutating routes unguarded.
	Redis    *redis.Client
	IdempTTL time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	Health   *Handler
	Accounts *AccountHandler
	Loans    *LoanHandler
	Ledger   *LedgerHandler
}

func NewServer(d ServerDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		appmw.RequestLogger(d.Log),
		appmw.Metrics(),
		appmw.RateLimit(d.RateLimitRPS, d.RateLimitBurst),
	)

	idem := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if d.Redis != nil {
		idem = appmw.Idempotency(d.Redis, d.IdempTTL, d.Log)
	}
	farmerOnly := appmw.RequireAuth(d.Tokens, token.RoleFarmer)
	lenderOnly := appmw.RequireAuth(d.Tokens, token.RoleLender)

	e.GET("/health", d.Health.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	a := e.Group("/auth", idem)
	a.POST("/farmer/register", d.Accounts.RegisterFarmer)
	a.POST("/farmer/login", d.Accounts.LoginFarmer)
	a.POST("/lender/register", d.Accounts.RegisterLender)
	a.POST("/lender/login", d.Accounts.LoginLender)

	e.POST("/kyc/complete-kyc", d.Accounts.CompleteKYC, farmerOnly, idem)
	e.GET("/farmer/profile", d.Accounts.Profile, farmerOnly)
	e.GET("/lender/list", d.Accounts.Lenders)

	l := e.Group("/loan", farmerOnly, idem)
	l.POST("/apply", d.Loans.Apply)
	l.GET("/me", d.Loans.Mine)

	ll := e.Group("/lender/loan", lenderOnly, idem)
	ll.GET("/assigned", d.Loans.Assigned)
	ll.POST("/approve", d.Loans.Approve)
	ll.POST("/reject", d.Loans.Reject)
	ll.POST("/disburse", d.Loans.Disburse)

	e.GET("/ledger/records/count", d.Ledger.Count)
	e.GET("/ledger/records/:id", d.Ledger.Record)

	return e
}
