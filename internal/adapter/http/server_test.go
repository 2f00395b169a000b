package http

import (
	"bytes"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"agriloan-backend/internal/adapter/repository/mysql"
	"agriloan-backend/internal/infrastructure/token"
	"agriloan-backend/internal/testutil/ledgermock"
	"agriloan-backend/internal/usecase/auth"
	"agriloan-backend/internal/usecase/kyc"
	ucLoan "agriloan-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// -------- helpers --------

// containsFieldMsg reports whether list has an error for field whose message
// contains substr.
func containsFieldMsg(list []FieldError, field, substr string) bool {
	return slices.ContainsFunc(list, func(e FieldError) bool {
		return e.Field == field && strings.Contains(e.Message, substr)
	})
}

type testApp struct {
	e      *echo.Echo
	db     *gorm.DB
	ledger *ledgermock.Client
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := mysql.AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	loans := mysql.NewLoanRepository(db)
	farmers := mysql.NewFarmerRepository(db)
	lenders := mysql.NewLenderRepository(db)
	tx := mysql.NewGormUoW(db)
	iss := token.NewIssuer("test-secret", time.Hour)

	ledger := &ledgermock.Client{}
	e := NewServer(ServerDeps{
		Log:      log,
		Tokens:   iss,
		Health:   NewHandler(sqlDB),
		Accounts: NewAccountHandler(auth.NewUsecase(farmers, lenders, iss, log), kyc.NewUsecase(tx, log)),
		Loans:    NewLoanHandler(ucLoan.NewUsecase(loans, farmers, lenders, tx, log)),
		Ledger:   NewLedgerHandler(ledger),
	})
	return &testApp{e: e, db: db, ledger: ledger}
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func (a *testApp) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = mustJSON(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
}

type sessionBody struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	Role     string `json:"role"`
	Redirect string `json:"redirect"`
	Farmer   *struct {
		FarmerID string `json:"farmer_id"`
	} `json:"farmer"`
	Lender *struct {
		LenderID string `json:"lender_id"`
	} `json:"lender"`
}

type account struct{ id, token string }

func (a *testApp) registerFarmer(t *testing.T, email string) account {
	t.Helper()
	rec := a.do(t, stdhttp.MethodPost, "/auth/farmer/register", "", map[string]any{
		"name": "Ravi", "email": email, "password": "pw", "location": "Nashik",
	})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("register farmer: %d %s", rec.Code, rec.Body.String())
	}
	var s sessionBody
	decode(t, rec, &s)
	return account{id: s.Farmer.FarmerID, token: s.Token}
}

func (a *testApp) registerLender(t *testing.T, email string) account {
	t.Helper()
	rec := a.do(t, stdhttp.MethodPost, "/auth/lender/register", "", map[string]any{
		"name": "Grameen Capital", "email": email, "password": "pw",
	})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("register lender: %d %s", rec.Code, rec.Body.String())
	}
	var s sessionBody
	decode(t, rec, &s)
	return account{id: s.Lender.LenderID, token: s.Token}
}

type loanBody struct {
	Success bool `json:"success"`
	Loan    struct {
		ApplicationID   string   `json:"application_id"`
		Status          string   `json:"status"`
		InterestRate    *string  `json:"interest_rate"`
		RejectionReason *string  `json:"rejection_reason"`
		DueDate         *string  `json:"due_date"`
		Amount          string   `json:"amount"`
		TenureMonths    int      `json:"tenure_months"`
		LenderID        *string  `json:"lender_id"`
	} `json:"loan"`
}

func (a *testApp) apply(t *testing.T, farmer account, lenderID string) string {
	t.Helper()
	rec := a.do(t, stdhttp.MethodPost, "/loan/apply", farmer.token, map[string]any{
		"lender_id": lenderID, "amount": 25000, "tenure_months": 6, "purpose": "seeds",
	})
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("apply: %d %s", rec.Code, rec.Body.String())
	}
	var b loanBody
	decode(t, rec, &b)
	return b.Loan.ApplicationID
}
