package http

import (
	stdhttp "net/http"
	"strings"
	"testing"
)

func TestLoanLifecycle_OverHTTP(t *testing.T) {
	app := newTestApp(t)
	farmer := app.registerFarmer(t, "ravi@farm.test")
	lender := app.registerLender(t, "bank@lend.test")

	appID := app.apply(t, farmer, lender.id)

	// farmer view: newest first with lender summary
	rec := app.do(t, stdhttp.MethodGet, "/loan/me", farmer.token, nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("/loan/me: %d %s", rec.Code, rec.Body.String())
	}
	var mine struct {
		Loans []struct {
			ApplicationID string `json:"application_id"`
			Lender        *struct {
				Name string `json:"name"`
			} `json:"lender"`
		} `json:"loans"`
	}
	decode(t, rec, &mine)
	if len(mine.Loans) != 1 || mine.Loans[0].ApplicationID != appID || mine.Loans[0].Lender == nil || mine.Loans[0].Lender.Name != "Grameen Capital" {
		t.Fatalf("unexpected /loan/me: %s", rec.Body.String())
	}

	// lender view
	rec = app.do(t, stdhttp.MethodGet, "/lender/loan/assigned", lender.token, nil)
	if rec.Code != stdhttp.StatusOK || !strings.Contains(rec.Body.String(), appID) {
		t.Fatalf("/lender/loan/assigned: %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "aadhar") {
		t.Fatalf("identity numbers must not be exposed to lenders: %s", rec.Body.String())
	}

	rec = app.do(t, stdhttp.MethodPost, "/lender/loan/approve", lender.token, map[string]any{
		"application_id": appID, "interest_rate": 8.5, "tenure_months": 12,
	})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("approve: %d %s", rec.Code, rec.Body.String())
	}
	var approved loanBody
	decode(t, rec, &approved)
	if approved.Loan.Status != "approved" || approved.Loan.InterestRate == nil || *approved.Loan.InterestRate != "8.5" || approved.Loan.TenureMonths != 12 || approved.Loan.DueDate == nil {
		t.Fatalf("unexpected approved loan: %s", rec.Body.String())
	}

	rec = app.do(t, stdhttp.MethodPost, "/lender/loan/disburse", lender.token, map[string]any{"application_id": appID})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("disburse: %d %s", rec.Code, rec.Body.String())
	}
	var disbursed struct {
		Message      string `json:"message"`
		Disbursement struct {
			Status          string `json:"status"`
			TransactionHash string `json:"transaction_hash"`
		} `json:"disbursement"`
	}
	decode(t, rec, &disbursed)
	if disbursed.Message != "Loan disbursed successfully" || disbursed.Disbursement.Status != "completed" || !strings.HasPrefix(disbursed.Disbursement.TransactionHash, "txn_") {
		t.Fatalf("unexpected disbursement: %s", rec.Body.String())
	}

	// disbursed is terminal
	for _, path := range []string{"/lender/loan/approve", "/lender/loan/reject", "/lender/loan/disburse"} {
		rec = app.do(t, stdhttp.MethodPost, path, lender.token, map[string]any{"application_id": appID})
		if rec.Code != stdhttp.StatusConflict {
			t.Fatalf("%s after disburse: want 409, got %d %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestApprove_InterestRateBounds(t *testing.T) {
	app := newTestApp(t)
	farmer := app.registerFarmer(t, "ravi@farm.test")
	lender := app.registerLender(t, "bank@lend.test")

	cases := []struct {
		rate float64
		code int
	}{
		{4, stdhttp.StatusUnprocessableEntity},
		{4.99, stdhttp.StatusUnprocessableEntity},
		{5, stdhttp.StatusOK},
		{12, stdhttp.StatusOK},
		{12.01, stdhttp.StatusUnprocessableEntity},
		{13, stdhttp.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		appID := app.apply(t, farmer, lender.id)
		rec := app.do(t, stdhttp.MethodPost, "/lender/loan/approve", lender.token, map[string]any{
			"application_id": appID, "interest_rate": tc.rate,
		})
		if rec.Code != tc.code {
			t.Fatalf("rate %v: want %d, got %d %s", tc.rate, tc.code, rec.Code, rec.Body.String())
		}
		if tc.code != stdhttp.StatusOK {
			var er ErrorResponse
			decode(t, rec, &er)
			if !containsFieldMsg(er.Details, "interest_rate", "equal to") {
				t.Fatalf("rate %v: missing interest_rate detail: %+v", tc.rate, er)
			}
		}
	}
}

func TestLoanActions_ScopedToAssignedLender(t *testing.T) {
	app := newTestApp(t)
	farmer := app.registerFarmer(t, "ravi@farm.test")
	owner := app.registerLender(t, "owner@lend.test")
	other := app.registerLender(t, "other@lend.test")
	appID := app.apply(t, farmer, owner.id)

	for _, path := range []string{"/lender/loan/approve", "/lender/loan/reject", "/lender/loan/disburse"} {
		rec := app.do(t, stdhttp.MethodPost, path, other.token, map[string]any{"application_id": appID})
		if rec.Code != stdhttp.StatusForbidden {
			t.Fatalf("%s by other lender: want 403, got %d", path, rec.Code)
		}
	}

	rec := app.do(t, stdhttp.MethodGet, "/lender/loan/assigned", other.token, nil)
	if strings.Contains(rec.Body.String(), appID) {
		t.Fatalf("other lender must not see the application: %s", rec.Body.String())
	}

	rec = app.do(t, stdhttp.MethodPost, "/lender/loan/approve", owner.token, map[string]any{"application_id": "missing"})
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("unknown application: want 404, got %d", rec.Code)
	}

	// pending cannot be disbursed
	rec = app.do(t, stdhttp.MethodPost, "/lender/loan/disburse", owner.token, map[string]any{"application_id": appID})
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("disburse pending: want 409, got %d", rec.Code)
	}
}

func TestReject_DefaultReasonAndTerminal(t *testing.T) {
	app := newTestApp(t)
	farmer := app.registerFarmer(t, "ravi@farm.test")
	lender := app.registerLender(t, "bank@lend.test")
	appID := app.apply(t, farmer, lender.id)

	rec := app.do(t, stdhttp.MethodPost, "/lender/loan/reject", lender.token, map[string]any{"application_id": appID})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("reject: %d %s", rec.Code, rec.Body.String())
	}
	var b loanBody
	decode(t, rec, &b)
	if b.Loan.Status != "rejected" || b.Loan.RejectionReason == nil || *b.Loan.RejectionReason != "Not provided" {
		t.Fatalf("unexpected rejected loan: %s", rec.Body.String())
	}

	rec = app.do(t, stdhttp.MethodPost, "/lender/loan/approve", lender.token, map[string]any{"application_id": appID, "interest_rate": 6})
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("approve rejected: want 409, got %d", rec.Code)
	}
}

func TestApply_Errors(t *testing.T) {
	app := newTestApp(t)
	farmer := app.registerFarmer(t, "ravi@farm.test")
	lender := app.registerLender(t, "bank@lend.test")

	cases := []struct {
		name  string
		token string
		body  map[string]any
		code  int
	}{
		{"no token", "", map[string]any{"lender_id": lender.id, "amount": 100, "tenure_months": 3}, stdhttp.StatusUnauthorized},
		{"lender token", lender.token, map[string]any{"lender_id": lender.id, "amount": 100, "tenure_months": 3}, stdhttp.StatusForbidden},
		{"missing lender", farmer.token, map[string]any{"amount": 100, "tenure_months": 3}, stdhttp.StatusUnprocessableEntity},
		{"zero amount", farmer.token, map[string]any{"lender_id": lender.id, "amount": 0, "tenure_months": 3}, stdhttp.StatusUnprocessableEntity},
		{"unknown lender", farmer.token, map[string]any{"lender_id": "nope", "amount": 100, "tenure_months": 3}, stdhttp.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := app.do(t, stdhttp.MethodPost, "/loan/apply", tc.token, tc.body)
			if rec.Code != tc.code {
				t.Fatalf("want %d, got %d %s", tc.code, rec.Code, rec.Body.String())
			}
		})
	}
}
