package http

import (
	stdhttp "net/http"
	"strings"
	"testing"
)

func TestAuth_RegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	app.registerFarmer(t, "ravi@farm.test")

	rec := app.do(t, stdhttp.MethodPost, "/auth/farmer/register", "", map[string]any{
		"name": "Ravi", "email": "ravi@farm.test", "password": "pw", "location": "Nashik",
	})
	if rec.Code != stdhttp.StatusBadRequest || !strings.Contains(rec.Body.String(), "Email already in use") {
		t.Fatalf("duplicate register: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.do(t, stdhttp.MethodPost, "/auth/farmer/login", "", map[string]any{"email": "ravi@farm.test", "password": "nope"})
	if rec.Code != stdhttp.StatusBadRequest || !strings.Contains(rec.Body.String(), "Invalid credentials") {
		t.Fatalf("bad login: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.do(t, stdhttp.MethodPost, "/auth/farmer/login", "", map[string]any{"email": "ravi@farm.test", "password": "pw"})
	var s sessionBody
	decode(t, rec, &s)
	if rec.Code != stdhttp.StatusOK || s.Redirect != "/farmer/kyc" || s.Role != "farmer" || s.Token == "" {
		t.Fatalf("login before kyc: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.do(t, stdhttp.MethodPost, "/kyc/complete-kyc", s.Token, map[string]any{"aadhar": "123412341234", "pan": "ABCDE1234F"})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("kyc: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.do(t, stdhttp.MethodPost, "/auth/farmer/login", "", map[string]any{"email": "ravi@farm.test", "password": "pw"})
	decode(t, rec, &s)
	if s.Redirect != "/dashboard" {
		t.Fatalf("login after kyc: redirect = %q", s.Redirect)
	}

	rec = app.do(t, stdhttp.MethodPost, "/auth/lender/register", "", map[string]any{"name": "Bank", "email": "not-an-email", "password": "pw"})
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("invalid email: want 422, got %d", rec.Code)
	}

	lender := app.registerLender(t, "bank@lend.test")
	rec = app.do(t, stdhttp.MethodPost, "/auth/lender/login", "", map[string]any{"email": "bank@lend.test", "password": "pw"})
	decode(t, rec, &s)
	if rec.Code != stdhttp.StatusOK || s.Redirect != "/lender/dashboard" || s.Lender == nil || s.Lender.LenderID != lender.id {
		t.Fatalf("lender login: %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestKYC_AndProfile(t *testing.T) {
	app := newTestApp(t)
	farmer := app.registerFarmer(t, "ravi@farm.test")
	lender := app.registerLender(t, "bank@lend.test")

	rec := app.do(t, stdhttp.MethodPost, "/kyc/complete-kyc", farmer.token, map[string]any{"aadhar": "1234", "pan": "ABCDE1234F"})
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("bad aadhar: want 422, got %d", rec.Code)
	}
	rec = app.do(t, stdhttp.MethodPost, "/kyc/complete-kyc", lender.token, map[string]any{"aadhar": "123412341234", "pan": "ABCDE1234F"})
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("lender kyc: want 403, got %d", rec.Code)
	}

	rec = app.do(t, stdhttp.MethodPost, "/kyc/complete-kyc", farmer.token, map[string]any{"aadhar": "123412341234", "pan": "ABCDE1234F"})
	var done struct {
		KYCHash string `json:"kyc_hash"`
	}
	decode(t, rec, &done)
	if rec.Code != stdhttp.StatusOK || len(done.KYCHash) != 64 {
		t.Fatalf("kyc: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.do(t, stdhttp.MethodPost, "/kyc/complete-kyc", farmer.token, map[string]any{"aadhar": "123412341234", "pan": "ABCDE1234F"})
	if rec.Code != stdhttp.StatusBadRequest || !strings.Contains(rec.Body.String(), "KYC already completed") {
		t.Fatalf("second kyc: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.do(t, stdhttp.MethodGet, "/farmer/profile", farmer.token, nil)
	var p struct {
		Farmer profileResp `json:"farmer"`
	}
	decode(t, rec, &p)
	if rec.Code != stdhttp.StatusOK || !p.Farmer.KYCVerified || p.Farmer.PAN == nil || *p.Farmer.PAN != "ABCDE1234F" || p.Farmer.FarmerID != farmer.id {
		t.Fatalf("profile: %d %s", rec.Code, rec.Body.String())
	}

	// the application now carries the KYC as collateral
	app.apply(t, farmer, lender.id)
	var n int64
	if err := app.db.Table("collateral_documents").Where("document_type = ?", "pan").Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("collateral rows = %d (err %v), want 1", n, err)
	}
}

func TestLenderList_Public(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, stdhttp.MethodGet, "/lender/list", "", nil)
	if rec.Code != stdhttp.StatusOK || !strings.Contains(rec.Body.String(), `"lenders":[]`) {
		t.Fatalf("empty list: %d %s", rec.Code, rec.Body.String())
	}

	l := app.registerLender(t, "bank@lend.test")
	rec = app.do(t, stdhttp.MethodGet, "/lender/list", "", nil)
	var out struct {
		Lenders []map[string]any `json:"lenders"`
	}
	decode(t, rec, &out)
	if len(out.Lenders) != 1 || out.Lenders[0]["lender_id"] != l.id || out.Lenders[0]["name"] != "Grameen Capital" {
		t.Fatalf("lender list: %s", rec.Body.String())
	}
	if _, ok := out.Lenders[0]["email"]; ok {
		t.Fatalf("directory must only expose id and name: %v", out.Lenders[0])
	}
}
