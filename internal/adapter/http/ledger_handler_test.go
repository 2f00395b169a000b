package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"testing"

	"agriloan-backend/internal/domain/ledger"
)

func TestLedgerRoutes(t *testing.T) {
	app := newTestApp(t)
	app.ledger.GetRecordCountFn = func(context.Context) (int64, error) { return 2, nil }
	app.ledger.GetRecordFn = func(_ context.Context, id int64) (*ledger.Record, error) {
		if id >= 2 {
			return nil, fmt.Errorf("%w: %w: %d", ledger.ErrReadFailed, ledger.ErrRecordOutOfRange, id)
		}
		return &ledger.Record{FarmerID: "f", KYCHash: "h", LenderID: "l", ApplicationID: fmt.Sprintf("a-%d", id)}, nil
	}

	rec := app.do(t, stdhttp.MethodGet, "/ledger/records/count", "", nil)
	var cnt struct {
		Count int64 `json:"count"`
	}
	decode(t, rec, &cnt)
	if rec.Code != stdhttp.StatusOK || cnt.Count != 2 {
		t.Fatalf("count: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.do(t, stdhttp.MethodGet, "/ledger/records/1", "", nil)
	var got struct {
		RecordID int64         `json:"record_id"`
		Record   ledger.Record `json:"record"`
	}
	decode(t, rec, &got)
	if rec.Code != stdhttp.StatusOK || got.RecordID != 1 || got.Record.ApplicationID != "a-1" {
		t.Fatalf("record: %d %s", rec.Code, rec.Body.String())
	}

	cases := []struct {
		path string
		code int
	}{
		{"/ledger/records/2", stdhttp.StatusNotFound},
		{"/ledger/records/-1", stdhttp.StatusBadRequest},
		{"/ledger/records/abc", stdhttp.StatusBadRequest},
	}
	for _, tc := range cases {
		if rec := app.do(t, stdhttp.MethodGet, tc.path, "", nil); rec.Code != tc.code {
			t.Fatalf("%s: want %d, got %d", tc.path, tc.code, rec.Code)
		}
	}
}

func TestLedgerRoutes_Unavailable(t *testing.T) {
	app := newTestApp(t)
	app.ledger.GetRecordCountFn = func(context.Context) (int64, error) {
		return 0, fmt.Errorf("%w: %w: SEPOLIA_RPC_URL not set", ledger.ErrConfiguration, ledger.ErrUnavailable)
	}
	app.ledger.GetRecordFn = func(context.Context, int64) (*ledger.Record, error) {
		return nil, fmt.Errorf("%w: eth_call: connection reset", ledger.ErrReadFailed)
	}

	if rec := app.do(t, stdhttp.MethodGet, "/ledger/records/count", "", nil); rec.Code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("count: want 503, got %d", rec.Code)
	}
	if rec := app.do(t, stdhttp.MethodGet, "/ledger/records/0", "", nil); rec.Code != stdhttp.StatusBadGateway {
		t.Fatalf("record: want 502, got %d", rec.Code)
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	app := newTestApp(t)
	if rec := app.do(t, stdhttp.MethodGet, "/health", "", nil); rec.Code != stdhttp.StatusOK {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}
	rec := app.do(t, stdhttp.MethodGet, "/metrics", "", nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
}
