// Package ledger describes the append-only public ledger that disbursed loan
// applications are anchored to. Only a minimal tuple of identifiers is ever
// written: no amounts and no raw identity numbers.
package ledger

import (
	"context"
	"errors"
)

var (
	// ErrConfiguration: endpoint or signing key missing/invalid, or the
	// signing account cannot pay for writes.
	ErrConfiguration = errors.New("ledger configuration error")
	ErrUnavailable   = errors.New("ledger unavailable")
	ErrSubmitFailed  = errors.New("ledger submit failed")
	ErrReadFailed    = errors.New("ledger read failed")

	ErrRecordOutOfRange = errors.New("ledger record id out of range")

	ErrMissingKYC              = errors.New("farmer has no kyc hash")
	ErrMissingLenderAssignment = errors.New("application has no lender assigned")
)

// NoRecordID is returned when a write confirmed but its RecordAdded event
// could not be found in the receipt.
const NoRecordID int64 = -1

type Record struct {
	FarmerID      string `json:"farmer_id"`
	KYCHash       string `json:"kyc_hash"`
	LenderID      string `json:"lender_id"`
	ApplicationID string `json:"application_id"`
}

type Receipt struct {
	TxReference string `json:"tx_reference"`
	RecordID    int64  `json:"record_id"`
	BlockNumber uint64 `json:"block_number"`
	GasLimit    uint64 `json:"gas_limit"`
}

type Client interface {
	Initialize(ctx context.Context) error
	SubmitRecord(ctx context.Context, rec Record) (*Receipt, error)
	GetRecord(ctx context.Context, id int64) (*Record, error)
	GetRecordCount(ctx context.Context) (int64, error)
}
