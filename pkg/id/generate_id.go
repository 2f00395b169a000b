package id

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// New returns a random (v4) UUID string, used for entity primary keys.
func New() string { return uuid.NewString() }

// NewTxnRef returns a disbursement reference: "txn_" followed by 10 hex chars.
func NewTxnRef() string { return "txn_" + NewID32()[:10] }
