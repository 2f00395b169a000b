package ledgermock

import (
	"context"

	domain "agriloan-backend/internal/domain/ledger"
)

var _ domain.Client = (*Client)(nil)

// Client is a function-backed mock that satisfies domain.Client.
type Client struct {
	InitializeFn     func(ctx context.Context) error
	SubmitRecordFn   func(ctx context.Context, rec domain.Record) (*domain.Receipt, error)
	GetRecordFn      func(ctx context.Context, id int64) (*domain.Record, error)
	GetRecordCountFn func(ctx context.Context) (int64, error)
}

func (m *Client) Initialize(ctx context.Context) error {
	if m.InitializeFn != nil {
		return m.InitializeFn(ctx)
	}
	return nil
}

func (m *Client) SubmitRecord(ctx context.Context, rec domain.Record) (*domain.Receipt, error) {
	if m.SubmitRecordFn != nil {
		return m.SubmitRecordFn(ctx, rec)
	}
	return nil, domain.ErrUnavailable
}

func (m *Client) GetRecord(ctx context.Context, id int64) (*domain.Record, error) {
	if m.GetRecordFn != nil {
		return m.GetRecordFn(ctx, id)
	}
	return nil, domain.ErrUnavailable
}

func (m *Client) GetRecordCount(ctx context.Context) (int64, error) {
	if m.GetRecordCountFn != nil {
		return m.GetRecordCountFn(ctx)
	}
	return 0, domain.ErrUnavailable
}
