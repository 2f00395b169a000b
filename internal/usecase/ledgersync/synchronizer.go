// Package ledgersync anchors disbursed loan applications to the public ledger.
//
// A run lists every eligible application that has no transaction reference
// yet, submits them one at a time with a fixed pause in between, and stamps
// the returned reference back onto the application. One failing item never
// stops the batch; everything is collected into a Report.
package ledgersync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"agriloan-backend/internal/domain/ledger"
	"agriloan-backend/internal/domain/loan"
	"agriloan-backend/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

const (
	DefaultItemDelay     = 5 * time.Second
	DefaultSubmitTimeout = 3 * time.Minute
)

var (
	ErrRunInProgress       = errors.New("ledger sync already running")
	ErrApplicationNotFound = loan.ErrNotFound
)

type Config struct {
	// EligibleStatuses defaults to {disbursed}.
	EligibleStatuses []loan.Status

	// ItemDelay is the pause between submissions; non-positive means DefaultItemDelay.
	ItemDelay     time.Duration
	SubmitTimeout time.Duration

	// BatchLimit caps candidates per run; 0 means no cap.
	BatchLimit int
}

func (c Config) withDefaults() Config {
	if len(c.EligibleStatuses) == 0 {
		c.EligibleStatuses = []loan.Status{loan.StatusDisbursed}
	}
	if c.ItemDelay <= 0 {
		c.ItemDelay = DefaultItemDelay
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = DefaultSubmitTimeout
	}
	return c
}

type Result struct {
	ApplicationID string `json:"application_id"`
	TxReference   string `json:"tx_reference,omitempty"`
	RecordID      int64  `json:"record_id"`
	Err           error  `json:"-"`
}

type Skipped struct {
	ApplicationID string `json:"application_id"`
	Reason        error  `json:"-"`
}

type Report struct {
	Results    []Result  `json:"results"`
	Skipped    []Skipped `json:"skipped"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (r *Report) Anchored() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int { return len(r.Results) - r.Anchored() }

type Synchronizer struct {
	loans  loan.Repository
	ledger ledger.Client
	cfg    Config
	log    *logrus.Logger

	running atomic.Bool
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time
}

func New(loans loan.Repository, client ledger.Client, cfg Config, log *logrus.Logger) *Synchronizer {
	return &Synchronizer{
		loans:  loans,
		ledger: client,
		cfg:    cfg.withDefaults(),
		log:    log,
		sleep:  sleepCtx,
		now:    time.Now,
	}
}

// Run performs one synchronization pass. Overlapping calls fail fast with
// ErrRunInProgress. A non-nil error with a non-nil Report means the pass was
// cut short by ctx.
func (s *Synchronizer) Run(ctx context.Context) (rep *Report, err error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	started := s.now().UTC()
	defer func() {
		finished := s.now().UTC()
		if rep != nil {
			rep.FinishedAt = finished
		}
		metrics.RecordSyncRun(finished.Sub(started), err)
	}()
	rep = &Report{StartedAt: started}

	candidates, err := s.loans.ListAnchorCandidates(ctx, s.cfg.EligibleStatuses, s.cfg.BatchLimit)
	if err != nil {
		return nil, fmt.Errorf("list anchor candidates: %w", err)
	}

	eligible := make([]string, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if c.Farmer.KYCHash() == "" {
			rep.skip(c.ApplicationID, ledger.ErrMissingKYC)
			continue
		}
		eligible = append(eligible, c.ApplicationID)
	}

	log := s.log.WithFields(logrus.Fields{"run": rep.StartedAt.Format(time.RFC3339), "eligible": len(eligible), "skipped": len(rep.Skipped)})
	if len(eligible) == 0 {
		log.Debug("ledgersync: nothing to anchor")
		return rep, nil
	}

	if err := s.ledger.Initialize(ctx); err != nil {
		log.WithError(err).Warn("ledgersync: ledger not ready, run aborted")
		return nil, fmt.Errorf("initialize ledger: %w", err)
	}

	log.Info("ledgersync: run started")
	for i, applicationID := range eligible {
		if i > 0 {
			if err := s.sleep(ctx, s.cfg.ItemDelay); err != nil {
				log.WithError(err).Warn("ledgersync: run cancelled")
				return rep, err
			}
		}
		if reason := s.anchor(ctx, applicationID, rep); reason != nil {
			rep.skip(applicationID, reason)
		}
	}

	log.WithFields(logrus.Fields{"anchored": rep.Anchored(), "failed": rep.Failed()}).Info("ledgersync: run finished")
	return rep, nil
}

func (r *Report) skip(applicationID string, reason error) {
	r.Skipped = append(r.Skipped, Skipped{ApplicationID: applicationID, Reason: reason})
	metrics.RecordSyncItem(metrics.OutcomeSkipped)
}

// anchor drives one application through the ledger. It appends a Result, or
// returns a non-nil skip reason when the application no longer needs anchoring.
func (s *Synchronizer) anchor(ctx context.Context, applicationID string, rep *Report) error {
	log := s.log.WithField("application_id", applicationID)
	res := Result{ApplicationID: applicationID, RecordID: ledger.NoRecordID}
	fail := func(err error) error {
		res.Err = err
		rep.Results = append(rep.Results, res)
		metrics.RecordSyncItem(metrics.OutcomeFailed)
		log.WithError(err).Error("ledgersync: anchoring failed")
		return nil
	}

	app, err := s.loans.GetByApplicationID(ctx, applicationID)
	if errors.Is(err, loan.ErrNotFound) {
		return ErrApplicationNotFound
	}
	if err != nil {
		return fail(err)
	}
	if app.Anchored() {
		return loan.ErrAlreadyAnchored
	}
	if app.Farmer.KYCHash() == "" {
		return ledger.ErrMissingKYC
	}
	if app.LenderID == nil || *app.LenderID == "" {
		return fail(ledger.ErrMissingLenderAssignment)
	}

	rec := ledger.Record{
		FarmerID:      app.FarmerID,
		KYCHash:       app.Farmer.KYCHash(),
		LenderID:      *app.LenderID,
		ApplicationID: app.ApplicationID,
	}

	sctx, cancel := context.WithTimeout(ctx, s.cfg.SubmitTimeout)
	receipt, err := s.ledger.SubmitRecord(sctx, rec)
	cancel()
	if err != nil {
		if !errors.Is(err, ledger.ErrSubmitFailed) {
			err = fmt.Errorf("%w: %w", ledger.ErrSubmitFailed, err)
		}
		return fail(err)
	}

	res.TxReference = receipt.TxReference
	res.RecordID = receipt.RecordID
	log = log.WithFields(logrus.Fields{"tx_hash": receipt.TxReference, "record_id": receipt.RecordID})

	if err := s.loans.SetBlockchainHash(ctx, applicationID, receipt.TxReference); err != nil {
		return fail(fmt.Errorf("store tx reference: %w", err))
	}

	rep.Results = append(rep.Results, res)
	metrics.RecordSyncItem(metrics.OutcomeAnchored)
	log.Info("ledgersync: application anchored")
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
