package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	domain "agriloan-backend/internal/domain/ledger"
	"agriloan-backend/internal/infrastructure/metrics"
)

func submitErr(step string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrSubmitFailed, step, err)
}

// SubmitRecord writes rec and blocks until the transaction has the configured
// number of confirmations. RecordID is NoRecordID when the receipt carries no
// RecordAdded event; the write itself still succeeded.
func (c *Client) SubmitRecord(ctx context.Context, rec domain.Record) (*domain.Receipt, error) {
	if rec.KYCHash == "" {
		return nil, domain.ErrMissingKYC
	}
	if rec.LenderID == "" {
		return nil, domain.ErrMissingLenderAssignment
	}
	b, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}

	// one signing account: nonces must be handed out in order
	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	data, err := c.abi.Pack(methodAddRecord, globalStorageRecord{
		FarmerId:      rec.FarmerID,
		KycHash:       rec.KYCHash,
		LenderId:      rec.LenderID,
		ApplicationId: rec.ApplicationID,
	})
	if err != nil {
		return nil, submitErr("pack", err)
	}

	estimate, err := b.EstimateGas(ctx, ethereum.CallMsg{From: c.from, To: &c.contract, Data: data})
	if err != nil {
		return nil, submitErr("estimate gas", err)
	}
	gasLimit := estimate * (100 + c.cfg.GasMarginPercent) / 100

	nonce, err := b.PendingNonceAt(ctx, c.from)
	if err != nil {
		return nil, submitErr("nonce", err)
	}
	txData, err := c.feeFields(ctx, b, nonce, gasLimit, data)
	if err != nil {
		return nil, submitErr("fees", err)
	}
	signed, err := types.SignTx(types.NewTx(txData), types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return nil, submitErr("sign", err)
	}

	log := c.log.WithFields(logrus.Fields{
		"application_id": rec.ApplicationID,
		"tx_hash":        signed.Hash().Hex(),
		"gas_estimate":   estimate,
		"gas_limit":      gasLimit,
	})
	if err := b.SendTransaction(ctx, signed); err != nil {
		return nil, submitErr("send", err)
	}
	log.Info("ledger: tx sent")
	metrics.RecordLedgerGas(gasLimit)

	receipt, err := c.waitMined(ctx, b, signed.Hash())
	if err != nil {
		return nil, submitErr("wait receipt", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, submitErr("receipt", fmt.Errorf("transaction %s reverted", signed.Hash().Hex()))
	}
	if err := c.waitConfirmations(ctx, b, receipt.BlockNumber.Uint64()); err != nil {
		return nil, submitErr("confirmations", err)
	}

	recordID := c.recordIDFrom(receipt)
	if recordID == domain.NoRecordID {
		log.Warn("ledger: RecordAdded event not found in receipt")
	}
	log.WithFields(logrus.Fields{
		"block":     receipt.BlockNumber.Uint64(),
		"record_id": recordID,
	}).Info("ledger: tx confirmed")

	return &domain.Receipt{
		TxReference: signed.Hash().Hex(),
		RecordID:    recordID,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasLimit:    gasLimit,
	}, nil
}

// feeFields builds an EIP-1559 tx when the chain reports a base fee, else legacy.
func (c *Client) feeFields(ctx context.Context, b Backend, nonce, gasLimit uint64, data []byte) (types.TxData, error) {
	to := c.contract
	head, err := b.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}
	if head.BaseFee == nil {
		price, err := b.SuggestGasPrice(ctx)
		if err != nil {
			return nil, err
		}
		return &types.LegacyTx{Nonce: nonce, GasPrice: price, Gas: gasLimit, To: &to, Value: new(big.Int), Data: data}, nil
	}
	tip, err := b.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, err
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	return &types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Value:     new(big.Int),
		Data:      data,
	}, nil
}

func (c *Client) waitMined(ctx context.Context, b Backend, hash common.Hash) (*types.Receipt, error) {
	t := time.NewTicker(c.cfg.ReceiptPoll)
	defer t.Stop()
	for {
		r, err := b.TransactionReceipt(ctx, hash)
		if err == nil && r != nil {
			return r, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			c.log.WithError(err).WithField("tx_hash", hash.Hex()).Debug("ledger: receipt poll failed")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (c *Client) waitConfirmations(ctx context.Context, b Backend, minedAt uint64) error {
	if c.cfg.Confirmations <= 1 {
		return nil
	}
	target := minedAt + c.cfg.Confirmations - 1
	t := time.NewTicker(c.cfg.ReceiptPoll)
	defer t.Stop()
	for {
		head, err := b.BlockNumber(ctx)
		if err == nil && head >= target {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (c *Client) recordIDFrom(r *types.Receipt) int64 {
	ev, ok := c.abi.Events[eventRecordAdded]
	if !ok {
		return domain.NoRecordID
	}
	for _, l := range r.Logs {
		if l == nil || len(l.Topics) < 2 || l.Topics[0] != ev.ID {
			continue
		}
		if l.Address != (common.Address{}) && l.Address != c.contract {
			continue
		}
		return new(big.Int).SetBytes(l.Topics[1].Bytes()).Int64()
	}
	return domain.NoRecordID
}
