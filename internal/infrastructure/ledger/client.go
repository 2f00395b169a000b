// Package ledger is the Ethereum-backed implementation of the ledger port. It
// talks JSON-RPC through a narrow Backend so tests can swap the chain out.
package ledger

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	domain "agriloan-backend/internal/domain/ledger"
)

const DefaultContractAddress = "0x83233B09Ddd90333744Ea106f754af8780c97056"

// Backend is the subset of *ethclient.Client the ledger needs.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
	Close()
}

type DialFunc func(ctx context.Context, rawURL string) (Backend, error)

func dialEthclient(ctx context.Context, rawURL string) (Backend, error) {
	return ethclient.DialContext(ctx, rawURL)
}

type Config struct {
	RPCURL           string
	PrivateKey       string
	ContractAddress  string
	Confirmations    uint64
	GasMarginPercent uint64
	ReceiptPoll      time.Duration
}

func (c Config) withDefaults() Config {
	if c.ContractAddress == "" {
		c.ContractAddress = DefaultContractAddress
	}
	if c.Confirmations == 0 {
		c.Confirmations = 1
	}
	if c.GasMarginPercent == 0 {
		c.GasMarginPercent = 20
	}
	if c.ReceiptPoll <= 0 {
		c.ReceiptPoll = 2 * time.Second
	}
	return c
}

// Client anchors records to the GlobalStorage contract. One Client owns one
// signing account; submissions through it are serialized.
type Client struct {
	cfg  Config
	dial DialFunc
	log  *logrus.Logger
	abi  abi.ABI

	// mu guards the connection state below
	mu       sync.Mutex
	ready    bool
	backend  Backend
	key      *ecdsa.PrivateKey
	from     common.Address
	contract common.Address
	chainID  *big.Int

	submitMu sync.Mutex
}

var _ domain.Client = (*Client)(nil)

type Option func(*Client)

// WithDialer replaces the JSON-RPC dialer.
func WithDialer(d DialFunc) Option { return func(c *Client) { c.dial = d } }

func NewClient(cfg Config, log *logrus.Logger, opts ...Option) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(globalStorageABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}
	c := &Client{cfg: cfg.withDefaults(), dial: dialEthclient, log: log, abi: parsed}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", domain.ErrConfiguration, domain.ErrUnavailable, fmt.Sprintf(format, args...))
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrUnavailable, op, err)
}

// Initialize connects, loads the signing key and proves the contract answers.
// Safe to call repeatedly; once ready it returns immediately.
func (c *Client) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ready {
		return nil
	}

	if strings.TrimSpace(c.cfg.RPCURL) == "" {
		return configErr("SEPOLIA_RPC_URL not set")
	}
	if strings.TrimSpace(c.cfg.PrivateKey) == "" {
		return configErr("PRIVATE_KEY not set")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(c.cfg.PrivateKey), "0x"))
	if err != nil {
		return configErr("malformed PRIVATE_KEY")
	}
	if !common.IsHexAddress(c.cfg.ContractAddress) {
		return configErr("malformed contract address %q", c.cfg.ContractAddress)
	}

	b, err := c.dial(ctx, c.cfg.RPCURL)
	if err != nil {
		return unavailable("dial", err)
	}
	chainID, err := b.ChainID(ctx)
	if err != nil {
		b.Close()
		return unavailable("chain id", err)
	}
	from := crypto.PubkeyToAddress(key.PublicKey)
	bal, err := b.BalanceAt(ctx, from, nil)
	if err != nil {
		b.Close()
		return unavailable("balance", err)
	}
	if bal.Sign() <= 0 {
		b.Close()
		return configErr("signing account %s has zero balance", from.Hex())
	}

	c.backend, c.key, c.from, c.chainID = b, key, from, chainID
	c.contract = common.HexToAddress(c.cfg.ContractAddress)

	count, err := c.recordCount(ctx, b)
	if err != nil {
		b.Close()
		c.backend = nil
		return unavailable("recordCount", err)
	}

	c.ready = true
	c.log.WithFields(logrus.Fields{
		"chain_id":     chainID.String(),
		"account":      from.Hex(),
		"contract":     c.contract.Hex(),
		"record_count": count,
	}).Info("ledger: initialized")
	return nil
}

// conn lazily initializes and returns the live backend.
func (c *Client) conn(ctx context.Context) (Backend, error) {
	if err := c.Initialize(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend, nil
}

// Close drops the connection; the next call re-initializes.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend != nil {
		c.backend.Close()
	}
	c.backend, c.ready = nil, false
}

func (c *Client) call(ctx context.Context, b Backend, method string, args ...any) ([]any, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	out, err := b.CallContract(ctx, ethereum.CallMsg{From: c.from, To: &c.contract, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	return c.abi.Unpack(method, out)
}

func (c *Client) recordCount(ctx context.Context, b Backend) (int64, error) {
	out, err := c.call(ctx, b, methodRecordCount)
	if err != nil {
		return 0, err
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("recordCount: unexpected %d outputs", len(out))
	}
	n, ok := out[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("recordCount: unexpected type %T", out[0])
	}
	return n.Int64(), nil
}

func (c *Client) GetRecordCount(ctx context.Context) (int64, error) {
	b, err := c.conn(ctx)
	if err != nil {
		return 0, err
	}
	n, err := c.recordCount(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrReadFailed, err)
	}
	return n, nil
}

// GetRecord reads record id. Ids run from 0 to count-1.
func (c *Client) GetRecord(ctx context.Context, id int64) (*domain.Record, error) {
	b, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	if id < 0 {
		return nil, fmt.Errorf("%w: %w: %d", domain.ErrReadFailed, domain.ErrRecordOutOfRange, id)
	}
	count, err := c.recordCount(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReadFailed, err)
	}
	if id >= count {
		return nil, fmt.Errorf("%w: %w: %d (count %d)", domain.ErrReadFailed, domain.ErrRecordOutOfRange, id, count)
	}

	out, err := c.call(ctx, b, methodGetRecord, big.NewInt(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReadFailed, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: getRecord: unexpected %d outputs", domain.ErrReadFailed, len(out))
	}
	rec, ok := abi.ConvertType(out[0], new(globalStorageRecord)).(*globalStorageRecord)
	if !ok {
		return nil, fmt.Errorf("%w: getRecord: unexpected type %T", domain.ErrReadFailed, out[0])
	}
	return &domain.Record{
		FarmerID:      rec.FarmerId,
		KYCHash:       rec.KycHash,
		LenderID:      rec.LenderId,
		ApplicationID: rec.ApplicationId,
	}, nil
}
