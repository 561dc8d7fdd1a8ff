package submitter

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"gitlab.com/TitanInd/otcescrow/internal/interfaces"
	"gitlab.com/TitanInd/otcescrow/internal/lib"
	"gitlab.com/TitanInd/otcescrow/internal/networks"
	"go.uber.org/atomic"
)

const (
	DefaultGasLimit     = 8_000_000
	DefaultPollInterval = 2 * time.Second
)

var (
	ErrNoGasPrice          = errors.New("gas price is not configured")
	ErrNonceFetch          = errors.New("cannot fetch pending nonce")
	ErrSign                = errors.New("cannot sign transaction")
	ErrBroadcast           = errors.New("broadcast rejected")
	ErrReceipt             = errors.New("cannot fetch receipt")
	ErrReverted            = errors.New("transaction reverted")
	ErrReservationUsed     = errors.New("nonce reservation already used")
	ErrReservationMismatch = errors.New("nonce reservation belongs to another account or chain")
)

type EthereumClient interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Call is an encoded invocation of one of the network's contracts. To overrides
// Target for contracts outside the network table, such as ERC20 tokens.
type Call struct {
	Target networks.Target
	To     *common.Address
	Data   []byte
	Value  *big.Int
}

type Config struct {
	GasPrice     *big.Int // wei
	GasLimit     uint64
	PollInterval time.Duration
}

// GweiToWei converts a manual gas price to the network's base fee unit
func GweiToWei(gwei uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(gwei), big.NewInt(params.GWei))
}

// Submitter signs legacy transactions for one network and reports their
// outcome in two stages, hash then receipt. It never retries or bumps fees.
type Submitter struct {
	// config
	profile      networks.Profile
	gasPrice     *big.Int
	gasLimit     uint64
	pollInterval time.Duration

	// state
	inFlight atomic.Int64

	// deps
	client  EthereumClient
	metrics *Metrics
	log     interfaces.ILogger
}

func NewSubmitter(profile networks.Profile, client EthereumClient, cfg Config, metrics *Metrics, log interfaces.ILogger) *Submitter {
	if cfg.GasLimit == 0 {
		cfg.GasLimit = DefaultGasLimit
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.GasPrice == nil {
		cfg.GasPrice = new(big.Int)
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Submitter{
		profile:      profile,
		gasPrice:     cfg.GasPrice,
		gasLimit:     cfg.GasLimit,
		pollInterval: cfg.PollInterval,
		client:       client,
		metrics:      metrics,
		log:          log,
	}
}

func (s *Submitter) Profile() networks.Profile {
	return s.profile
}

// GasPrice is the manual legacy gas price in wei, zero when none was configured
func (s *Submitter) GasPrice() *big.Int {
	return new(big.Int).Set(s.gasPrice)
}

// ReserveNonce fetches the pending nonce of the key's account
func (s *Submitter) ReserveNonce(ctx context.Context, key *ecdsa.PrivateKey) (*NonceReservation, error) {
	account := crypto.PubkeyToAddress(key.PublicKey)
	nonce, err := s.client.PendingNonceAt(ctx, account)
	if err != nil {
		return nil, lib.WrapError(ErrNonceFetch, err)
	}
	s.log.Debugf("reserved nonce %d for %s on %s", nonce, account.Hex(), s.profile.Key)

	return &NonceReservation{
		Account: account,
		ChainID: new(big.Int).Set(s.profile.ChainID),
		Nonce:   nonce,
	}, nil
}

// Submit signs call with key at the reserved nonce and broadcasts it. The
// returned Submission resolves once a receipt is seen or ctx is done.
func (s *Submitter) Submit(ctx context.Context, res *NonceReservation, key *ecdsa.PrivateKey, call Call) (*Submission, error) {
	to, err := s.destination(call)
	if err != nil {
		return nil, err
	}
	if s.gasPrice.Sign() == 0 {
		return nil, ErrNoGasPrice
	}
	if crypto.PubkeyToAddress(key.PublicKey) != res.Account || res.ChainID.Cmp(s.profile.ChainID) != 0 {
		return nil, ErrReservationMismatch
	}
	if !res.consume() {
		return nil, ErrReservationUsed
	}

	value := call.Value
	if value == nil {
		value = new(big.Int)
	}
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    res.Nonce,
		GasPrice: s.gasPrice,
		Gas:      s.gasLimit,
		To:       &to,
		Value:    value,
		Data:     call.Data,
	})

	signed, err := types.SignTx(tx, types.NewEIP155Signer(res.ChainID), key)
	if err != nil {
		s.metrics.incSubmitted(s.profile.Key, s.targetLabel(call), "sign_error")
		return nil, lib.WrapError(ErrSign, err)
	}

	if err := s.client.SendTransaction(ctx, signed); err != nil {
		s.metrics.incSubmitted(s.profile.Key, s.targetLabel(call), "rejected")
		return nil, lib.WrapError(ErrBroadcast, err)
	}
	s.metrics.incSubmitted(s.profile.Key, s.targetLabel(call), "broadcast")
	s.log.Infof("broadcast %s to %s, nonce %d", signed.Hash().Hex(), to.Hex(), res.Nonce)

	sub := newSubmission(signed.Hash(), res.Nonce)
	s.metrics.setInFlight(s.inFlight.Inc())
	go s.awaitReceipt(ctx, sub)
	return sub, nil
}

func (s *Submitter) destination(call Call) (common.Address, error) {
	if call.To != nil {
		return *call.To, nil
	}
	addr, ok := s.profile.Address(call.Target)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s is not deployed on %s", networks.ErrTargetUnavailable, call.Target, s.profile.Key)
	}
	return addr, nil
}

func (s *Submitter) targetLabel(call Call) string {
	if call.To != nil {
		return "external"
	}
	return call.Target.String()
}

// awaitReceipt polls without a deadline; only ctx ends the wait early
func (s *Submitter) awaitReceipt(ctx context.Context, sub *Submission) {
	started := time.Now()
	outcome := s.pollReceipt(ctx, sub.Hash)

	s.metrics.setInFlight(s.inFlight.Dec())
	s.metrics.observeOutcome(s.profile.Key, outcome.Status, time.Since(started))
	if outcome.Err != nil {
		s.log.Warnf("transaction %s failed: %s", sub.Hash.Hex(), outcome.Err)
	} else {
		s.log.Infof("transaction %s confirmed in block %s", sub.Hash.Hex(), outcome.Receipt.BlockNumber)
	}
	sub.resolve(outcome)
}

func (s *Submitter) pollReceipt(ctx context.Context, hash common.Hash) Outcome {
	for {
		receipt, err := s.client.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return Outcome{Status: StatusFailed, Receipt: receipt, Err: ErrReverted}
			}
			return Outcome{Status: StatusConfirmed, Receipt: receipt}
		case !errors.Is(err, ethereum.NotFound):
			return Outcome{Status: StatusFailed, Err: lib.WrapError(ErrReceipt, err)}
		}

		select {
		case <-ctx.Done():
			return Outcome{Status: StatusFailed, Err: ctx.Err()}
		case <-time.After(s.pollInterval):
		}
	}
}

// InFlight is the number of broadcast transactions without an outcome yet
func (s *Submitter) InFlight() int64 {
	return s.inFlight.Load()
}
