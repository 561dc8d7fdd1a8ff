package contracts

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/TitanInd/otcescrow/internal/interfaces"
	"gitlab.com/TitanInd/otcescrow/internal/networks"
	"golang.org/x/sync/errgroup"
)

const (
	lockedFanOut = 8
	// MaxLockedClaims bounds how many claims LockedDetails enumerates for one holder
	MaxLockedClaims = 10_000
)

var (
	ErrDealNotFound  = errors.New("deal not found")
	ErrTooManyClaims = errors.New("holder claim count exceeds limit")
)

type Deal struct {
	ID              *big.Int
	Seller          common.Address
	Token           common.Address
	PaymentCurrency common.Address
	RemainingAmount *big.Int
	MinimumPurchase *big.Int
	Price           *big.Int
	Maturity        int64
	UnlockDate      int64
	Buyer           common.Address
}

type Future struct {
	ID         *big.Int
	Amount     *big.Int
	Token      common.Address
	UnlockDate int64
}

func (f Future) Exists() bool {
	return f.Amount != nil && f.Amount.Sign() > 0
}

type TokenBalance struct {
	Balance  *big.Int
	Decimals uint8
}

// Reader queries the deployed contracts of one network
type Reader struct {
	profile networks.Profile
	caller  bind.ContractCaller
	log     interfaces.ILogger
}

func NewReader(profile networks.Profile, caller bind.ContractCaller, log interfaces.ILogger) *Reader {
	return &Reader{
		profile: profile,
		caller:  caller,
		log:     log,
	}
}

func (r *Reader) bound(t networks.Target, parsed *abi.ABI) (*bind.BoundContract, error) {
	addr, ok := r.profile.Address(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not deployed on %s", networks.ErrTargetUnavailable, t, r.profile.Key)
	}
	return bind.NewBoundContract(addr, *parsed, r.caller, nil, nil), nil
}

func (r *Reader) DealCount(ctx context.Context) (*big.Int, error) {
	ledger, err := r.bound(networks.TargetDealLedger, DealLedgerABI)
	if err != nil {
		return nil, err
	}
	var out []interface{}
	if err := ledger.Call(&bind.CallOpts{Context: ctx}, &out, "d"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (r *Reader) GetDeal(ctx context.Context, id *big.Int) (*Deal, error) {
	ledger, err := r.bound(networks.TargetDealLedger, DealLedgerABI)
	if err != nil {
		return nil, err
	}
	var out []interface{}
	if err := ledger.Call(&bind.CallOpts{Context: ctx}, &out, "deals", id); err != nil {
		return nil, err
	}

	deal := &Deal{
		ID:              id,
		Seller:          *abi.ConvertType(out[0], new(common.Address)).(*common.Address),
		Token:           *abi.ConvertType(out[1], new(common.Address)).(*common.Address),
		PaymentCurrency: *abi.ConvertType(out[2], new(common.Address)).(*common.Address),
		RemainingAmount: *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
		MinimumPurchase: *abi.ConvertType(out[4], new(*big.Int)).(**big.Int),
		Price:           *abi.ConvertType(out[5], new(*big.Int)).(**big.Int),
		Maturity:        (*abi.ConvertType(out[6], new(*big.Int)).(**big.Int)).Int64(),
		UnlockDate:      (*abi.ConvertType(out[7], new(*big.Int)).(**big.Int)).Int64(),
		Buyer:           *abi.ConvertType(out[8], new(common.Address)).(*common.Address),
	}
	if deal.Seller == (common.Address{}) {
		return nil, fmt.Errorf("%w: %s", ErrDealNotFound, id)
	}
	return deal, nil
}

// GetFuture returns the claim record, zeroed when the claim does not exist or was redeemed
func (r *Reader) GetFuture(ctx context.Context, id *big.Int) (*Future, error) {
	registry, err := r.bound(networks.TargetFuturesRegistry, FuturesABI)
	if err != nil {
		return nil, err
	}
	return r.getFuture(ctx, registry, id)
}

func (r *Reader) getFuture(ctx context.Context, registry *bind.BoundContract, id *big.Int) (*Future, error) {
	var out []interface{}
	if err := registry.Call(&bind.CallOpts{Context: ctx}, &out, "futures", id); err != nil {
		return nil, err
	}
	return &Future{
		ID:         id,
		Amount:     *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Token:      *abi.ConvertType(out[1], new(common.Address)).(*common.Address),
		UnlockDate: (*abi.ConvertType(out[2], new(*big.Int)).(**big.Int)).Int64(),
	}, nil
}

// TokenBalance reads an ERC20 balance together with the token decimals
func (r *Reader) TokenBalance(ctx context.Context, token, owner common.Address) (*TokenBalance, error) {
	erc20 := bind.NewBoundContract(token, *ERC20ABI, r.caller, nil, nil)
	res := &TokenBalance{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var out []interface{}
		if err := erc20.Call(&bind.CallOpts{Context: gctx}, &out, "balanceOf", owner); err != nil {
			return err
		}
		res.Balance = *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
		return nil
	})
	g.Go(func() error {
		var out []interface{}
		if err := erc20.Call(&bind.CallOpts{Context: gctx}, &out, "decimals"); err != nil {
			return err
		}
		res.Decimals = *abi.ConvertType(out[0], new(uint8)).(*uint8)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// LockedDetails enumerates the claims held by holder in index order
func (r *Reader) LockedDetails(ctx context.Context, holder common.Address) ([]Future, error) {
	registry, err := r.bound(networks.TargetFuturesRegistry, FuturesABI)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	if err := registry.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", holder); err != nil {
		return nil, err
	}
	count := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	if count.Sign() < 0 || count.Cmp(big.NewInt(MaxLockedClaims)) > 0 {
		return nil, fmt.Errorf("%w: %s holds %s, limit %d", ErrTooManyClaims, holder.Hex(), count, MaxLockedClaims)
	}

	futures := make([]Future, count.Int64())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lockedFanOut)
	for i := range futures {
		i := i
		g.Go(func() error {
			var out []interface{}
			if err := registry.Call(&bind.CallOpts{Context: gctx}, &out, "tokenOfOwnerByIndex", holder, big.NewInt(int64(i))); err != nil {
				return err
			}
			id := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
			f, err := r.getFuture(gctx, registry, id)
			if err != nil {
				return err
			}
			futures[i] = *f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.log.Debugf("holder %s has %d claims on %s", holder.Hex(), len(futures), r.profile.Key)
	return futures, nil
}

// LockedBalance sums the amounts of holder's claims on token
func (r *Reader) LockedBalance(ctx context.Context, holder, token common.Address) (*big.Int, error) {
	futures, err := r.LockedDetails(ctx, holder)
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, f := range futures {
		if f.Token == token {
			total.Add(total, f.Amount)
		}
	}
	return total, nil
}
