package escrow

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestDealLedgerCreate(t *testing.T) {
	f := newFixture(t)
	p := f.dealParams(0)

	id := f.createDeal(p)
	require.Equal(t, uint64(0), id)
	require.Equal(t, uint64(1), f.ledger.DealCount())

	deal, ok := f.ledger.Deal(id)
	require.True(t, ok)
	require.Equal(t, seller, deal.Seller)
	require.Equal(t, e18(10), deal.RemainingAmount)
	require.True(t, deal.Open())

	require.Equal(t, e18(10), f.balance(f.token, f.ledger.Address()))
	require.Equal(t, e18(990), f.balance(f.token, seller))

	evs := f.events(f.ledger.Address())
	require.Len(t, evs, 1)
	created := evs[0].(NewDeal)
	require.Equal(t, p.Price, created.Price)
	require.Equal(t, p.Maturity, created.Maturity)

	require.Equal(t, uint64(1), f.createDeal(p))
	f.requireConserved(f.token)
}

func TestDealLedgerCreateErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(p *CreateDealParams)
		value  *big.Int
		err    error
		reason string
	}{
		{"maturity in past", func(p *CreateDealParams) { p.Maturity = f.now() - 1 }, nil, ErrMaturityInPast, "OTC01"},
		{"amount below min", func(p *CreateDealParams) { p.Min = e18(11) }, nil, ErrAmountBelowMinimum, "OTC02"},
		{"zero min", func(p *CreateDealParams) { p.Min = big.NewInt(0) }, nil, ErrNonPositiveTerms, "OTC03"},
		{"zero price", func(p *CreateDealParams) { p.Price = big.NewInt(0) }, nil, ErrNonPositiveTerms, "OTC03"},
		{"min costs nothing", func(p *CreateDealParams) { p.Min = big.NewInt(1); p.Price = big.NewInt(1) }, nil, ErrNonPositiveTerms, "OTC03"},
		{"insufficient balance", func(p *CreateDealParams) { p.Amount = e18(5000) }, nil, ErrInsufficientBalance, "THL01"},
		{"fee on transfer", func(p *CreateDealParams) { p.Token = f.burn.Address() }, nil, ErrTransferMismatch, "THL02"},
		{"value on token deal", func(p *CreateDealParams) {}, e18(1), ErrWrongValue, "THL03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := f.dealParams(0)
			tt.mutate(&p)
			_, err := f.ledger.Create(Msg{Sender: seller, Value: tt.value}, p)
			require.ErrorIs(t, err, tt.err)
			require.EqualError(t, err, tt.reason)
		})
	}

	require.Zero(t, f.ledger.DealCount())
	require.Equal(t, e18(1000), f.balance(f.token, seller))
	require.Equal(t, e18(1000), f.balance(f.burn, seller))
	require.Empty(t, f.events(f.ledger.Address()))
}

func TestDealLedgerBuyImmediate(t *testing.T) {
	f := newFixture(t)
	id := f.createDeal(f.dealParams(0))

	require.NoError(t, f.ledger.Buy(Msg{Sender: buyer}, id, e18(1)))

	require.Equal(t, e18(1001), f.balance(f.pay, seller))
	require.Equal(t, e18(999), f.balance(f.pay, buyer))
	require.Equal(t, e18(1001), f.balance(f.token, buyer))

	deal, _ := f.ledger.Deal(id)
	require.Equal(t, e18(9), deal.RemainingAmount)

	evs := f.events(f.ledger.Address())
	require.Equal(t, TokensBought{ID: id, Amount: e18(1), RemainingAmount: e18(9)}, evs[len(evs)-1])
	f.requireConserved(f.token, f.pay)
}

func TestDealLedgerBuyLocked(t *testing.T) {
	f := newFixture(t)
	unlock := f.inOneHour()
	id := f.createDeal(f.dealParams(unlock))

	require.NoError(t, f.ledger.Buy(Msg{Sender: buyer}, id, e18(1)))
	require.Equal(t, e18(1000), f.balance(f.token, buyer))
	require.Equal(t, e18(1), f.balance(f.token, f.futures.Address()))
	require.Zero(t, f.balance(f.token, f.ledger.Address()).Cmp(e18(9)))
	f.requireConserved(f.token)

	futureID, err := f.futures.TokenOfOwnerByIndex(buyer, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1), futureID)
	future := f.futures.Future(futureID)
	require.Equal(t, e18(1), future.Amount)
	require.Equal(t, unlock, future.UnlockDate)

	err = f.futures.RedeemNFT(Msg{Sender: buyer}, futureID)
	require.ErrorIs(t, err, ErrNotUnlocked)

	f.clock.Advance(time.Hour)
	require.NoError(t, f.futures.RedeemNFT(Msg{Sender: buyer}, futureID))
	require.Equal(t, e18(1001), f.balance(f.token, buyer))
	_, err = f.futures.OwnerOf(futureID)
	require.ErrorIs(t, err, ErrNonexistentToken)
	f.requireConserved(f.token)
}

func TestDealLedgerPartialFill(t *testing.T) {
	f := newFixture(t)
	p := f.dealParams(0)
	p.Amount = big.NewInt(10)
	p.Min = big.NewInt(3)
	p.Price = big.NewInt(5e17)
	id := f.createDeal(p)

	payBefore := f.balance(f.pay, seller)
	require.NoError(t, f.ledger.Buy(Msg{Sender: buyer}, id, big.NewInt(3)))
	// 3 * 0.5 truncates to 1
	require.Equal(t, new(big.Int).Add(payBefore, big.NewInt(1)), f.balance(f.pay, seller))

	require.NoError(t, f.ledger.Buy(Msg{Sender: buyer}, id, big.NewInt(6)))
	deal, _ := f.ledger.Deal(id)
	require.Equal(t, big.NewInt(1), deal.RemainingAmount)

	// sub-minimum remainder may only be taken whole
	err := f.ledger.Buy(Msg{Sender: other}, id, big.NewInt(2))
	require.ErrorIs(t, err, ErrPurchaseSize)
	require.NoError(t, f.ledger.Buy(Msg{Sender: other}, id, big.NewInt(1)))

	deal, _ = f.ledger.Deal(id)
	require.Zero(t, deal.RemainingAmount.Sign())
	require.False(t, deal.Open())

	err = f.ledger.Buy(Msg{Sender: other}, id, big.NewInt(1))
	require.ErrorIs(t, err, ErrDealClosed)
	err = f.ledger.Close(Msg{Sender: seller}, id)
	require.ErrorIs(t, err, ErrDealExhausted)
	f.requireConserved(f.token, f.pay)
}

func TestDealLedgerBuyErrors(t *testing.T) {
	f := newFixture(t)
	id := f.createDeal(f.dealParams(0))

	p := f.dealParams(0)
	p.Buyer = other
	restricted := f.createDeal(p)

	p = f.dealParams(0)
	p.Price = e18(500)
	expensive := f.createDeal(p)

	tests := []struct {
		name   string
		sender common.Address
		id     uint64
		amount *big.Int
		value  *big.Int
		err    error
	}{
		{"unknown deal", buyer, 99, e18(1), nil, ErrUnknownDeal},
		{"seller buys", seller, id, e18(1), nil, ErrSellerIsBuyer},
		{"restricted buyer", buyer, restricted, e18(1), nil, ErrRestrictedBuyer},
		{"below minimum", buyer, id, big.NewInt(1), nil, ErrPurchaseSize},
		{"above remaining", buyer, id, e18(11), nil, ErrExceedsRemaining},
		{"insufficient payment", buyer, expensive, e18(3), nil, ErrInsufficientBalance},
		{"value on token payment", buyer, id, e18(1), e18(1), ErrWrongValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.ledger.Buy(Msg{Sender: tt.sender, Value: tt.value}, tt.id, tt.amount)
			require.ErrorIs(t, err, tt.err)
		})
	}

	require.NoError(t, f.ledger.Buy(Msg{Sender: other}, restricted, e18(1)))
	require.Equal(t, e18(1000), f.balance(f.pay, buyer))
	f.requireConserved(f.token, f.pay)
}

func TestDealLedgerBuyAfterMaturity(t *testing.T) {
	f := newFixture(t)
	id := f.createDeal(f.dealParams(0))

	// maturity is informational; only create validates it
	f.clock.Advance(2 * time.Hour)
	require.NoError(t, f.ledger.Buy(Msg{Sender: buyer}, id, e18(1)))
}

func TestDealLedgerBuyRollsBack(t *testing.T) {
	f := newFixture(t)
	id := f.createDeal(f.dealParams(f.now() + 10))

	// the claim can no longer be minted, so the whole purchase reverts
	f.clock.Advance(time.Minute)
	err := f.ledger.Buy(Msg{Sender: buyer}, id, e18(1))
	require.ErrorIs(t, err, ErrFutureTerms)

	require.Equal(t, e18(1000), f.balance(f.pay, buyer))
	require.Equal(t, e18(1000), f.balance(f.pay, seller))
	require.Zero(t, f.world.Allowance(f.token, f.ledger.Address(), f.futures.Address()).Sign())
	deal, _ := f.ledger.Deal(id)
	require.Equal(t, e18(10), deal.RemainingAmount)
	require.Zero(t, f.futures.TotalSupply())
	require.Len(t, f.events(f.ledger.Address()), 1)
	f.requireConserved(f.token, f.pay)
}

func TestDealLedgerClose(t *testing.T) {
	f := newFixture(t)
	id := f.createDeal(f.dealParams(0))
	require.NoError(t, f.ledger.Buy(Msg{Sender: buyer}, id, e18(4)))

	err := f.ledger.Close(Msg{Sender: buyer}, id)
	require.ErrorIs(t, err, ErrNotSeller)

	require.NoError(t, f.ledger.Close(Msg{Sender: seller}, id))
	require.Equal(t, e18(996), f.balance(f.token, seller))
	require.Zero(t, f.balance(f.token, f.ledger.Address()).Sign())

	deal, ok := f.ledger.Deal(id)
	require.True(t, ok)
	require.True(t, deal.Closed)
	require.Zero(t, deal.RemainingAmount.Sign())

	evs := f.events(f.ledger.Address())
	require.Equal(t, DealClosed{ID: id}, evs[len(evs)-1])

	err = f.ledger.Close(Msg{Sender: seller}, id)
	require.ErrorIs(t, err, ErrDealExhausted)
	err = f.ledger.Buy(Msg{Sender: buyer}, id, e18(1))
	require.ErrorIs(t, err, ErrDealClosed)

	err = f.ledger.Close(Msg{Sender: seller}, 42)
	require.ErrorIs(t, err, ErrUnknownDeal)
	f.requireConserved(f.token)
}

func TestDealLedgerNativeAsset(t *testing.T) {
	f := newFixture(t)
	p := f.dealParams(0)
	p.Token = f.weth.Address()

	_, err := f.ledger.Create(Msg{Sender: seller, Value: e18(9)}, p)
	require.ErrorIs(t, err, ErrWrongValue)

	id, err := f.ledger.Create(Msg{Sender: seller, Value: e18(10)}, p)
	require.NoError(t, err)
	require.Equal(t, e18(90), f.world.NativeBalance(seller))
	require.Equal(t, e18(10), f.balance(f.weth, f.ledger.Address()))

	require.NoError(t, f.ledger.Buy(Msg{Sender: buyer}, id, e18(2)))
	require.Equal(t, e18(102), f.world.NativeBalance(buyer))
	require.Zero(t, f.balance(f.weth, buyer).Sign())

	require.NoError(t, f.ledger.Close(Msg{Sender: seller}, id))
	require.Equal(t, e18(98), f.world.NativeBalance(seller))
	require.Zero(t, f.world.TotalSupply(f.weth).Sign())
	f.requireConserved(f.weth)
}

func TestDealLedgerNativePayment(t *testing.T) {
	f := newFixture(t)
	p := f.dealParams(0)
	p.PaymentCurrency = f.weth.Address()
	p.Price = e18(2)
	id := f.createDeal(p)

	err := f.ledger.Buy(Msg{Sender: buyer, Value: e18(3)}, id, e18(1))
	require.ErrorIs(t, err, ErrWrongValue)

	require.NoError(t, f.ledger.Buy(Msg{Sender: buyer, Value: e18(2)}, id, e18(1)))
	require.Equal(t, e18(102), f.world.NativeBalance(seller))
	require.Equal(t, e18(98), f.world.NativeBalance(buyer))
	require.Equal(t, e18(1001), f.balance(f.token, buyer))
}

func TestDealLedgerWithoutWrappedNative(t *testing.T) {
	f := newFixture(t, fixtureOpts{noWeth: true})

	_, err := f.ledger.Create(Msg{Sender: seller, Value: e18(10)}, f.dealParams(0))
	require.ErrorIs(t, err, ErrWrongValue)

	id := f.createDeal(f.dealParams(0))
	err = f.ledger.Buy(Msg{Sender: buyer, Value: e18(1)}, id, e18(1))
	require.ErrorIs(t, err, ErrWrongValue)
	require.NoError(t, f.ledger.Buy(Msg{Sender: buyer}, id, e18(1)))
}

func TestDealLedgerVerboseDialect(t *testing.T) {
	f := newFixture(t, fixtureOpts{dialect: DialectVerbose})
	id := f.createDeal(f.dealParams(0))

	err := f.ledger.Buy(Msg{Sender: seller}, id, e18(1))
	require.EqualError(t, err, "HEC07: Buyer cannot be seller")
	require.True(t, errors.Is(err, ErrSellerIsBuyer))

	err = f.ledger.Close(Msg{Sender: buyer}, id)
	require.EqualError(t, err, "HEC04: Only Seller Can Close")

	p := f.dealParams(0)
	p.Token = f.burn.Address()
	_, err = f.ledger.Create(Msg{Sender: seller}, p)
	require.EqualError(t, err, "HECC: Wrong amount")
	require.Equal(t, CodeTransferMismatch, CodeOf(err))
}

func TestDealLedgerNFTGated(t *testing.T) {
	f := newFixture(t)
	pass := f.world.DeployCollection()
	club := f.world.DeployCollection()

	id, err := f.ledger.CreateNFTGatedDeal(Msg{Sender: seller}, f.dealParams(0), []common.Address{pass.Address(), club.Address()})
	require.NoError(t, err)

	err = f.ledger.Buy(Msg{Sender: buyer}, id, e18(1))
	require.ErrorIs(t, err, ErrRestrictedBuyer)

	f.world.MintCollectible(club, buyer)
	require.NoError(t, f.ledger.Buy(Msg{Sender: buyer}, id, e18(1)))

	open, err := f.ledger.CreateNFTGatedDeal(Msg{Sender: seller}, f.dealParams(0), nil)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Buy(Msg{Sender: buyer}, open, e18(1)))
}

func TestDealLedgerNFTGatedByFutures(t *testing.T) {
	f := newFixture(t)
	id, err := f.ledger.CreateNFTGatedDeal(Msg{Sender: seller}, f.dealParams(0), []common.Address{f.futures.Address()})
	require.NoError(t, err)

	err = f.ledger.Buy(Msg{Sender: buyer}, id, e18(1))
	require.ErrorIs(t, err, ErrRestrictedBuyer)

	_, err = f.futures.CreateNFT(Msg{Sender: other}, buyer, e18(1), f.token.Address(), f.inOneHour())
	require.NoError(t, err)
	require.NoError(t, f.ledger.Buy(Msg{Sender: buyer}, id, e18(1)))
}

func TestDealLedgerDecimalsProbe(t *testing.T) {
	f := newFixture(t, fixtureOpts{decimalsProbe: true})
	bare := f.world.DeployToken(TokenConfig{Symbol: "BARE"})
	f.world.Mint(bare, seller, e18(10))
	require.NoError(t, f.world.Approve(Msg{Sender: seller}, bare, f.ledger.Address(), e18(10)))

	p := f.dealParams(0)
	p.Token = bare.Address()
	_, err := f.ledger.Create(Msg{Sender: seller}, p)
	require.ErrorIs(t, err, ErrNoDecimals)

	f.createDeal(f.dealParams(0))
}
