package escrow

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"gitlab.com/TitanInd/otcescrow/internal/lib"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var (
	seller = common.HexToAddress("0x1000000000000000000000000000000000000001")
	buyer  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	other  = common.HexToAddress("0x3000000000000000000000000000000000000003")
	admin  = common.HexToAddress("0x4000000000000000000000000000000000000004")
)

func e18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), PriceScale)
}

type fixture struct {
	t       *testing.T
	clock   *fakeClock
	world   *World
	weth    *ERC20
	token   *ERC20
	pay     *ERC20
	burn    *ERC20
	futures *FuturesRegistry
	ledger  *DealLedger
	minter  *BatchMinter
}

type fixtureOpts struct {
	dialect         Dialect
	noWeth          bool
	nonTransferable bool
	decimalsProbe   bool
}

func newFixture(t *testing.T, opts ...fixtureOpts) *fixture {
	var o fixtureOpts
	if len(opts) > 0 {
		o = opts[0]
	}
	log := lib.NewTestLogger()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	w := NewWorld(clock, log)

	decimals := uint8(18)
	f := &fixture{t: t, clock: clock, world: w}
	if !o.noWeth {
		f.weth = w.DeployWrappedNative("WETH")
	}
	f.token = w.DeployToken(TokenConfig{Symbol: "TKN", Decimals: &decimals})
	f.pay = w.DeployToken(TokenConfig{Symbol: "USD", Decimals: &decimals})
	f.burn = w.DeployToken(TokenConfig{Symbol: "BRN", Decimals: &decimals, FeeBps: 100})

	f.futures = w.DeployFuturesRegistry(RegistryOptions{
		WrappedNative:   f.weth,
		Admin:           admin,
		NonTransferable: o.nonTransferable,
		Dialect:         o.dialect,
	}, log)
	f.ledger = w.DeployDealLedger(f.weth, f.futures, LedgerOptions{Dialect: o.dialect, DecimalsProbe: o.decimalsProbe}, log)
	f.minter = w.DeployBatchMinter(log)

	for _, acc := range []common.Address{seller, buyer, other} {
		w.FundNative(acc, e18(100))
		for _, tkn := range []*ERC20{f.token, f.pay, f.burn} {
			w.Mint(tkn, acc, e18(1000))
			require.NoError(t, w.Approve(Msg{Sender: acc}, tkn, f.ledger.Address(), e18(1000)))
			require.NoError(t, w.Approve(Msg{Sender: acc}, tkn, f.futures.Address(), e18(1000)))
			require.NoError(t, w.Approve(Msg{Sender: acc}, tkn, f.minter.Address(), e18(1000)))
		}
	}
	return f
}

func (f *fixture) now() int64 { return f.clock.now.Unix() }

func (f *fixture) inOneHour() int64 { return f.now() + int64(time.Hour/time.Second) }

func (f *fixture) createDeal(p CreateDealParams) uint64 {
	id, err := f.ledger.Create(Msg{Sender: seller}, p)
	require.NoError(f.t, err)
	return id
}

func (f *fixture) dealParams(unlockDate int64) CreateDealParams {
	return CreateDealParams{
		Token:           f.token.Address(),
		PaymentCurrency: f.pay.Address(),
		Amount:          e18(10),
		Min:             e18(1),
		Price:           e18(1),
		Maturity:        f.inOneHour(),
		UnlockDate:      unlockDate,
	}
}

func (f *fixture) balance(t *ERC20, owner common.Address) *big.Int {
	return f.world.BalanceOf(t, owner)
}

// requireConserved checks that the ledger and the registry hold exactly what they account for
func (f *fixture) requireConserved(tokens ...*ERC20) {
	for _, tkn := range tokens {
		require.Equal(f.t, f.ledger.Escrowed(tkn.Address()).String(), f.balance(tkn, f.ledger.Address()).String(), "ledger %s", tkn.Symbol())
		require.Equal(f.t, f.futures.Escrowed(tkn.Address()).String(), f.balance(tkn, f.futures.Address()).String(), "registry %s", tkn.Symbol())
	}
}

func (f *fixture) events(contract common.Address) []Event {
	var out []Event
	for _, l := range f.world.Logs() {
		if l.Contract == contract {
			out = append(out, l.Event)
		}
	}
	return out
}
