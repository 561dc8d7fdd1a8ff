package escrow

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/TitanInd/otcescrow/internal/interfaces"
)

// PriceScale is the fixed point unit of Deal.Price: 1e18 means one payment unit per asset unit
var PriceScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

type Deal struct {
	ID              uint64
	Seller          common.Address
	Token           common.Address
	PaymentCurrency common.Address
	RemainingAmount *big.Int
	MinimumPurchase *big.Int
	Price           *big.Int
	Maturity        int64
	UnlockDate      int64
	Buyer           common.Address
	Whitelist       []common.Address
	Closed          bool
}

// Open reports whether the deal still accepts buy and close calls
func (d Deal) Open() bool {
	return !d.Closed && d.RemainingAmount.Sign() > 0
}

type CreateDealParams struct {
	Token           common.Address
	PaymentCurrency common.Address
	Amount          *big.Int
	Min             *big.Int
	Price           *big.Int
	Maturity        int64
	UnlockDate      int64
	Buyer           common.Address
}

type LedgerOptions struct {
	Dialect Dialect
	// DecimalsProbe rejects asset and payment tokens that do not answer decimals(),
	// the fee-on-transfer screen of the earlier contract revision
	DecimalsProbe bool
}

// DealLedger escrows sellers' tokens and fills buy orders against them
type DealLedger struct {
	addr    common.Address
	world   *World
	weth    *ERC20
	futures *FuturesRegistry
	opts    LedgerOptions
	r       reverter

	deals     map[uint64]Deal
	dealCount uint64

	log interfaces.ILogger
}

// DeployDealLedger deploys a ledger settling future-locked purchases through
// futures. weth may be nil on networks without a wrapped native token.
func (w *World) DeployDealLedger(weth *ERC20, futures *FuturesRegistry, opts LedgerOptions, log interfaces.ILogger) *DealLedger {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &DealLedger{
		addr:    w.newAddress(),
		world:   w,
		weth:    weth,
		futures: futures,
		opts:    opts,
		r:       reverter{dialect: opts.Dialect},
		deals:   make(map[uint64]Deal),
		log:     log,
	}
}

func (l *DealLedger) Address() common.Address { return l.addr }

// Deal returns the deal with id; exhausted and closed deals remain queryable
func (l *DealLedger) Deal(id uint64) (Deal, bool) {
	l.world.mu.Lock()
	defer l.world.mu.Unlock()

	d, ok := l.deals[id]
	return d, ok
}

func (l *DealLedger) DealCount() uint64 {
	l.world.mu.Lock()
	defer l.world.mu.Unlock()

	return l.dealCount
}

// Escrowed sums the remaining amount of every open deal denominated in token
func (l *DealLedger) Escrowed(token common.Address) *big.Int {
	l.world.mu.Lock()
	defer l.world.mu.Unlock()

	sum := new(big.Int)
	for _, d := range l.deals {
		if d.Token == token && d.Open() {
			sum.Add(sum, d.RemainingAmount)
		}
	}
	return sum
}

// Create opens a deal selling p.Amount of p.Token, pulled from msg.Sender
func (l *DealLedger) Create(msg Msg, p CreateDealParams) (uint64, error) {
	return l.create(msg, p, nil)
}

// CreateNFTGatedDeal opens a deal only holders of a whitelisted collection may buy from.
// An empty whitelist leaves the deal open to anyone.
func (l *DealLedger) CreateNFTGatedDeal(msg Msg, p CreateDealParams, whitelist []common.Address) (uint64, error) {
	wl := make([]common.Address, len(whitelist))
	copy(wl, whitelist)
	p.Buyer = common.Address{}
	return l.create(msg, p, wl)
}

func (l *DealLedger) create(msg Msg, p CreateDealParams, whitelist []common.Address) (uint64, error) {
	var id uint64
	err := l.world.execute(func(tx *txn) error {
		if p.Maturity <= tx.now {
			return l.r.revert(CodeMaturityInPast)
		}
		if p.Amount.Cmp(p.Min) < 0 {
			return l.r.revert(CodeAmountBelowMinimum)
		}
		if p.Min.Sign() <= 0 || p.Price.Sign() <= 0 || payment(p.Min, p.Price).Sign() == 0 {
			return l.r.revert(CodeNonPositiveTerms)
		}

		if err := l.escrowAsset(tx, msg, p); err != nil {
			return err
		}

		id = l.dealCount
		deal := Deal{
			ID:              id,
			Seller:          msg.Sender,
			Token:           p.Token,
			PaymentCurrency: p.PaymentCurrency,
			RemainingAmount: new(big.Int).Set(p.Amount),
			MinimumPurchase: new(big.Int).Set(p.Min),
			Price:           new(big.Int).Set(p.Price),
			Maturity:        p.Maturity,
			UnlockDate:      p.UnlockDate,
			Buyer:           p.Buyer,
			Whitelist:       whitelist,
		}
		journalSet(tx, l.deals, id, deal)
		journalField(tx, &l.dealCount, l.dealCount+1)

		tx.emit(l.addr, NewDeal{
			ID:              id,
			Seller:          deal.Seller,
			Token:           deal.Token,
			PaymentCurrency: deal.PaymentCurrency,
			RemainingAmount: deal.RemainingAmount,
			MinimumPurchase: deal.MinimumPurchase,
			Price:           deal.Price,
			Maturity:        deal.Maturity,
			UnlockDate:      deal.UnlockDate,
			Buyer:           deal.Buyer,
			Whitelist:       deal.Whitelist,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	l.log.Debugf("deal %d created by %s, amount %s", id, msg.Sender.Hex(), p.Amount)
	return id, nil
}

func (l *DealLedger) escrowAsset(tx *txn, msg Msg, p CreateDealParams) error {
	value := msg.value()
	if l.isNative(p.Token) {
		if value.Cmp(p.Amount) != 0 {
			return l.r.revert(CodeWrongValue)
		}
		if err := tx.moveNative(msg.Sender, l.addr, value); err != nil {
			return l.r.revert(CodeInsufficientBalance)
		}
		return tx.wrap(l.weth, l.addr, value)
	}
	if value.Sign() != 0 {
		return l.r.revert(CodeWrongValue)
	}

	asset, err := l.token(p.Token)
	if err != nil {
		return err
	}
	if l.opts.DecimalsProbe {
		if _, ok := asset.Decimals(); !ok {
			return l.r.revert(CodeNoDecimals)
		}
		if pay, ok := tx.world.tokens[p.PaymentCurrency]; ok {
			if _, ok := pay.Decimals(); !ok {
				return l.r.revert(CodeNoDecimals)
			}
		}
	}
	return tx.pullExact(l.r, asset, l.addr, msg.Sender, l.addr, p.Amount)
}

// Buy fills amount of deal id for msg.Sender
func (l *DealLedger) Buy(msg Msg, id uint64, amount *big.Int) error {
	var remaining *big.Int
	err := l.world.execute(func(tx *txn) error {
		deal, ok := l.deals[id]
		if !ok {
			return l.r.revert(CodeUnknownDeal)
		}
		if msg.Sender == deal.Seller {
			return l.r.revert(CodeSellerIsBuyer)
		}
		if !deal.Open() {
			return l.r.revert(CodeDealClosed)
		}
		if !l.mayBuy(tx, deal, msg.Sender) {
			return l.r.revert(CodeRestrictedBuyer)
		}
		if amount.Cmp(deal.MinimumPurchase) < 0 && amount.Cmp(deal.RemainingAmount) != 0 {
			return l.r.revert(CodePurchaseSize)
		}
		if amount.Cmp(deal.RemainingAmount) > 0 {
			return l.r.revert(CodeExceedsRemaining)
		}

		cost := payment(amount, deal.Price)
		if err := l.collectPayment(tx, msg, deal, cost); err != nil {
			return err
		}
		if err := l.settle(tx, deal, msg.Sender, amount); err != nil {
			return err
		}

		remaining = new(big.Int).Sub(deal.RemainingAmount, amount)
		deal.RemainingAmount = remaining
		journalSet(tx, l.deals, id, deal)

		tx.emit(l.addr, TokensBought{ID: id, Amount: new(big.Int).Set(amount), RemainingAmount: remaining})
		return nil
	})
	if err != nil {
		return err
	}
	l.log.Debugf("deal %d: %s bought %s, remaining %s", id, msg.Sender.Hex(), amount, remaining)
	return nil
}

func (l *DealLedger) mayBuy(tx *txn, deal Deal, buyer common.Address) bool {
	if len(deal.Whitelist) > 0 {
		return tx.world.holdsAny(buyer, deal.Whitelist)
	}
	return deal.Buyer == (common.Address{}) || deal.Buyer == buyer
}

func (l *DealLedger) collectPayment(tx *txn, msg Msg, deal Deal, cost *big.Int) error {
	value := msg.value()
	if l.isNative(deal.PaymentCurrency) {
		if value.Cmp(cost) != 0 {
			return l.r.revert(CodeWrongValue)
		}
		// wrapped on receipt and unwrapped to the seller in the same call
		if err := tx.moveNative(msg.Sender, deal.Seller, cost); err != nil {
			return l.r.revert(CodeInsufficientBalance)
		}
		return nil
	}
	if value.Sign() != 0 {
		return l.r.revert(CodeWrongValue)
	}

	pay, err := l.token(deal.PaymentCurrency)
	if err != nil {
		return err
	}
	if pay.balanceOf(msg.Sender).Cmp(cost) < 0 {
		return l.r.revert(CodeInsufficientBalance)
	}
	return tx.transferFrom(pay, l.addr, msg.Sender, deal.Seller, cost)
}

func (l *DealLedger) settle(tx *txn, deal Deal, buyer common.Address, amount *big.Int) error {
	asset, err := l.token(deal.Token)
	if err != nil {
		return err
	}
	if deal.UnlockDate == 0 {
		return tx.payOut(l.weth, asset, l.addr, buyer, amount)
	}
	tx.approve(asset, l.addr, l.futures.addr, amount)
	_, err = l.futures.createNFT(tx, l.addr, buyer, amount, asset.addr, deal.UnlockDate)
	return err
}

// Close returns the unsold remainder of deal id to its seller
func (l *DealLedger) Close(msg Msg, id uint64) error {
	err := l.world.execute(func(tx *txn) error {
		deal, ok := l.deals[id]
		if !ok {
			return l.r.revert(CodeUnknownDeal)
		}
		if msg.Sender != deal.Seller {
			return l.r.revert(CodeNotSeller)
		}
		if !deal.Open() {
			return l.r.revert(CodeDealExhausted)
		}

		asset, err := l.token(deal.Token)
		if err != nil {
			return err
		}
		if err := tx.payOut(l.weth, asset, l.addr, deal.Seller, deal.RemainingAmount); err != nil {
			return err
		}

		deal.RemainingAmount = new(big.Int)
		deal.Closed = true
		journalSet(tx, l.deals, id, deal)

		tx.emit(l.addr, DealClosed{ID: id})
		return nil
	})
	if err != nil {
		return err
	}
	l.log.Debugf("deal %d closed", id)
	return nil
}

func (l *DealLedger) isNative(token common.Address) bool {
	return l.weth != nil && token == l.weth.addr
}

func (l *DealLedger) token(addr common.Address) (*ERC20, error) {
	t, ok := l.world.tokens[addr]
	if !ok {
		return nil, l.r.revert(CodeInsufficientBalance)
	}
	return t, nil
}

// payment is the truncated cost of amount at a 1e18-scaled price
func payment(amount, price *big.Int) *big.Int {
	p := new(big.Int).Mul(amount, price)
	return p.Div(p, PriceScale)
}
