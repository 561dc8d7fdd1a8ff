package escrow

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const feeDenominator = 10_000

type TokenConfig struct {
	Symbol string
	// Decimals is nil for tokens that do not implement decimals()
	Decimals *uint8
	// FeeBps is burned from every transfer, as deflationary tokens do
	FeeBps uint64
}

type allowanceKey struct {
	owner   common.Address
	spender common.Address
}

// ERC20 is a fungible token living in the world
type ERC20 struct {
	addr     common.Address
	symbol   string
	decimals *uint8
	feeBps   uint64
	wrapped  bool

	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[allowanceKey]*big.Int
}

func (t *ERC20) Address() common.Address { return t.addr }
func (t *ERC20) Symbol() string          { return t.symbol }

func (t *ERC20) Decimals() (uint8, bool) {
	if t.decimals == nil {
		return 0, false
	}
	return *t.decimals, true
}

func (t *ERC20) balanceOf(owner common.Address) *big.Int {
	if b, ok := t.balances[owner]; ok {
		return b
	}
	return new(big.Int)
}

func (t *ERC20) allowance(owner, spender common.Address) *big.Int {
	if a, ok := t.allowances[allowanceKey{owner, spender}]; ok {
		return a
	}
	return new(big.Int)
}

func (w *World) DeployToken(cfg TokenConfig) *ERC20 {
	return w.deployToken(cfg, false)
}

// DeployWrappedNative deploys a WETH-style token backed 1:1 by native coin it holds
func (w *World) DeployWrappedNative(symbol string) *ERC20 {
	decimals := uint8(18)
	return w.deployToken(TokenConfig{Symbol: symbol, Decimals: &decimals}, true)
}

func (w *World) deployToken(cfg TokenConfig, wrapped bool) *ERC20 {
	w.mu.Lock()
	defer w.mu.Unlock()

	t := &ERC20{
		addr:        w.newAddress(),
		symbol:      cfg.Symbol,
		decimals:    cfg.Decimals,
		feeBps:      cfg.FeeBps,
		wrapped:     wrapped,
		totalSupply: new(big.Int),
		balances:    make(map[common.Address]*big.Int),
		allowances:  make(map[allowanceKey]*big.Int),
	}
	w.tokens[t.addr] = t
	return t
}

// Token returns the token deployed at addr
func (w *World) Token(addr common.Address) (*ERC20, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, ok := w.tokens[addr]
	return t, ok
}

// Mint creates supply out of thin air, used to seed balances
func (w *World) Mint(t *ERC20, to common.Address, amount *big.Int) {
	_ = w.execute(func(tx *txn) error {
		journalSet(tx, t.balances, to, new(big.Int).Add(t.balanceOf(to), amount))
		journalField(tx, &t.totalSupply, new(big.Int).Add(t.totalSupply, amount))
		return nil
	})
}

func (w *World) BalanceOf(t *ERC20, owner common.Address) *big.Int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return new(big.Int).Set(t.balanceOf(owner))
}

func (w *World) TotalSupply(t *ERC20) *big.Int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return new(big.Int).Set(t.totalSupply)
}

func (w *World) Allowance(t *ERC20, owner, spender common.Address) *big.Int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return new(big.Int).Set(t.allowance(owner, spender))
}

func (w *World) Approve(msg Msg, t *ERC20, spender common.Address, amount *big.Int) error {
	return w.execute(func(tx *txn) error {
		tx.approve(t, msg.Sender, spender, amount)
		return nil
	})
}

func (w *World) Transfer(msg Msg, t *ERC20, to common.Address, amount *big.Int) error {
	return w.execute(func(tx *txn) error {
		return tx.transfer(t, msg.Sender, to, amount)
	})
}

// Deposit wraps msg.Value of native coin into t
func (w *World) Deposit(msg Msg, t *ERC20) error {
	return w.execute(func(tx *txn) error {
		return tx.wrap(t, msg.Sender, msg.value())
	})
}

// Withdraw unwraps amount of t back to native coin
func (w *World) Withdraw(msg Msg, t *ERC20, amount *big.Int) error {
	return w.execute(func(tx *txn) error {
		return tx.unwrap(t, msg.Sender, msg.Sender, amount)
	})
}

func (tx *txn) approve(t *ERC20, owner, spender common.Address, amount *big.Int) {
	journalSet(tx, t.allowances, allowanceKey{owner, spender}, new(big.Int).Set(amount))
}

func (tx *txn) transfer(t *ERC20, from, to common.Address, amount *big.Int) error {
	fromBal := t.balanceOf(from)
	if fromBal.Cmp(amount) < 0 {
		return ErrTokenBalance
	}
	fee := new(big.Int)
	if t.feeBps > 0 {
		fee.Mul(amount, new(big.Int).SetUint64(t.feeBps))
		fee.Div(fee, big.NewInt(feeDenominator))
	}
	received := new(big.Int).Sub(amount, fee)

	journalSet(tx, t.balances, from, new(big.Int).Sub(fromBal, amount))
	journalSet(tx, t.balances, to, new(big.Int).Add(t.balanceOf(to), received))
	if fee.Sign() > 0 {
		journalField(tx, &t.totalSupply, new(big.Int).Sub(t.totalSupply, fee))
	}
	return nil
}

func (tx *txn) transferFrom(t *ERC20, spender, from, to common.Address, amount *big.Int) error {
	if spender != from {
		allowed := t.allowance(from, spender)
		if allowed.Cmp(amount) < 0 {
			return ErrInsufficientAllowance
		}
		tx.approve(t, from, spender, new(big.Int).Sub(allowed, amount))
	}
	return tx.transfer(t, from, to, amount)
}

func (tx *txn) wrap(t *ERC20, holder common.Address, amount *big.Int) error {
	if err := tx.moveNative(holder, t.addr, amount); err != nil {
		return err
	}
	journalSet(tx, t.balances, holder, new(big.Int).Add(t.balanceOf(holder), amount))
	journalField(tx, &t.totalSupply, new(big.Int).Add(t.totalSupply, amount))
	return nil
}

func (tx *txn) unwrap(t *ERC20, holder, to common.Address, amount *big.Int) error {
	bal := t.balanceOf(holder)
	if bal.Cmp(amount) < 0 {
		return ErrTokenBalance
	}
	journalSet(tx, t.balances, holder, new(big.Int).Sub(bal, amount))
	journalField(tx, &t.totalSupply, new(big.Int).Sub(t.totalSupply, amount))
	return tx.moveNative(t.addr, to, amount)
}

type nftBalancer interface {
	nftBalanceOf(owner common.Address) uint64
}

// Collection is a plain NFT collection, used to gate deals
type Collection struct {
	addr     common.Address
	nextID   uint64
	balances map[common.Address]uint64
}

func (c *Collection) Address() common.Address { return c.addr }

func (c *Collection) nftBalanceOf(owner common.Address) uint64 {
	return c.balances[owner]
}

func (w *World) DeployCollection() *Collection {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := &Collection{addr: w.newAddress(), balances: make(map[common.Address]uint64)}
	w.collections[c.addr] = c
	return c
}

func (w *World) MintCollectible(c *Collection, to common.Address) uint64 {
	var id uint64
	_ = w.execute(func(tx *txn) error {
		journalField(tx, &c.nextID, c.nextID+1)
		id = c.nextID
		journalSet(tx, c.balances, to, c.balances[to]+1)
		return nil
	})
	return id
}

// holdsAny reports whether owner holds a token of any listed collection
func (w *World) holdsAny(owner common.Address, collections []common.Address) bool {
	for _, addr := range collections {
		c, ok := w.collections[addr]
		if ok && c.nftBalanceOf(owner) > 0 {
			return true
		}
	}
	return false
}
