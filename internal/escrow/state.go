package escrow

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gammazero/deque"
	"gitlab.com/TitanInd/otcescrow/internal/interfaces"
	"gitlab.com/TitanInd/otcescrow/internal/lib"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Msg is the caller context of a contract call
type Msg struct {
	Sender common.Address
	Value  *big.Int
}

func (m Msg) value() *big.Int {
	if m.Value == nil {
		return new(big.Int)
	}
	return m.Value
}

// Log is a committed event together with the contract that emitted it
type Log struct {
	Contract common.Address
	Event    Event
}

// World holds every balance and contract record the escrow contracts act on.
// Calls are applied one at a time; a call that fails leaves no trace.
type World struct {
	mu    lib.Mutex
	clock Clock

	deployer    common.Address
	deployNonce uint64

	native      map[common.Address]*big.Int
	tokens      map[common.Address]*ERC20
	collections map[common.Address]nftBalancer
	registries  map[common.Address]*FuturesRegistry

	logs []Log

	log interfaces.ILogger
}

func NewWorld(clock Clock, log interfaces.ILogger) *World {
	if clock == nil {
		clock = systemClock{}
	}
	return &World{
		mu:          lib.NewMutex(),
		clock:       clock,
		deployer:    common.HexToAddress("0x0000000000000000000000000000000000c0ffee"),
		native:      make(map[common.Address]*big.Int),
		tokens:      make(map[common.Address]*ERC20),
		collections: make(map[common.Address]nftBalancer),
		registries:  make(map[common.Address]*FuturesRegistry),
		log:         log,
	}
}

// Logs returns committed events in commit order
func (w *World) Logs() []Log {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Log, len(w.logs))
	copy(out, w.logs)
	return out
}

// FundNative credits native coin to addr, outside of any contract call
func (w *World) FundNative(addr common.Address, amount *big.Int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.native[addr] = new(big.Int).Add(w.nativeBalance(addr), amount)
}

func (w *World) NativeBalance(addr common.Address) *big.Int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return new(big.Int).Set(w.nativeBalance(addr))
}

func (w *World) nativeBalance(addr common.Address) *big.Int {
	if b, ok := w.native[addr]; ok {
		return b
	}
	return new(big.Int)
}

func (w *World) newAddress() common.Address {
	addr := crypto.CreateAddress(w.deployer, w.deployNonce)
	w.deployNonce++
	return addr
}

func (w *World) execute(fn func(tx *txn) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	tx := &txn{world: w, now: w.clock.Now().Unix()}
	err := fn(tx)
	if err != nil {
		tx.rollback()
		w.log.Debugf("call reverted: %s", err)
		return err
	}
	w.logs = append(w.logs, tx.logs...)
	return nil
}

// txn is a single contract call. Every mutation records its inverse so a revert
// restores the exact prior state.
type txn struct {
	world   *World
	now     int64
	journal deque.Deque[func()]
	logs    []Log
}

func (tx *txn) rollback() {
	for tx.journal.Len() > 0 {
		undo := tx.journal.PopBack()
		undo()
	}
	tx.logs = nil
}

func (tx *txn) emit(contract common.Address, ev Event) {
	tx.logs = append(tx.logs, Log{Contract: contract, Event: ev})
}

func journalSet[K comparable, V any](tx *txn, m map[K]V, k K, v V) {
	old, existed := m[k]
	tx.journal.PushBack(func() {
		if existed {
			m[k] = old
		} else {
			delete(m, k)
		}
	})
	m[k] = v
}

func journalDelete[K comparable, V any](tx *txn, m map[K]V, k K) {
	old, existed := m[k]
	if !existed {
		return
	}
	tx.journal.PushBack(func() { m[k] = old })
	delete(m, k)
}

func journalField[T any](tx *txn, p *T, v T) {
	old := *p
	tx.journal.PushBack(func() { *p = old })
	*p = v
}

func (tx *txn) moveNative(from, to common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	w := tx.world
	fromBal := w.nativeBalance(from)
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	journalSet(tx, w.native, from, new(big.Int).Sub(fromBal, amount))
	journalSet(tx, w.native, to, new(big.Int).Add(w.nativeBalance(to), amount))
	return nil
}

// reverter renders rejections in the dialect of the contract that raises them
type reverter struct {
	dialect  Dialect
	registry bool
}

func (r reverter) revert(code Code) error {
	return &RevertError{Code: code, Reason: r.dialect.render(code, r.registry)}
}

// pullExact moves amount of t from `from` into `to` on behalf of spender and
// rejects tokens whose transfer does not credit exactly amount.
func (tx *txn) pullExact(r reverter, t *ERC20, spender, from, to common.Address, amount *big.Int) error {
	if t.balanceOf(from).Cmp(amount) < 0 {
		return r.revert(CodeInsufficientBalance)
	}
	before := t.balanceOf(to)
	if err := tx.transferFrom(t, spender, from, to, amount); err != nil {
		return err
	}
	delta := new(big.Int).Sub(t.balanceOf(to), before)
	if delta.Cmp(amount) != 0 {
		return r.revert(CodeTransferMismatch)
	}
	return nil
}

// payOut sends amount of t held by `from` to `to`, unwrapping weth into
// native coin when t is the contract's wrapped native token.
func (tx *txn) payOut(weth, t *ERC20, from, to common.Address, amount *big.Int) error {
	if weth != nil && t == weth && t.wrapped {
		return tx.unwrap(t, from, to, amount)
	}
	return tx.transfer(t, from, to, amount)
}
