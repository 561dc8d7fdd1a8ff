package escrow

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/TitanInd/otcescrow/internal/interfaces"
)

// Future is a time-locked claim on an escrowed token amount. A zero Amount
// means the claim was redeemed or never existed.
type Future struct {
	ID         uint64
	Amount     *big.Int
	Token      common.Address
	UnlockDate int64
}

func (f Future) Exists() bool {
	return f.Amount != nil && f.Amount.Sign() > 0
}

type RegistryOptions struct {
	// WrappedNative claims are paid out as native coin on redemption; nil disables it
	WrappedNative *ERC20
	Admin         common.Address
	BaseURI       string
	// NonTransferable binds every claim to the holder it was minted to
	NonTransferable bool
	Dialect         Dialect
}

type approvalKey struct {
	owner    common.Address
	operator common.Address
}

// FuturesRegistry custodies tokens behind transferable NFT claims
type FuturesRegistry struct {
	addr  common.Address
	world *World
	opts  RegistryOptions
	r     reverter

	futures    map[uint64]Future
	owners     map[uint64]common.Address
	owned      map[common.Address][]uint64
	ownedIndex map[uint64]int
	approvals  map[uint64]common.Address
	operators  map[approvalKey]bool

	lastID      uint64
	totalSupply uint64
	baseURI     string
	uriSet      bool

	log interfaces.ILogger
}

func (w *World) DeployFuturesRegistry(opts RegistryOptions, log interfaces.ILogger) *FuturesRegistry {
	w.mu.Lock()
	defer w.mu.Unlock()

	r := &FuturesRegistry{
		addr:       w.newAddress(),
		world:      w,
		opts:       opts,
		r:          reverter{dialect: opts.Dialect, registry: true},
		futures:    make(map[uint64]Future),
		owners:     make(map[uint64]common.Address),
		owned:      make(map[common.Address][]uint64),
		ownedIndex: make(map[uint64]int),
		approvals:  make(map[uint64]common.Address),
		operators:  make(map[approvalKey]bool),
		baseURI:    opts.BaseURI,
		uriSet:     opts.BaseURI != "",
		log:        log,
	}
	w.registries[r.addr] = r
	w.collections[r.addr] = r
	return r
}

func (r *FuturesRegistry) Address() common.Address { return r.addr }

// WrappedNative returns the wrapped native token, nil on networks without one
func (r *FuturesRegistry) WrappedNative() *ERC20 { return r.opts.WrappedNative }

// CreateNFT pulls amount of token from the caller and mints a claim on it to holder
func (r *FuturesRegistry) CreateNFT(msg Msg, holder common.Address, amount *big.Int, token common.Address, unlockDate int64) (uint64, error) {
	var id uint64
	err := r.world.execute(func(tx *txn) error {
		if msg.value().Sign() != 0 {
			return r.r.revert(CodeWrongValue)
		}
		var err error
		id, err = r.createNFT(tx, msg.Sender, holder, amount, token, unlockDate)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *FuturesRegistry) createNFT(tx *txn, caller, holder common.Address, amount *big.Int, token common.Address, unlockDate int64) (uint64, error) {
	if amount.Sign() <= 0 {
		return 0, r.r.revert(CodeFutureAmount)
	}
	if token == (common.Address{}) || unlockDate <= tx.now {
		return 0, r.r.revert(CodeFutureTerms)
	}
	if holder == (common.Address{}) {
		return 0, r.r.revert(CodeMintToZero)
	}
	t, ok := tx.world.tokens[token]
	if !ok {
		return 0, r.r.revert(CodeInsufficientBalance)
	}
	if err := tx.pullExact(r.r, t, r.addr, caller, r.addr, amount); err != nil {
		return 0, err
	}
	return r.mintRecord(tx, holder, amount, token, unlockDate), nil
}

// mintRecord issues a claim against a balance the registry already holds
func (r *FuturesRegistry) mintRecord(tx *txn, holder common.Address, amount *big.Int, token common.Address, unlockDate int64) uint64 {
	id := r.lastID + 1
	journalField(tx, &r.lastID, id)
	journalSet(tx, r.futures, id, Future{
		ID:         id,
		Amount:     new(big.Int).Set(amount),
		Token:      token,
		UnlockDate: unlockDate,
	})
	r.mint(tx, holder, id)

	tx.emit(r.addr, NFTCreated{ID: id, Holder: holder, Amount: new(big.Int).Set(amount), Token: token, UnlockDate: unlockDate})
	return id
}

// RedeemNFT pays the claim out to its owner once it is unlocked and burns it
func (r *FuturesRegistry) RedeemNFT(msg Msg, id uint64) error {
	var f Future
	err := r.world.execute(func(tx *txn) error {
		f = r.futures[id]
		if !f.Exists() {
			return r.r.revert(CodeNonexistentToken)
		}
		if r.owners[id] != msg.Sender {
			return r.r.revert(CodeNotOwner)
		}
		if tx.now < f.UnlockDate {
			return r.r.revert(CodeNotUnlocked)
		}

		journalSet(tx, r.futures, id, Future{ID: id, Amount: new(big.Int)})
		r.burn(tx, msg.Sender, id)

		t, ok := tx.world.tokens[f.Token]
		if !ok {
			return r.r.revert(CodeInsufficientBalance)
		}
		if err := tx.payOut(r.opts.WrappedNative, t, r.addr, msg.Sender, f.Amount); err != nil {
			return err
		}

		tx.emit(r.addr, NFTRedeemed{ID: id, Holder: msg.Sender, Amount: f.Amount, Token: f.Token, UnlockDate: f.UnlockDate})
		tx.emit(r.addr, Transfer{From: msg.Sender, To: common.Address{}, ID: id})
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Debugf("future %d redeemed by %s, amount %s", id, msg.Sender.Hex(), f.Amount)
	return nil
}

func (r *FuturesRegistry) mint(tx *txn, to common.Address, id uint64) {
	journalSet(tx, r.owners, id, to)
	r.addOwned(tx, to, id)
	journalField(tx, &r.totalSupply, r.totalSupply+1)
	tx.emit(r.addr, Transfer{From: common.Address{}, To: to, ID: id})
}

func (r *FuturesRegistry) burn(tx *txn, owner common.Address, id uint64) {
	journalDelete(tx, r.approvals, id)
	journalDelete(tx, r.owners, id)
	r.removeOwned(tx, owner, id)
	journalField(tx, &r.totalSupply, r.totalSupply-1)
}

// owned slices are replaced, never mutated in place, so the journal can restore them
func (r *FuturesRegistry) addOwned(tx *txn, owner common.Address, id uint64) {
	old := r.owned[owner]
	ids := make([]uint64, len(old), len(old)+1)
	copy(ids, old)
	ids = append(ids, id)

	journalSet(tx, r.ownedIndex, id, len(old))
	journalSet(tx, r.owned, owner, ids)
}

func (r *FuturesRegistry) removeOwned(tx *txn, owner common.Address, id uint64) {
	old := r.owned[owner]
	idx := r.ownedIndex[id]
	last := len(old) - 1

	ids := make([]uint64, last)
	copy(ids, old[:last])
	if idx != last {
		moved := old[last]
		ids[idx] = moved
		journalSet(tx, r.ownedIndex, moved, idx)
	}
	journalDelete(tx, r.ownedIndex, id)
	if len(ids) == 0 {
		journalDelete(tx, r.owned, owner)
		return
	}
	journalSet(tx, r.owned, owner, ids)
}

// Future returns the claim record; redeemed claims come back zeroed
func (r *FuturesRegistry) Future(id uint64) Future {
	r.world.mu.Lock()
	defer r.world.mu.Unlock()

	f, ok := r.futures[id]
	if !ok || !f.Exists() {
		return Future{ID: id, Amount: new(big.Int)}
	}
	f.Amount = new(big.Int).Set(f.Amount)
	return f
}

func (r *FuturesRegistry) LastID() uint64 {
	r.world.mu.Lock()
	defer r.world.mu.Unlock()

	return r.lastID
}

func (r *FuturesRegistry) OwnerOf(id uint64) (common.Address, error) {
	r.world.mu.Lock()
	defer r.world.mu.Unlock()

	owner, ok := r.owners[id]
	if !ok {
		return common.Address{}, r.r.revert(CodeNonexistentToken)
	}
	return owner, nil
}

func (r *FuturesRegistry) BalanceOf(owner common.Address) uint64 {
	r.world.mu.Lock()
	defer r.world.mu.Unlock()

	return r.nftBalanceOf(owner)
}

func (r *FuturesRegistry) nftBalanceOf(owner common.Address) uint64 {
	return uint64(len(r.owned[owner]))
}

func (r *FuturesRegistry) TokenOfOwnerByIndex(owner common.Address, index uint64) (uint64, error) {
	r.world.mu.Lock()
	defer r.world.mu.Unlock()

	ids := r.owned[owner]
	if index >= uint64(len(ids)) {
		return 0, r.r.revert(CodeOwnerIndex)
	}
	return ids[index], nil
}

func (r *FuturesRegistry) TotalSupply() uint64 {
	r.world.mu.Lock()
	defer r.world.mu.Unlock()

	return r.totalSupply
}

// Locked sums the unredeemed claims owner holds on token
func (r *FuturesRegistry) Locked(owner, token common.Address) *big.Int {
	r.world.mu.Lock()
	defer r.world.mu.Unlock()

	sum := new(big.Int)
	for _, id := range r.owned[owner] {
		if f := r.futures[id]; f.Token == token {
			sum.Add(sum, f.Amount)
		}
	}
	return sum
}

// Escrowed sums every unredeemed claim on token
func (r *FuturesRegistry) Escrowed(token common.Address) *big.Int {
	r.world.mu.Lock()
	defer r.world.mu.Unlock()

	sum := new(big.Int)
	for _, f := range r.futures {
		if f.Exists() && f.Token == token {
			sum.Add(sum, f.Amount)
		}
	}
	return sum
}

func (r *FuturesRegistry) Approve(msg Msg, to common.Address, id uint64) error {
	return r.world.execute(func(tx *txn) error {
		if r.opts.NonTransferable {
			return r.r.revert(CodeNotTransferable)
		}
		owner, ok := r.owners[id]
		if !ok {
			return r.r.revert(CodeNonexistentToken)
		}
		if to == owner {
			return r.r.revert(CodeApprovalToOwner)
		}
		if msg.Sender != owner && !r.operators[approvalKey{owner, msg.Sender}] {
			return r.r.revert(CodeApproveCaller)
		}
		journalSet(tx, r.approvals, id, to)
		tx.emit(r.addr, Approval{Owner: owner, Approved: to, ID: id})
		return nil
	})
}

func (r *FuturesRegistry) GetApproved(id uint64) (common.Address, error) {
	r.world.mu.Lock()
	defer r.world.mu.Unlock()

	if _, ok := r.owners[id]; !ok {
		return common.Address{}, r.r.revert(CodeNonexistentToken)
	}
	return r.approvals[id], nil
}

func (r *FuturesRegistry) SetApprovalForAll(msg Msg, operator common.Address, approved bool) error {
	return r.world.execute(func(tx *txn) error {
		if r.opts.NonTransferable {
			return r.r.revert(CodeNotTransferable)
		}
		if operator == msg.Sender {
			return r.r.revert(CodeApproveCaller)
		}
		journalSet(tx, r.operators, approvalKey{msg.Sender, operator}, approved)
		return nil
	})
}

func (r *FuturesRegistry) IsApprovedForAll(owner, operator common.Address) bool {
	r.world.mu.Lock()
	defer r.world.mu.Unlock()

	return r.operators[approvalKey{owner, operator}]
}

// TransferFrom moves claim id from `from` to `to`; the claim keeps its amount and unlock date
func (r *FuturesRegistry) TransferFrom(msg Msg, from, to common.Address, id uint64) error {
	err := r.world.execute(func(tx *txn) error {
		if r.opts.NonTransferable {
			return r.r.revert(CodeNotTransferable)
		}
		owner, ok := r.owners[id]
		if !ok {
			return r.r.revert(CodeNonexistentToken)
		}
		if msg.Sender != owner && r.approvals[id] != msg.Sender && !r.operators[approvalKey{owner, msg.Sender}] {
			return r.r.revert(CodeTransferCaller)
		}
		if owner != from {
			return r.r.revert(CodeTransferFromIncorrectOwner)
		}
		if to == (common.Address{}) {
			return r.r.revert(CodeTransferToZero)
		}

		journalDelete(tx, r.approvals, id)
		r.removeOwned(tx, from, id)
		r.addOwned(tx, to, id)
		journalSet(tx, r.owners, id, to)

		tx.emit(r.addr, Transfer{From: from, To: to, ID: id})
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Debugf("future %d transferred %s -> %s", id, from.Hex(), to.Hex())
	return nil
}

// SafeTransferFrom behaves as TransferFrom; every account in the world accepts claims
func (r *FuturesRegistry) SafeTransferFrom(msg Msg, from, to common.Address, id uint64) error {
	return r.TransferFrom(msg, from, to, id)
}

// UpdateBaseURI sets the metadata base URI, once
func (r *FuturesRegistry) UpdateBaseURI(msg Msg, uri string) error {
	return r.world.execute(func(tx *txn) error {
		if msg.Sender != r.opts.Admin {
			return r.r.revert(CodeNotAdmin)
		}
		if r.uriSet {
			return r.r.revert(CodeURISet)
		}
		journalField(tx, &r.baseURI, uri)
		journalField(tx, &r.uriSet, true)
		return nil
	})
}

func (r *FuturesRegistry) TokenURI(id uint64) (string, error) {
	r.world.mu.Lock()
	defer r.world.mu.Unlock()

	if _, ok := r.owners[id]; !ok {
		return "", r.r.revert(CodeNonexistentToken)
	}
	if r.baseURI == "" {
		return "", nil
	}
	return r.baseURI + strconv.FormatUint(id, 10), nil
}
