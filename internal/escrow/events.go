package escrow

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type Event interface {
	EventName() string
}

type NewDeal struct {
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
}

type TokensBought struct {
	ID              uint64
	Amount          *big.Int
	RemainingAmount *big.Int
}

type DealClosed struct {
	ID uint64
}

type NFTCreated struct {
	ID         uint64
	Holder     common.Address
	Amount     *big.Int
	Token      common.Address
	UnlockDate int64
}

type NFTRedeemed struct {
	ID         uint64
	Holder     common.Address
	Amount     *big.Int
	Token      common.Address
	UnlockDate int64
}

type Transfer struct {
	From common.Address
	To   common.Address
	ID   uint64
}

type Approval struct {
	Owner    common.Address
	Approved common.Address
	ID       uint64
}

type BatchMinted struct {
	Identifier *big.Int
}

func (NewDeal) EventName() string      { return "NewDeal" }
func (TokensBought) EventName() string { return "TokensBought" }
func (DealClosed) EventName() string   { return "DealClosed" }
func (NFTCreated) EventName() string   { return "NFTCreated" }
func (NFTRedeemed) EventName() string  { return "NFTRedeemed" }
func (Transfer) EventName() string     { return "Transfer" }
func (Approval) EventName() string     { return "Approval" }
func (BatchMinted) EventName() string  { return "BatchMinted" }
