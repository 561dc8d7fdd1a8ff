package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type EventMapper func(types.Log) (interface{}, error)

type LedgerNewDeal struct {
	Id              *big.Int
	Seller          common.Address
	Token           common.Address
	PaymentCurrency common.Address
	RemainingAmount *big.Int
	MinimumPurchase *big.Int
	Price           *big.Int
	Maturity        *big.Int
	UnlockDate      *big.Int
	Buyer           common.Address
	Raw             types.Log
}

type LedgerTokensBought struct {
	Id              *big.Int
	Amount          *big.Int
	RemainingAmount *big.Int
	Raw             types.Log
}

type LedgerDealClosed struct {
	Id  *big.Int
	Raw types.Log
}

type FuturesNFTCreated struct {
	Id         *big.Int
	Holder     common.Address
	Amount     *big.Int
	Token      common.Address
	UnlockDate *big.Int
	Raw        types.Log
}

type FuturesNFTRedeemed struct {
	Id         *big.Int
	Holder     common.Address
	Amount     *big.Int
	Token      common.Address
	UnlockDate *big.Int
	Raw        types.Log
}

type FuturesTransfer struct {
	From    common.Address
	To      common.Address
	TokenId *big.Int
	Raw     types.Log
}

type MinterBatchMinted struct {
	MintType *big.Int
	Raw      types.Log
}

func dealLedgerEventFactory(name string) interface{} {
	switch name {
	case "NewDeal":
		return new(LedgerNewDeal)
	case "TokensBought":
		return new(LedgerTokensBought)
	case "DealClosed":
		return new(LedgerDealClosed)
	default:
		return nil
	}
}

func futuresEventFactory(name string) interface{} {
	switch name {
	case "NFTCreated":
		return new(FuturesNFTCreated)
	case "NFTRedeemed":
		return new(FuturesNFTRedeemed)
	case "Transfer":
		return new(FuturesTransfer)
	default:
		return nil
	}
}

func batchMinterEventFactory(name string) interface{} {
	switch name {
	case "BatchMinted":
		return new(MinterBatchMinted)
	default:
		return nil
	}
}

func DealLedgerEventMapper() EventMapper {
	return CreateEventMapper(dealLedgerEventFactory, DealLedgerABI)
}

func FuturesEventMapper() EventMapper {
	return CreateEventMapper(futuresEventFactory, FuturesABI)
}

func BatchMinterEventMapper() EventMapper {
	return CreateEventMapper(batchMinterEventFactory, BatchMinterABI)
}

// CreateEventMapper decodes logs of one contract into the structs returned by eventFactory
func CreateEventMapper(eventFactory func(name string) interface{}, parsed *abi.ABI) EventMapper {
	// address is irrelevant for decoding
	contract := bind.NewBoundContract(common.Address{}, *parsed, nil, nil, nil)

	return func(log types.Log) (interface{}, error) {
		if len(log.Topics) == 0 {
			return nil, fmt.Errorf("anonymous log in tx %s", log.TxHash.Hex())
		}
		namedEvent, err := parsed.EventByID(log.Topics[0])
		if err != nil {
			return nil, err
		}
		payload := eventFactory(namedEvent.Name)
		if payload == nil {
			return nil, fmt.Errorf("unknown event %s", namedEvent.Name)
		}
		if err := contract.UnpackLog(payload, namedEvent.Name, log); err != nil {
			return nil, err
		}
		setRaw(payload, log)
		return payload, nil
	}
}

func setRaw(payload interface{}, log types.Log) {
	switch e := payload.(type) {
	case *LedgerNewDeal:
		e.Raw = log
	case *LedgerTokensBought:
		e.Raw = log
	case *LedgerDealClosed:
		e.Raw = log
	case *FuturesNFTCreated:
		e.Raw = log
	case *FuturesNFTRedeemed:
		e.Raw = log
	case *FuturesTransfer:
		e.Raw = log
	case *MinterBatchMinted:
		e.Raw = log
	}
}
