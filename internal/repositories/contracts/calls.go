package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/TitanInd/otcescrow/internal/networks"
	"gitlab.com/TitanInd/otcescrow/internal/submitter"
)

var (
	priceScale = big.NewInt(1e18)

	// MaxApproval is the allowance granted by the approve command, 2^200
	MaxApproval = new(big.Int).Lsh(big.NewInt(1), 200)
)

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

type BatchMintParams struct {
	Holders     []common.Address
	Token       common.Address
	Amounts     []*big.Int
	UnlockDates []int64
	Identifier  *big.Int // nil selects the overload without BatchMinted event
}

// Payment is the price of amount tokens at price per whole token
func Payment(amount, price *big.Int) *big.Int {
	p := new(big.Int).Mul(amount, price)
	return p.Quo(p, priceScale)
}

// PackCreateDeal encodes a deal creation; selling the wrapped native coin attaches amount as value
func PackCreateDeal(p networks.Profile, d CreateDealParams) (submitter.Call, error) {
	data, err := DealLedgerABI.Pack("create", d.Token, d.PaymentCurrency, d.Amount, d.Min, d.Price,
		big.NewInt(d.Maturity), big.NewInt(d.UnlockDate), d.Buyer)
	if err != nil {
		return submitter.Call{}, err
	}
	return submitter.Call{
		Target: networks.TargetDealLedger,
		Data:   data,
		Value:  nativeValue(p, d.Token, d.Amount),
	}, nil
}

func PackCreateNFTGatedDeal(p networks.Profile, d CreateDealParams, whitelist []common.Address) (submitter.Call, error) {
	data, err := DealLedgerABI.Pack("createNFTGatedDeal", d.Token, d.PaymentCurrency, d.Amount, d.Min, d.Price,
		big.NewInt(d.Maturity), big.NewInt(d.UnlockDate), whitelist)
	if err != nil {
		return submitter.Call{}, err
	}
	return submitter.Call{
		Target: networks.TargetDealLedger,
		Data:   data,
		Value:  nativeValue(p, d.Token, d.Amount),
	}, nil
}

// PackBuy encodes a purchase. The deal terms are needed to price a purchase paid in the native coin.
func PackBuy(p networks.Profile, id *big.Int, amount *big.Int, deal Deal) (submitter.Call, error) {
	data, err := DealLedgerABI.Pack("buy", id, amount)
	if err != nil {
		return submitter.Call{}, err
	}
	return submitter.Call{
		Target: networks.TargetDealLedger,
		Data:   data,
		Value:  nativeValue(p, deal.PaymentCurrency, Payment(amount, deal.Price)),
	}, nil
}

func PackCloseDeal(id *big.Int) (submitter.Call, error) {
	data, err := DealLedgerABI.Pack("close", id)
	if err != nil {
		return submitter.Call{}, err
	}
	return submitter.Call{Target: networks.TargetDealLedger, Data: data}, nil
}

func PackCreateNFT(holder common.Address, amount *big.Int, token common.Address, unlockDate int64) (submitter.Call, error) {
	data, err := FuturesABI.Pack("createNFT", holder, amount, token, big.NewInt(unlockDate))
	if err != nil {
		return submitter.Call{}, err
	}
	return submitter.Call{Target: networks.TargetFuturesRegistry, Data: data}, nil
}

func PackRedeemNFT(id *big.Int) (submitter.Call, error) {
	data, err := FuturesABI.Pack("redeemNFT", id)
	if err != nil {
		return submitter.Call{}, err
	}
	return submitter.Call{Target: networks.TargetFuturesRegistry, Data: data}, nil
}

func PackTransferNFT(from, to common.Address, id *big.Int) (submitter.Call, error) {
	data, err := FuturesABI.Pack("transferFrom", from, to, id)
	if err != nil {
		return submitter.Call{}, err
	}
	return submitter.Call{Target: networks.TargetFuturesRegistry, Data: data}, nil
}

func PackUpdateBaseURI(uri string) (submitter.Call, error) {
	data, err := FuturesABI.Pack("updateBaseURI", uri)
	if err != nil {
		return submitter.Call{}, err
	}
	return submitter.Call{Target: networks.TargetFuturesRegistry, Data: data}, nil
}

// PackBatchMint encodes a batch mint into the network's own futures registry
func PackBatchMint(p networks.Profile, b BatchMintParams) (submitter.Call, error) {
	registry, ok := p.Address(networks.TargetFuturesRegistry)
	if !ok {
		return submitter.Call{}, networks.ErrTargetUnavailable
	}
	dates := make([]*big.Int, len(b.UnlockDates))
	for i, d := range b.UnlockDates {
		dates[i] = big.NewInt(d)
	}

	var (
		data []byte
		err  error
	)
	if b.Identifier == nil {
		data, err = BatchMinterABI.Pack("batchMint", registry, b.Holders, b.Token, b.Amounts, dates)
	} else {
		data, err = BatchMinterABI.Pack("batchMint0", registry, b.Holders, b.Token, b.Amounts, dates, b.Identifier)
	}
	if err != nil {
		return submitter.Call{}, err
	}
	return submitter.Call{Target: networks.TargetBatchMinter, Data: data}, nil
}

// PackApprove encodes an ERC20 allowance for spender, one of the network's contracts
func PackApprove(p networks.Profile, token common.Address, spender networks.Target, amount *big.Int) (submitter.Call, error) {
	addr, ok := p.Address(spender)
	if !ok {
		return submitter.Call{}, networks.ErrTargetUnavailable
	}
	data, err := ERC20ABI.Pack("approve", addr, amount)
	if err != nil {
		return submitter.Call{}, err
	}
	return submitter.Call{To: &token, Data: data}, nil
}

func nativeValue(p networks.Profile, token common.Address, amount *big.Int) *big.Int {
	if p.HasWrappedNative() && token == p.WrappedNative {
		return new(big.Int).Set(amount)
	}
	return nil
}
