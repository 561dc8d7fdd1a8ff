package httphandlers

type ConfigResponse struct {
	Version string
	Config  interface{}
}

type NetworkResponse struct {
	Key             string `json:"key"`
	Name            string `json:"name"`
	ChainID         string `json:"chainId"`
	WrappedNative   string `json:"wrappedNative,omitempty"`
	DealLedger      string `json:"dealLedger,omitempty"`
	FuturesRegistry string `json:"futuresRegistry,omitempty"`
	BatchMinter     string `json:"batchMinter,omitempty"`
}

type DealResponse struct {
	ID              string `json:"id"`
	Seller          string `json:"seller"`
	Token           string `json:"token"`
	PaymentCurrency string `json:"paymentCurrency"`
	RemainingAmount string `json:"remainingAmount"`
	MinimumPurchase string `json:"minimumPurchase"`
	Price           string `json:"price"`
	Maturity        int64  `json:"maturity"`
	UnlockDate      int64  `json:"unlockDate"`
	Buyer           string `json:"buyer"`
}

type FutureResponse struct {
	ID         string `json:"id"`
	Amount     string `json:"amount"`
	Token      string `json:"token"`
	UnlockDate int64  `json:"unlockDate"`
}

type LockedResponse struct {
	Holder  string           `json:"holder"`
	Futures []FutureResponse `json:"futures"`
	Total   string           `json:"total,omitempty"`
}

type BalanceResponse struct {
	Balance  string `json:"balance"`
	Decimals uint8  `json:"decimals"`
}
