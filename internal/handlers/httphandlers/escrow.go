package httphandlers

import (
	"errors"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"gitlab.com/TitanInd/otcescrow/internal/networks"
	"gitlab.com/TitanInd/otcescrow/internal/repositories/contracts"
)

func (h *HTTPHandler) GetNetworks(ctx *gin.Context) {
	keys := h.registry.Keys()
	res := make([]NetworkResponse, 0, len(keys))
	for _, key := range keys {
		p, _ := h.registry.Get(key)
		res = append(res, mapNetwork(p))
	}
	ctx.JSON(http.StatusOK, res)
}

func (h *HTTPHandler) GetDeal(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	reader, ok := h.reader(ctx)
	if !ok {
		return
	}

	deal, err := reader.GetDeal(ctx, id)
	if err != nil {
		h.abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, mapDeal(deal))
}

func (h *HTTPHandler) GetFuture(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	reader, ok := h.reader(ctx)
	if !ok {
		return
	}

	future, err := reader.GetFuture(ctx, id)
	if err != nil {
		h.abort(ctx, err)
		return
	}
	if !future.Exists() {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "future not found or redeemed"})
		return
	}
	ctx.JSON(http.StatusOK, mapFuture(*future))
}

// GetLocked lists the holder's claims; with ?token= it also sums the claims on that token
func (h *HTTPHandler) GetLocked(ctx *gin.Context) {
	holder, ok := parseAddress(ctx, ctx.Param("addr"))
	if !ok {
		return
	}
	var token *common.Address
	if tokenStr := ctx.Query("token"); tokenStr != "" {
		addr, ok := parseAddress(ctx, tokenStr)
		if !ok {
			return
		}
		token = &addr
	}
	reader, ok := h.reader(ctx)
	if !ok {
		return
	}

	futures, err := reader.LockedDetails(ctx, holder)
	if err != nil {
		h.abort(ctx, err)
		return
	}

	res := LockedResponse{Holder: holder.Hex(), Futures: make([]FutureResponse, len(futures))}
	for i, f := range futures {
		res.Futures[i] = mapFuture(f)
	}

	if token != nil {
		total := new(big.Int)
		for _, f := range futures {
			if f.Token == *token {
				total.Add(total, f.Amount)
			}
		}
		res.Total = total.String()
	}
	ctx.JSON(http.StatusOK, res)
}

func (h *HTTPHandler) GetBalance(ctx *gin.Context) {
	holder, ok := parseAddress(ctx, ctx.Param("addr"))
	if !ok {
		return
	}
	token, ok := parseAddress(ctx, ctx.Param("token"))
	if !ok {
		return
	}
	reader, ok := h.reader(ctx)
	if !ok {
		return
	}

	bal, err := reader.TokenBalance(ctx, token, holder)
	if err != nil {
		h.abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, BalanceResponse{Balance: bal.Balance.String(), Decimals: bal.Decimals})
}

func (h *HTTPHandler) reader(ctx *gin.Context) (ChainReader, bool) {
	profile, err := h.registry.Get(ctx.Param("network"))
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	reader, err := h.readers(ctx, profile)
	if err != nil {
		h.log.Warnf("cannot connect to %s: %s", profile.Key, err)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return nil, false
	}
	return reader, true
}

func (h *HTTPHandler) abort(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, contracts.ErrDealNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, networks.ErrTargetUnavailable):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Warnf("query failed: %s", err)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

func parseID(ctx *gin.Context) (*big.Int, bool) {
	id, ok := new(big.Int).SetString(ctx.Param("id"), 10)
	if !ok || id.Sign() < 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	return id, true
}

func parseAddress(ctx *gin.Context, s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid address " + s})
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

func mapNetwork(p networks.Profile) NetworkResponse {
	res := NetworkResponse{Key: p.Key, Name: p.Name, ChainID: p.ChainID.String()}
	if p.HasWrappedNative() {
		res.WrappedNative = p.WrappedNative.Hex()
	}
	if addr, ok := p.Address(networks.TargetDealLedger); ok {
		res.DealLedger = addr.Hex()
	}
	if addr, ok := p.Address(networks.TargetFuturesRegistry); ok {
		res.FuturesRegistry = addr.Hex()
	}
	if addr, ok := p.Address(networks.TargetBatchMinter); ok {
		res.BatchMinter = addr.Hex()
	}
	return res
}

func mapDeal(d *contracts.Deal) DealResponse {
	return DealResponse{
		ID:              d.ID.String(),
		Seller:          d.Seller.Hex(),
		Token:           d.Token.Hex(),
		PaymentCurrency: d.PaymentCurrency.Hex(),
		RemainingAmount: d.RemainingAmount.String(),
		MinimumPurchase: d.MinimumPurchase.String(),
		Price:           d.Price.String(),
		Maturity:        d.Maturity,
		UnlockDate:      d.UnlockDate,
		Buyer:           d.Buyer.Hex(),
	}
}

func mapFuture(f contracts.Future) FutureResponse {
	return FutureResponse{
		ID:         f.ID.String(),
		Amount:     f.Amount.String(),
		Token:      f.Token.Hex(),
		UnlockDate: f.UnlockDate,
	}
}
