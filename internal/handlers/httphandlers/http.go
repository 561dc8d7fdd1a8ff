package httphandlers

import (
	"context"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"gitlab.com/TitanInd/otcescrow/internal/config"
	"gitlab.com/TitanInd/otcescrow/internal/interfaces"
	"gitlab.com/TitanInd/otcescrow/internal/networks"
	"gitlab.com/TitanInd/otcescrow/internal/repositories/contracts"
)

type ChainReader interface {
	GetDeal(ctx context.Context, id *big.Int) (*contracts.Deal, error)
	GetFuture(ctx context.Context, id *big.Int) (*contracts.Future, error)
	TokenBalance(ctx context.Context, token, owner common.Address) (*contracts.TokenBalance, error)
	LockedDetails(ctx context.Context, holder common.Address) ([]contracts.Future, error)
}

// ReaderProvider returns the reader of a network profile, dialing it on first use
type ReaderProvider func(ctx context.Context, profile networks.Profile) (ChainReader, error)

type Sanitizable interface {
	GetSanitized() interface{}
}

type HTTPHandler struct {
	registry *networks.Registry
	readers  ReaderProvider
	config   Sanitizable
	log      interfaces.ILogger
}

func NewHTTPHandler(registry *networks.Registry, readers ReaderProvider, cfg Sanitizable, metrics http.Handler, log interfaces.ILogger) *gin.Engine {
	handl := &HTTPHandler{
		registry: registry,
		readers:  readers,
		config:   cfg,
		log:      log,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthcheck", handl.HealthCheck)
	r.GET("/config", handl.GetConfig)
	r.GET("/networks", handl.GetNetworks)
	r.GET("/networks/:network/deals/:id", handl.GetDeal)
	r.GET("/networks/:network/futures/:id", handl.GetFuture)
	r.GET("/networks/:network/holders/:addr/locked", handl.GetLocked)
	r.GET("/networks/:network/holders/:addr/balances/:token", handl.GetBalance)

	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	err := r.SetTrustedProxies(nil)
	if err != nil {
		panic(err)
	}

	return r
}

func (h *HTTPHandler) HealthCheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": config.BuildVersion,
	})
}
