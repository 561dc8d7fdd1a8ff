package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gitlab.com/TitanInd/otcescrow/internal/config"
	"gitlab.com/TitanInd/otcescrow/internal/lib"
	"gitlab.com/TitanInd/otcescrow/internal/networks"
	"gitlab.com/TitanInd/otcescrow/internal/repositories/contracts"
	"gitlab.com/TitanInd/otcescrow/internal/submitter"
)

const shutdownTimeout = 5 * time.Second

var ErrNoWallet = errors.New("wallet private key is not configured")

// Client is wired for commands that talk to a single network
type Client struct {
	Config    *config.Config
	Loggers   *Loggers
	Registry  *networks.Registry
	Profile   networks.Profile
	EthClient *contracts.EthClient
	Reader    *contracts.Reader
	Submitter *submitter.Submitter
	Watcher   *contracts.LogWatcherPolling
}

// Execute reserves a nonce, signs and broadcasts call, reports the hash through
// onHash and blocks until the receipt is known or ctx is done
func (c *Client) Execute(ctx context.Context, call submitter.Call, onHash func(*submitter.Submission)) (submitter.Outcome, error) {
	if c.Config.Wallet.PrivateKey == "" {
		return submitter.Outcome{}, ErrNoWallet
	}
	if c.Submitter.GasPrice().Sign() == 0 {
		return submitter.Outcome{}, submitter.ErrNoGasPrice
	}
	key, err := lib.ParsePrivateKey(c.Config.Wallet.PrivateKey)
	if err != nil {
		return submitter.Outcome{}, err
	}

	res, err := c.Submitter.ReserveNonce(ctx, key)
	if err != nil {
		return submitter.Outcome{}, err
	}
	sub, err := c.Submitter.Submit(ctx, res, key, call)
	if err != nil {
		return submitter.Outcome{}, err
	}
	if onHash != nil {
		onHash(sub)
	}
	return sub.Wait(ctx)
}

// Server is wired for the read only query API, which spans every network
type Server struct {
	Config   *config.Config
	Loggers  *Loggers
	Registry *networks.Registry
	Handler  *gin.Engine
}

func (s *Server) Run(ctx context.Context) error {
	log := s.Loggers.App
	srv := &http.Server{
		Addr:    s.Config.Web.Address,
		Handler: s.Handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("http server is listening: %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Infof("http server stopped")
	return ctx.Err()
}
