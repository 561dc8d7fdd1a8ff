package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"gitlab.com/TitanInd/otcescrow/internal/config"
	"gitlab.com/TitanInd/otcescrow/internal/handlers/httphandlers"
	"gitlab.com/TitanInd/otcescrow/internal/lib"
	"gitlab.com/TitanInd/otcescrow/internal/networks"
	"gitlab.com/TitanInd/otcescrow/internal/repositories/contracts"
	"gitlab.com/TitanInd/otcescrow/internal/submitter"
)

const logFileName = "otcctl.log"

// Loggers holds one root logger per configurable level
type Loggers struct {
	App       *lib.Logger
	Submitter *lib.Logger
	Contract  *lib.Logger
}

func ProvideLoggers(cfg *config.Config) (*Loggers, func(), error) {
	var logFile string
	if cfg.Log.FolderPath != "" {
		logFile = filepath.Join(cfg.Log.FolderPath, logFileName)
	}

	factory, err := lib.NewLoggerFactory(lib.LoggerConfig{
		Color:    cfg.Log.Color,
		IsProd:   cfg.Log.IsProd,
		JSON:     cfg.Log.JSON,
		FilePath: logFile,
	}, nil)
	if err != nil {
		return nil, nil, err
	}
	loggers, err := newLoggers(factory, cfg)
	if err != nil {
		_ = factory.Close()
		return nil, nil, err
	}

	return loggers, func() {
		_ = loggers.App.Sync()
		_ = loggers.Submitter.Sync()
		_ = loggers.Contract.Sync()
		_ = factory.Close()
	}, nil
}

func newLoggers(factory *lib.LoggerFactory, cfg *config.Config) (*Loggers, error) {
	appLog, err := factory.Component(lib.ComponentApp, cfg.Log.LevelApp)
	if err != nil {
		return nil, err
	}
	submitterLog, err := factory.Component(lib.ComponentSubmitter, cfg.Log.LevelSubmitter)
	if err != nil {
		return nil, err
	}
	contractLog, err := factory.Component(lib.ComponentContract, cfg.Log.LevelContract)
	if err != nil {
		return nil, err
	}
	return &Loggers{App: appLog, Submitter: submitterLog, Contract: contractLog}, nil
}

func ProvideRegistry(cfg *config.Config) (*networks.Registry, error) {
	return networks.LoadFile(cfg.Blockchain.NetworksFile)
}

// ProvideProfile selects the configured network; ETH_NODE_ADDRESS overrides its rpc url
func ProvideProfile(cfg *config.Config, registry *networks.Registry) (networks.Profile, error) {
	profile, err := registry.Get(cfg.Blockchain.Network)
	if err != nil {
		return networks.Profile{}, err
	}
	if cfg.Blockchain.EthNodeAddress != "" {
		profile.RPCURL = cfg.Blockchain.EthNodeAddress
	}
	return profile, nil
}

// ProvideEthClient dials the profile's node and refuses nodes serving another chain
func ProvideEthClient(ctx context.Context, profile networks.Profile, loggers *Loggers) (*contracts.EthClient, func(), error) {
	client, err := dialProfile(ctx, profile)
	if err != nil {
		return nil, nil, err
	}
	loggers.App.Debugf("connected to %s node", profile.Key)
	return client, client.Close, nil
}

func dialProfile(ctx context.Context, profile networks.Profile) (*contracts.EthClient, error) {
	if profile.RPCURL == "" {
		return nil, fmt.Errorf("%w: %s", networks.ErrNoRPC, profile.Key)
	}
	client, err := contracts.DialContext(ctx, profile.RPCURL)
	if err != nil {
		return nil, err
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	if chainID.Cmp(profile.ChainID) != 0 {
		client.Close()
		return nil, fmt.Errorf("node at %s serves chain %s, %s is chain %s", profile.RPCURL, chainID, profile.Key, profile.ChainID)
	}
	return client, nil
}

func ProvideSubmitter(profile networks.Profile, client submitter.EthereumClient, cfg *config.Config, metrics *submitter.Metrics, loggers *Loggers) *submitter.Submitter {
	return submitter.NewSubmitter(profile, client, submitter.Config{
		GasPrice:     submitter.GweiToWei(cfg.Blockchain.GasPriceGwei),
		GasLimit:     cfg.Blockchain.GasLimit,
		PollInterval: cfg.Blockchain.PollingInterval,
	}, metrics, loggers.Submitter)
}

func ProvideReader(profile networks.Profile, client *contracts.EthClient, loggers *Loggers) *contracts.Reader {
	return contracts.NewReader(profile, client, loggers.Contract.Named("READER"))
}

func ProvideWatcher(client *contracts.EthClient, cfg *config.Config, loggers *Loggers) *contracts.LogWatcherPolling {
	return contracts.NewLogWatcherPolling(client, cfg.Blockchain.PollingInterval, cfg.Blockchain.MaxReconnects, loggers.Contract.Named("WATCHER"))
}

func ProvideReaderPool(cfg *config.Config, loggers *Loggers) (*ReaderPool, func()) {
	pool := NewReaderPool(cfg.Blockchain.Network, cfg.Blockchain.EthNodeAddress, loggers.Contract.Named("READER"))
	return pool, pool.Close
}

func ProvideReaderProvider(pool *ReaderPool) httphandlers.ReaderProvider {
	return pool.Get
}

func ProvideHTTPHandler(registry *networks.Registry, readers httphandlers.ReaderProvider, cfg *config.Config, metrics *submitter.Metrics, loggers *Loggers) *gin.Engine {
	return httphandlers.NewHTTPHandler(registry, readers, cfg, metrics.Handler(), loggers.App.Named(lib.ComponentHTTP))
}
