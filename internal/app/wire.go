//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"gitlab.com/TitanInd/otcescrow/internal/config"
	"gitlab.com/TitanInd/otcescrow/internal/repositories/contracts"
	"gitlab.com/TitanInd/otcescrow/internal/submitter"
)

var commonSet = wire.NewSet(
	ProvideLoggers,
	ProvideRegistry,
	submitter.NewMetrics,
)

var clientSet = wire.NewSet(
	commonSet,
	ProvideProfile,
	ProvideEthClient,
	wire.Bind(new(submitter.EthereumClient), new(*contracts.EthClient)),
	ProvideSubmitter,
	ProvideReader,
	ProvideWatcher,
	wire.Struct(new(Client), "*"),
)

var serverSet = wire.NewSet(
	commonSet,
	ProvideReaderPool,
	ProvideReaderProvider,
	ProvideHTTPHandler,
	wire.Struct(new(Server), "*"),
)

func InitClient(ctx context.Context, cfg *config.Config) (*Client, func(), error) {
	wire.Build(clientSet)
	return nil, nil, nil
}

func InitServer(cfg *config.Config) (*Server, func(), error) {
	wire.Build(serverSet)
	return nil, nil, nil
}
