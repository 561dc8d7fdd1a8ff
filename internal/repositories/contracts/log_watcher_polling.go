package contracts

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"gitlab.com/TitanInd/otcescrow/internal/interfaces"
	"gitlab.com/TitanInd/otcescrow/internal/lib"
)

type LogWatcher interface {
	Watch(ctx context.Context, contractAddr common.Address, mapper EventMapper, fromBlock *big.Int) (*lib.Subscription, error)
}

type LogWatcherPolling struct {
	// config
	maxReconnects int
	pollInterval  time.Duration

	// deps
	client EthereumClient
	log    interfaces.ILogger
}

func NewLogWatcherPolling(client EthereumClient, pollInterval time.Duration, maxReconnects int, log interfaces.ILogger) *LogWatcherPolling {
	if maxReconnects < 1 {
		maxReconnects = 1
	}
	return &LogWatcherPolling{
		client:        client,
		pollInterval:  pollInterval,
		maxReconnects: maxReconnects,
		log:           log,
	}
}

// Watch polls block ranges [fromBlock, head] and delivers every decoded event once
func (w *LogWatcherPolling) Watch(ctx context.Context, contractAddr common.Address, mapper EventMapper, fromBlock *big.Int) (*lib.Subscription, error) {
	if fromBlock == nil {
		header, err := w.client.HeaderByNumber(ctx, nil)
		if err != nil {
			return nil, err
		}
		fromBlock = header.Number
	}
	nextBlock := new(big.Int).Set(fromBlock)

	sink := make(chan interface{})
	return lib.NewSubscription(func(quit <-chan struct{}) error {
		defer close(sink)

		for {
			head, err := w.headRetry(ctx)
			if err != nil {
				return err
			}

			if head.Cmp(nextBlock) >= 0 {
				query := ethereum.FilterQuery{
					Addresses: []common.Address{contractAddr},
					FromBlock: nextBlock,
					ToBlock:   head,
				}
				logs, err := w.filterLogsRetry(ctx, query)
				if err != nil {
					return err
				}

				for _, log := range logs {
					if log.Removed {
						continue
					}
					event, err := mapper(log)
					if err != nil {
						return err // mapper error, retry won't help
					}

					select {
					case <-quit:
						return nil
					case <-ctx.Done():
						return ctx.Err()
					case sink <- event:
					}
				}
				nextBlock = new(big.Int).Add(head, big.NewInt(1))
			}

			select {
			case <-quit:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.pollInterval):
			}
		}
	}, sink), nil
}

func (w *LogWatcherPolling) headRetry(ctx context.Context) (*big.Int, error) {
	var lastErr error

	for attempts := 0; attempts < w.maxReconnects; attempts++ {
		header, err := w.client.HeaderByNumber(ctx, nil)
		if err != nil {
			lastErr = err
			continue
		}
		return header.Number, nil
	}

	return nil, lastErr
}

func (w *LogWatcherPolling) filterLogsRetry(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	var lastErr error

	for attempts := 0; attempts < w.maxReconnects; attempts++ {
		logs, err := w.client.FilterLogs(ctx, query)
		if err != nil {
			lastErr = err
			continue
		}
		if attempts > 0 {
			w.log.Warnf("log polling recovered after error: %s", lastErr)
		}

		return logs, nil
	}

	return nil, lastErr
}
