package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/TitanInd/otcescrow/internal/app"
	"gitlab.com/TitanInd/otcescrow/internal/config"
	"gitlab.com/TitanInd/otcescrow/internal/lib"
	"gitlab.com/TitanInd/otcescrow/internal/networks"
	"gitlab.com/TitanInd/otcescrow/internal/repositories/contracts"
)

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runNetworks(ctx context.Context, cfg *config.Config, args []string) error {
	registry, err := app.ProvideRegistry(cfg)
	if err != nil {
		return err
	}
	for _, key := range registry.Keys() {
		p, _ := registry.Get(key)
		fmt.Printf("%-10s chain %-6s", key, p.ChainID)
		for _, t := range networks.Targets() {
			if addr, ok := p.Address(t); ok {
				fmt.Printf(" %s=%s", t, addr.Hex())
			}
		}
		if p.HasWrappedNative() {
			fmt.Printf(" native=%s", p.WrappedNative.Hex())
		}
		fmt.Println()
	}
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, args []string) error {
	srv, cleanup, err := app.InitServer(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return srv.Run(ctx)
}

func runGetDeal(ctx context.Context, cfg *config.Config, args []string) error {
	if err := arity(args, 1, 1); err != nil {
		return err
	}
	id, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	return withClient(ctx, cfg, func(c *app.Client) error {
		deal, err := c.Reader.GetDeal(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(deal)
	})
}

func runGetFuture(ctx context.Context, cfg *config.Config, args []string) error {
	if err := arity(args, 1, 1); err != nil {
		return err
	}
	id, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	return withClient(ctx, cfg, func(c *app.Client) error {
		future, err := c.Reader.GetFuture(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(future)
	})
}

func runBalance(ctx context.Context, cfg *config.Config, args []string) error {
	if err := arity(args, 1, 2); err != nil {
		return err
	}
	token, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	var owner common.Address
	if len(args) == 2 {
		if owner, err = parseAddress(args[1]); err != nil {
			return err
		}
	} else {
		if owner, err = lib.PrivKeyStringToAddr(cfg.Wallet.PrivateKey); err != nil {
			return err
		}
	}

	return withClient(ctx, cfg, func(c *app.Client) error {
		bal, err := c.Reader.TokenBalance(ctx, token, owner)
		if err != nil {
			return err
		}
		return printJSON(bal)
	})
}

func runLockedDetails(ctx context.Context, cfg *config.Config, args []string) error {
	if err := arity(args, 1, 1); err != nil {
		return err
	}
	holder, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	return withClient(ctx, cfg, func(c *app.Client) error {
		futures, err := c.Reader.LockedDetails(ctx, holder)
		if err != nil {
			return err
		}
		return printJSON(futures)
	})
}

func runLockedBalance(ctx context.Context, cfg *config.Config, args []string) error {
	if err := arity(args, 2, 2); err != nil {
		return err
	}
	holder, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	token, err := parseAddress(args[1])
	if err != nil {
		return err
	}
	return withClient(ctx, cfg, func(c *app.Client) error {
		total, err := c.Reader.LockedBalance(ctx, holder, token)
		if err != nil {
			return err
		}
		fmt.Println(total)
		return nil
	})
}

func watchMapper(t networks.Target) contracts.EventMapper {
	switch t {
	case networks.TargetDealLedger:
		return contracts.DealLedgerEventMapper()
	case networks.TargetFuturesRegistry:
		return contracts.FuturesEventMapper()
	default:
		return contracts.BatchMinterEventMapper()
	}
}

// runWatch prints decoded events of one contract until interrupted
func runWatch(ctx context.Context, cfg *config.Config, args []string) error {
	if err := arity(args, 1, 2); err != nil {
		return err
	}
	target, err := networks.ParseTarget(args[0])
	if err != nil {
		return lib.WrapError(errUsage, err)
	}
	var fromBlock *big.Int
	if len(args) == 2 {
		if fromBlock, err = parseAmount(args[1]); err != nil {
			return err
		}
	}

	return withClient(ctx, cfg, func(c *app.Client) error {
		addr, ok := c.Profile.Address(target)
		if !ok {
			return fmt.Errorf("%w: %s on %s", networks.ErrTargetUnavailable, target, c.Profile.Key)
		}
		sub, err := c.Watcher.Watch(ctx, addr, watchMapper(target), fromBlock)
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case err := <-sub.Err():
				return err
			case ev, ok := <-sub.Events():
				if !ok {
					return nil
				}
				fmt.Printf("%T %+v\n", ev, ev)
			}
		}
	})
}
