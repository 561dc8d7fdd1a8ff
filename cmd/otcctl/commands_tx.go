package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/TitanInd/otcescrow/internal/app"
	"gitlab.com/TitanInd/otcescrow/internal/config"
	"gitlab.com/TitanInd/otcescrow/internal/lib"
	"gitlab.com/TitanInd/otcescrow/internal/networks"
	"gitlab.com/TitanInd/otcescrow/internal/repositories/contracts"
	"gitlab.com/TitanInd/otcescrow/internal/submitter"
)

func withClient(ctx context.Context, cfg *config.Config, fn func(c *app.Client) error) error {
	c, cleanup, err := app.InitClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(c)
}

// send prints the hash as soon as the node accepts the transaction, then the receipt status
func send(ctx context.Context, c *app.Client, call submitter.Call) error {
	outcome, err := c.Execute(ctx, call, func(sub *submitter.Submission) {
		fmt.Printf("hash: %s nonce: %d\n", sub.Hash.Hex(), sub.Nonce)
	})
	if err != nil {
		return err
	}
	if outcome.Status != submitter.StatusConfirmed {
		if outcome.Receipt != nil {
			fmt.Printf("status: %s block: %s\n", outcome.Status, outcome.Receipt.BlockNumber)
		}
		return outcome.Err
	}
	fmt.Printf("status: %s block: %s gas used: %d\n", outcome.Status, outcome.Receipt.BlockNumber, outcome.Receipt.GasUsed)
	return nil
}

func runApprove(ctx context.Context, cfg *config.Config, args []string) error {
	if err := arity(args, 2, 2); err != nil {
		return err
	}
	token, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	spender, err := networks.ParseTarget(args[1])
	if err != nil {
		return lib.WrapError(errUsage, err)
	}

	return withClient(ctx, cfg, func(c *app.Client) error {
		call, err := contracts.PackApprove(c.Profile, token, spender, contracts.MaxApproval)
		if err != nil {
			return err
		}
		return send(ctx, c, call)
	})
}

func parseDealParams(args []string) (contracts.CreateDealParams, error) {
	var (
		p   contracts.CreateDealParams
		err error
	)
	if p.Token, err = parseAddress(args[0]); err != nil {
		return p, err
	}
	if p.PaymentCurrency, err = parseAddress(args[1]); err != nil {
		return p, err
	}
	if p.Amount, err = parseAmount(args[2]); err != nil {
		return p, err
	}
	if p.Min, err = parseAmount(args[3]); err != nil {
		return p, err
	}
	if p.Price, err = parseAmount(args[4]); err != nil {
		return p, err
	}
	if p.Maturity, err = parseUnix(args[5]); err != nil {
		return p, err
	}
	if p.UnlockDate, err = parseUnix(args[6]); err != nil {
		return p, err
	}
	return p, nil
}

func runCreateDeal(ctx context.Context, cfg *config.Config, args []string) error {
	if err := arity(args, 7, 8); err != nil {
		return err
	}
	params, err := parseDealParams(args)
	if err != nil {
		return err
	}
	if len(args) == 8 {
		if params.Buyer, err = parseAddress(args[7]); err != nil {
			return err
		}
	}

	return withClient(ctx, cfg, func(c *app.Client) error {
		call, err := contracts.PackCreateDeal(c.Profile, params)
		if err != nil {
			return err
		}
		return send(ctx, c, call)
	})
}

func runCreateGatedDeal(ctx context.Context, cfg *config.Config, args []string) error {
	if err := arity(args, 8, -1); err != nil {
		return err
	}
	params, err := parseDealParams(args)
	if err != nil {
		return err
	}
	whitelist := make([]common.Address, 0, len(args)-7)
	for _, a := range args[7:] {
		addr, err := parseAddress(a)
		if err != nil {
			return err
		}
		whitelist = append(whitelist, addr)
	}

	return withClient(ctx, cfg, func(c *app.Client) error {
		call, err := contracts.PackCreateNFTGatedDeal(c.Profile, params, whitelist)
		if err != nil {
			return err
		}
		return send(ctx, c, call)
	})
}

func runBuy(ctx context.Context, cfg *config.Config, args []string) error {
	if err := arity(args, 2, 2); err != nil {
		return err
	}
	id, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}

	return withClient(ctx, cfg, func(c *app.Client) error {
		deal, err := c.Reader.GetDeal(ctx, id)
		if err != nil {
			return err
		}
		call, err := contracts.PackBuy(c.Profile, id, amount, *deal)
		if err != nil {
			return err
		}
		if call.Value != nil {
			fmt.Printf("paying %s in native coin\n", call.Value)
		}
		return send(ctx, c, call)
	})
}

func runCloseDeal(ctx context.Context, cfg *config.Config, args []string) error {
	if err := arity(args, 1, 1); err != nil {
		return err
	}
	id, err := parseAmount(args[0])
	if err != nil {
		return err
	}

	return withClient(ctx, cfg, func(c *app.Client) error {
		call, err := contracts.PackCloseDeal(id)
		if err != nil {
			return err
		}
		return send(ctx, c, call)
	})
}

func runMint(ctx context.Context, cfg *config.Config, args []string) error {
	if err := arity(args, 4, 4); err != nil {
		return err
	}
	holder, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	token, err := parseAddress(args[2])
	if err != nil {
		return err
	}
	unlock, err := parseUnix(args[3])
	if err != nil {
		return err
	}

	return withClient(ctx, cfg, func(c *app.Client) error {
		call, err := contracts.PackCreateNFT(holder, amount, token, unlock)
		if err != nil {
			return err
		}
		return send(ctx, c, call)
	})
}

func runRedeem(ctx context.Context, cfg *config.Config, args []string) error {
	if err := arity(args, 1, 1); err != nil {
		return err
	}
	id, err := parseAmount(args[0])
	if err != nil {
		return err
	}

	return withClient(ctx, cfg, func(c *app.Client) error {
		call, err := contracts.PackRedeemNFT(id)
		if err != nil {
			return err
		}
		return send(ctx, c, call)
	})
}

func runTransferFuture(ctx context.Context, cfg *config.Config, args []string) error {
	if err := arity(args, 2, 2); err != nil {
		return err
	}
	to, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	id, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	key, err := lib.ParsePrivateKey(cfg.Wallet.PrivateKey)
	if err != nil {
		return err
	}

	return withClient(ctx, cfg, func(c *app.Client) error {
		call, err := contracts.PackTransferNFT(lib.MustPrivKeyToAddr(key), to, id)
		if err != nil {
			return err
		}
		return send(ctx, c, call)
	})
}

func runBatchMint(ctx context.Context, cfg *config.Config, args []string) error {
	if err := arity(args, 2, 3); err != nil {
		return err
	}
	token, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	params, err := readBatchFile(f, token)
	_ = f.Close()
	if err != nil {
		return err
	}
	if len(args) == 3 {
		if params.Identifier, err = parseIdentifier(args[2]); err != nil {
			return err
		}
		fmt.Printf("batch identifier: %s\n", params.Identifier)
	}
	fmt.Printf("minting %d claims, %s tokens in total\n", len(params.Holders), batchTotal(params))

	return withClient(ctx, cfg, func(c *app.Client) error {
		call, err := contracts.PackBatchMint(c.Profile, params)
		if err != nil {
			return err
		}
		return send(ctx, c, call)
	})
}
