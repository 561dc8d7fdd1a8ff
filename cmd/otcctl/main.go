package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/TitanInd/otcescrow/internal/config"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type command struct {
	usage string
	run   func(ctx context.Context, cfg *config.Config, args []string) error
}

var commands = map[string]command{
	"networks":          {"", runNetworks},
	"serve":             {"", runServe},
	"approve":           {"<token> <otc|nft|batch>", runApprove},
	"create-deal":       {"<token> <payment-currency> <amount> <min> <price> <maturity> <unlock-date> [buyer]", runCreateDeal},
	"create-gated-deal": {"<token> <payment-currency> <amount> <min> <price> <maturity> <unlock-date> <collection>...", runCreateGatedDeal},
	"buy":               {"<deal-id> <amount>", runBuy},
	"close-deal":        {"<deal-id>", runCloseDeal},
	"mint":              {"<holder> <amount> <token> <unlock-date>", runMint},
	"redeem":            {"<future-id>", runRedeem},
	"transfer-future":   {"<to> <future-id>", runTransferFuture},
	"batch-mint":        {"<token> <csv-file> [identifier|uuid]", runBatchMint},
	"get-deal":          {"<deal-id>", runGetDeal},
	"get-future":        {"<future-id>", runGetFuture},
	"balance":           {"<token> [owner]", runBalance},
	"locked-details":    {"<holder>", runLockedDetails},
	"locked-balance":    {"<holder> <token>", runLockedBalance},
	"watch":             {"<otc|nft|batch> [from-block]", runWatch},
}

var errUsage = errors.New("invalid arguments")

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}
	name := os.Args[1]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", name)
		printUsage()
		os.Exit(2)
	}

	var cfg config.Config
	args, err := config.LoadConfig(&cfg, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-shutdownChan
		fmt.Fprintf(os.Stderr, "Received signal: %s\n", s)
		cancel()

		s = <-shutdownChan
		fmt.Fprintf(os.Stderr, "Received signal: %s. Forcing exit...\n", s)
		os.Exit(1)
	}()

	err = cmd.run(ctx, &cfg, args)
	if errors.Is(err, errUsage) {
		fmt.Fprintf(os.Stderr, "%s\nusage: otcctl %s [flags] %s\n", err, name, cmd.usage)
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printUsage() {
	names := maps.Keys(commands)
	slices.Sort(names)

	fmt.Fprintln(os.Stderr, "usage: otcctl <command> [flags] [args]")
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-18s %s\n", name, commands[name].usage)
	}
	fmt.Fprintln(os.Stderr, "flags are listed by otcctl <command> -h")
}
