package main

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: bad address %q", errUsage, s)
	}
	return common.HexToAddress(s), nil
}

// parseAmount reads a non-negative integer in the token's base units
func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: bad amount %q", errUsage, s)
	}
	return v, nil
}

func parseUnix(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: bad unix timestamp %q", errUsage, s)
	}
	return v, nil
}

// parseIdentifier returns nil for an empty argument; "uuid" generates a random
// identifier from a version 4 uuid
func parseIdentifier(s string) (*big.Int, error) {
	switch s {
	case "":
		return nil, nil
	case "uuid":
		id := uuid.New()
		return new(big.Int).SetBytes(id[:]), nil
	default:
		return parseAmount(s)
	}
}

func arity(args []string, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return fmt.Errorf("%w: got %d positional arguments", errUsage, len(args))
	}
	return nil
}
