package contracts

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"gitlab.com/TitanInd/otcescrow/internal/networks"
)

type methodHandler func(args []interface{}) []interface{}

type fakeContract struct {
	abi      *abi.ABI
	handlers map[string]methodHandler
}

// fakeChain answers eth_call by decoding the calldata and packing handler results
type fakeChain struct {
	contracts map[common.Address]fakeContract
}

func newFakeChain() *fakeChain {
	return &fakeChain{contracts: make(map[common.Address]fakeContract)}
}

func (c *fakeChain) deploy(addr common.Address, parsed *abi.ABI, handlers map[string]methodHandler) {
	c.contracts[addr] = fakeContract{abi: parsed, handlers: handlers}
}

func (c *fakeChain) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	if _, ok := c.contracts[contract]; !ok {
		return nil, nil
	}
	return []byte{0x60}, nil
}

func (c *fakeChain) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	contract, ok := c.contracts[*call.To]
	if !ok {
		return nil, nil
	}
	method, err := contract.abi.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}
	handler, ok := contract.handlers[method.Name]
	if !ok {
		return nil, fmt.Errorf("execution reverted: %s", method.Name)
	}
	return method.Outputs.Pack(handler(args)...)
}

func testProfile(t *testing.T, key string) networks.Profile {
	reg, err := networks.Default()
	require.NoError(t, err)
	p, err := reg.Get(key)
	require.NoError(t, err)
	return p
}

func e18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}
