package networks

import (
	_ "embed"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"gitlab.com/TitanInd/otcescrow/internal/lib"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed networks.yaml
var defaultTable []byte

var (
	ErrUnknownNetwork    = errors.New("unknown network")
	ErrTableInvalid      = errors.New("invalid network table")
	ErrNoRPC             = errors.New("network has no rpc url configured")
	ErrTargetUnavailable = errors.New("target not offered on network")
)

// Validation tags described here: https://pkg.go.dev/github.com/go-playground/validator/v10
type profileRow struct {
	ChainID         uint64 `yaml:"chainId"         validate:"required"`
	RPCURL          string `yaml:"rpcUrl"          validate:"omitempty,url"`
	Name            string `yaml:"name"            validate:"required"`
	DealLedger      string `yaml:"dealLedger"      validate:"omitempty,eth_addr"`
	FuturesRegistry string `yaml:"futuresRegistry" validate:"omitempty,eth_addr"`
	BatchMinter     string `yaml:"batchMinter"     validate:"omitempty,eth_addr"`
	WrappedNative   string `yaml:"wrappedNative"   validate:"omitempty,eth_addr"`
}

// Profile describes one network. Zero addresses mean the contract is not deployed there.
type Profile struct {
	Key           string
	ChainID       *big.Int
	RPCURL        string
	Name          string
	WrappedNative common.Address

	contracts [targetCount]common.Address
}

// Address returns the deployment of t, false when the network does not offer it
func (p Profile) Address(t Target) (common.Address, bool) {
	if !t.Valid() {
		return common.Address{}, false
	}
	addr := p.contracts[t]
	return addr, addr != (common.Address{})
}

func (p Profile) HasWrappedNative() bool {
	return p.WrappedNative != (common.Address{})
}

// Registry is the immutable network table, loaded once per process
type Registry struct {
	profiles map[string]Profile
	keys     []string
}

// Default loads the table compiled into the binary
func Default() (*Registry, error) {
	return Parse(defaultTable)
}

// LoadFile loads a table from path, or the compiled-in table when path is empty
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lib.WrapError(ErrTableInvalid, err)
	}
	return Parse(data)
}

// Parse reads a YAML network table; ${VAR} references in rpc urls are expanded from the environment
func Parse(data []byte) (*Registry, error) {
	var rows map[string]profileRow
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, lib.WrapError(ErrTableInvalid, err)
	}

	validate := validator.New()
	r := &Registry{profiles: make(map[string]Profile, len(rows))}
	for key, row := range rows {
		row.RPCURL = os.ExpandEnv(row.RPCURL)
		if err := validate.Struct(row); err != nil {
			return nil, lib.WrapError(ErrTableInvalid, fmt.Errorf("%s: %w", key, err))
		}

		p := Profile{
			Key:     key,
			ChainID: new(big.Int).SetUint64(row.ChainID),
			RPCURL:  row.RPCURL,
			Name:    row.Name,
		}
		p.contracts[TargetDealLedger] = hexAddress(row.DealLedger)
		p.contracts[TargetFuturesRegistry] = hexAddress(row.FuturesRegistry)
		p.contracts[TargetBatchMinter] = hexAddress(row.BatchMinter)
		p.WrappedNative = hexAddress(row.WrappedNative)

		r.profiles[key] = p
	}

	r.keys = maps.Keys(r.profiles)
	slices.Sort(r.keys)
	return r, nil
}

func hexAddress(s string) common.Address {
	if s == "" {
		return common.Address{}
	}
	return common.HexToAddress(s)
}

func (r *Registry) Get(key string) (Profile, error) {
	p, ok := r.profiles[key]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownNetwork, key)
	}
	return p, nil
}

// Keys returns the network keys in lexical order
func (r *Registry) Keys() []string {
	return slices.Clone(r.keys)
}

func (r *Registry) ByChainID(chainID *big.Int) (Profile, bool) {
	for _, key := range r.keys {
		if p := r.profiles[key]; p.ChainID.Cmp(chainID) == 0 {
			return p, true
		}
	}
	return Profile{}, false
}

// Resolve returns the profile and the deployment of t on network key
func (r *Registry) Resolve(key string, t Target) (Profile, common.Address, error) {
	p, err := r.Get(key)
	if err != nil {
		return Profile{}, common.Address{}, err
	}
	addr, ok := p.Address(t)
	if !ok {
		return p, common.Address{}, fmt.Errorf("%w: %s is not deployed on %s", ErrTargetUnavailable, t, key)
	}
	return p, addr, nil
}
