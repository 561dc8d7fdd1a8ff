package config

import (
	"strings"
	"time"
)

// Validation tags described here: https://pkg.go.dev/github.com/go-playground/validator/v10
type Config struct {
	Blockchain struct {
		Network         string        `env:"NETWORK"              flag:"network"              validate:"required"                 desc:"network key from the network table, e.g. ethereum, polygon"`
		NetworksFile    string        `env:"NETWORKS_FILE"        flag:"networks-file"        validate:"omitempty,file"           desc:"yaml network table overriding the compiled-in one"`
		EthNodeAddress  string        `env:"ETH_NODE_ADDRESS"     flag:"eth-node-address"     validate:"omitempty,url"            desc:"overrides the rpc url of the selected network"`
		GasPriceGwei    uint64        `env:"GAS_PRICE_GWEI"       flag:"gas-price-gwei"       validate:"omitempty,number"         desc:"legacy gas price in gwei, required by writing commands"`
		GasLimit        uint64        `env:"GAS_LIMIT"            flag:"gas-limit"            validate:"omitempty,number"`
		PollingInterval time.Duration `env:"ETH_POLLING_INTERVAL" flag:"eth-polling-interval" validate:""                        desc:"interval between receipt and log polls"`
		MaxReconnects   int           `env:"ETH_MAX_RECONNECTS"   flag:"eth-max-reconnects"   validate:"omitempty,number"         desc:"maximum number of retries of a failed log poll"`
	}
	Environment string `env:"ENVIRONMENT" flag:"environment"`
	Wallet      struct {
		PrivateKey string `env:"WALLET_PRIVATE_KEY" flag:"wallet-private-key" validate:"omitempty,hexadecimal" desc:"signing key, required by writing commands"`
	}
	Log struct {
		Color          bool   `env:"LOG_COLOR"            flag:"log-color"`
		FolderPath     string `env:"LOG_FOLDER_PATH"      flag:"log-folder-path"      validate:"omitempty,dir"        desc:"enables file logging and sets the folder path"`
		IsProd         bool   `env:"LOG_IS_PROD"          flag:"log-is-prod"          validate:""                     desc:"affects the format of the log output"`
		JSON           bool   `env:"LOG_JSON"             flag:"log-json"`
		LevelApp       string `env:"LOG_LEVEL_APP"        flag:"log-level-app"        validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
		LevelSubmitter string `env:"LOG_LEVEL_SUBMITTER"  flag:"log-level-submitter"  validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
		LevelContract  string `env:"LOG_LEVEL_CONTRACT"   flag:"log-level-contract"   validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	}
	Web struct {
		Address string `env:"WEB_ADDRESS" flag:"web-address" validate:"required,hostname_port" desc:"http server address host:port"`
	}
}

func (cfg *Config) SetDefaults() {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Blockchain

	if cfg.Blockchain.Network == "" {
		cfg.Blockchain.Network = "ethereum"
	}
	if cfg.Blockchain.GasLimit == 0 {
		cfg.Blockchain.GasLimit = 8_000_000
	}
	if cfg.Blockchain.PollingInterval == 0 {
		cfg.Blockchain.PollingInterval = 2 * time.Second
	}
	if cfg.Blockchain.MaxReconnects == 0 {
		cfg.Blockchain.MaxReconnects = 30
	}

	// Wallet

	// normalizes private key
	cfg.Wallet.PrivateKey = strings.TrimPrefix(cfg.Wallet.PrivateKey, "0x")

	// Log

	if cfg.Log.LevelApp == "" {
		cfg.Log.LevelApp = "info"
	}
	if cfg.Log.LevelSubmitter == "" {
		cfg.Log.LevelSubmitter = "info"
	}
	if cfg.Log.LevelContract == "" {
		cfg.Log.LevelContract = "debug"
	}

	// Web

	if cfg.Web.Address == "" {
		cfg.Web.Address = "0.0.0.0:8080"
	}
}

// GetSanitized returns a copy of the config with sensitive data removed
// explicitly adding each field here to avoid accidentally leaking sensitive data
func (cfg *Config) GetSanitized() interface{} {
	publicCfg := Config{}

	publicCfg.Blockchain.Network = cfg.Blockchain.Network
	publicCfg.Blockchain.NetworksFile = cfg.Blockchain.NetworksFile
	publicCfg.Blockchain.GasPriceGwei = cfg.Blockchain.GasPriceGwei
	publicCfg.Blockchain.GasLimit = cfg.Blockchain.GasLimit
	publicCfg.Blockchain.PollingInterval = cfg.Blockchain.PollingInterval
	publicCfg.Blockchain.MaxReconnects = cfg.Blockchain.MaxReconnects
	publicCfg.Environment = cfg.Environment

	publicCfg.Log.Color = cfg.Log.Color
	publicCfg.Log.FolderPath = cfg.Log.FolderPath
	publicCfg.Log.IsProd = cfg.Log.IsProd
	publicCfg.Log.JSON = cfg.Log.JSON
	publicCfg.Log.LevelApp = cfg.Log.LevelApp
	publicCfg.Log.LevelSubmitter = cfg.Log.LevelSubmitter
	publicCfg.Log.LevelContract = cfg.Log.LevelContract

	publicCfg.Web.Address = cfg.Web.Address

	return publicCfg
}
