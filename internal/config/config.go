// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and the environment on top.
// - All loaders accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/landpower/internal/domain/batch"
	"github.com/okian/landpower/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SubgraphURL is the default LandWorks subgraph endpoint used when a
	// request does not name one in options.subgraphs.landworks.
	SubgraphURL string `koanf:"subgraph_url"`

	// LandAddress and EstateAddress are the default metaverse registry contracts.
	LandAddress   string `koanf:"land_address"`
	EstateAddress string `koanf:"estate_address"`

	// StakingContractAddress owns staked assets on behalf of their consumers.
	// It has no default; requests must supply it when this is empty.
	StakingContractAddress string `koanf:"staking_contract_address"`

	// LandMultiplier is the default score per coordinate.
	LandMultiplier float64 `koanf:"land_multiplier"`

	// BatchSize caps the number of addresses in one owner_in/consumer_in filter.
	BatchSize int `koanf:"batch_size"`

	// PageSize is the `first` argument of each subgraph page.
	PageSize int `koanf:"page_size"`

	// BatchConcurrency bounds how many address batches are queried at once.
	BatchConcurrency int `koanf:"batch_concurrency"`

	// QueryTimeoutMS bounds a single subgraph request.
	QueryTimeoutMS int `koanf:"query_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		SubgraphURL:      "https://api.thegraph.com/subgraphs/name/enterdao/landworks",
		LandAddress:      "0xF87E31492Faf9A91B02Ee0dEAAd50d51d56D5d4d",
		EstateAddress:    "0x959e104E1a4dB6317fA58F8295F586e1A978c297",
		LandMultiplier:   1,
		BatchSize:        batch.MaxFilterLength,
		PageSize:         1000,
		BatchConcurrency: 4,
		QueryTimeoutMS:   30_000,
	}
}

// Validate checks the values that cannot be defaulted at use sites.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch_size must be positive", ErrInvalidConfig)
	case c.BatchSize > batch.MaxFilterLength:
		return fmt.Errorf("%w: batch_size must not exceed %d", ErrInvalidConfig, batch.MaxFilterLength)
	case c.PageSize <= 0:
		return fmt.Errorf("%w: page_size must be positive", ErrInvalidConfig)
	case c.BatchConcurrency <= 0:
		return fmt.Errorf("%w: batch_concurrency must be positive", ErrInvalidConfig)
	case c.QueryTimeoutMS <= 0:
		return fmt.Errorf("%w: query_timeout_ms must be positive", ErrInvalidConfig)
	case c.LandMultiplier < 0:
		return fmt.Errorf("%w: land_multiplier must not be negative", ErrInvalidConfig)
	}
	return nil
}

// StrategyDefaults returns the options requests are overlaid on.
func (c *Config) StrategyDefaults() model.Options {
	return model.Options{
		Addresses: model.ContractAddresses{
			Land:            c.LandAddress,
			Estate:          c.EstateAddress,
			StakingContract: c.StakingContractAddress,
		},
		Multipliers: model.Multipliers{Land: c.LandMultiplier},
		Subgraphs:   model.Subgraphs{LandWorks: c.SubgraphURL},
	}
}
