package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/landpower/internal/domain/address"
)

// Options configures one strategy invocation. The JSON shape matches the
// strategy options object supplied by the host platform.
type Options struct {
	Addresses   ContractAddresses `json:"addresses"`
	Multipliers Multipliers       `json:"multipliers"`
	Subgraphs   Subgraphs         `json:"subgraphs"`
}

// ContractAddresses names the registries and the staking contract.
type ContractAddresses struct {
	Land            string `json:"land"`
	Estate          string `json:"estate"`
	StakingContract string `json:"stakingContract"`
}

// Multipliers holds per-unit score weights.
type Multipliers struct {
	Land float64 `json:"land"`
}

// Subgraphs holds data source endpoints.
type Subgraphs struct {
	LandWorks string `json:"landworks"`
}

// Validate reports the first missing or malformed option.
func (o Options) Validate() error {
	contracts := []struct {
		name  string
		value string
	}{
		{"addresses.land", o.Addresses.Land},
		{"addresses.estate", o.Addresses.Estate},
		{"addresses.stakingContract", o.Addresses.StakingContract},
	}
	for _, c := range contracts {
		if strings.TrimSpace(c.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidOptions, c.name)
		}
		if !address.IsHex(c.value) {
			return fmt.Errorf("%w: %s %q is not a hex address", ErrInvalidOptions, c.name, c.value)
		}
	}
	if o.Multipliers.Land < 0 {
		return fmt.Errorf("%w: multipliers.land must not be negative", ErrInvalidOptions)
	}
	if strings.TrimSpace(o.Subgraphs.LandWorks) == "" {
		return fmt.Errorf("%w: subgraphs.landworks is required", ErrInvalidOptions)
	}
	return nil
}

// Registries returns the lowercase registry filter in estate, land order.
func (o Options) Registries() []string {
	return []string{address.Lower(o.Addresses.Estate), address.Lower(o.Addresses.Land)}
}

// Overlay decodes raw over a copy of o, so fields present in raw win and
// absent fields keep o's values. Empty raw and JSON null return o unchanged.
func (o Options) Overlay(raw json.RawMessage) (Options, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return o, nil
	}
	out := o
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return Options{}, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return out, nil
}
