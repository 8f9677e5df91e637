// Package scoring computes LandWorks voting power: one point per coordinate,
// scaled by the land multiplier, credited to the owner of an asset or to
// the consumer of a staked asset.
package scoring

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/landpower/internal/domain/address"
	"github.com/okian/landpower/internal/domain/model"
	"github.com/okian/landpower/pkg/logger"
)

// Provider is the chain data handle the host platform passes along with a
// request. Scoring reads everything from the subgraph and never touches it.
type Provider any

// AssetFetcher retrieves the assets that carry voting power.
type AssetFetcher interface {
	// Owners returns assets owned by addrs.
	Owners(ctx context.Context, addrs []string, opts model.Options, snapshot *uint64) ([]model.Asset, error)
	// StakedConsumers returns staked assets consumed by addrs.
	StakedConsumers(ctx context.Context, addrs []string, opts model.Options, snapshot *uint64) ([]model.Asset, error)
}

// Option applies a configuration option to the Strategy.
type Option func(*Strategy)

// WithLogger sets the logger used for per-invocation debug records.
func WithLogger(l logger.Logger) Option {
	return func(s *Strategy) {
		if l != nil {
			s.logger = l
		}
	}
}

// Strategy is the landworks rents scoring strategy.
type Strategy struct {
	fetcher AssetFetcher
	logger  logger.Logger
}

// New creates a Strategy reading assets through f.
func New(f AssetFetcher, opts ...Option) *Strategy {
	s := &Strategy{fetcher: f, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scores returns the voting power of every address. The result holds one
// checksummed key per distinct input address, zero when nothing is held.
// space, network and provider identify the caller and do not affect scores.
// A nil snapshot reads the latest indexed state.
func (s *Strategy) Scores(
	ctx context.Context,
	space, network string,
	_ Provider,
	addresses []string,
	opts model.Options,
	snapshot *uint64,
) (model.Scores, error) {
	init, err := Init(addresses)
	if err != nil {
		return nil, err
	}
	if len(init) == 0 {
		return init, nil
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	keys := init.Addresses()
	owners := holders(keys, opts.Addresses.StakingContract)

	start := time.Now()
	var owned, staked []model.Asset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owned, err = s.fetcher.Owners(gctx, owners, opts, snapshot)
		if err != nil {
			return fmt.Errorf("fetch owned assets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		staked, err = s.fetcher.StakedConsumers(gctx, keys, opts, snapshot)
		if err != nil {
			return fmt.Errorf("fetch staked assets: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scores, err := Fold(init, owned, staked, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "scores folded",
		logger.String("space", space),
		logger.String("network", network),
		logger.Int("addresses", len(scores)),
		logger.Int("owned_assets", len(owned)),
		logger.Int("staked_assets", len(staked)),
		logger.Duration("fetch_duration", time.Since(start)),
	)
	return scores, nil
}

// holders drops the staking contract from keys. Assets it owns are staked
// and count for their consumers.
func holders(keys []string, staking string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !address.Equal(k, staking) {
			out = append(out, k)
		}
	}
	return out
}

// Init returns a zero score for every distinct address in checksummed form.
func Init(addresses []string) (model.Scores, error) {
	scores := make(model.Scores, len(addresses))
	for _, a := range addresses {
		key, err := address.Checksum(a)
		if err != nil {
			return nil, err
		}
		scores[key] = 0
	}
	return scores, nil
}

// Fold credits weight × land multiplier to the owner of every owned asset and
// to the consumer of every staked asset. Owned assets held by the staking
// contract are skipped. init is not modified. An asset that resolves to an
// address missing from init fails with ErrUnexpectedAddress.
func Fold(init model.Scores, owned, staked []model.Asset, opts model.Options) (model.Scores, error) {
	multiplier := opts.Multipliers.Land
	out := make(model.Scores, len(init))
	for k, v := range init {
		out[k] = v
	}
	credit := func(a model.Asset, holder string) error {
		key, err := address.Checksum(holder)
		if err != nil {
			return fmt.Errorf("%w: asset %s: %w", ErrUnexpectedAddress, a.ID, err)
		}
		if _, ok := out[key]; !ok {
			return fmt.Errorf("%w: asset %s credits %s", ErrUnexpectedAddress, a.ID, key)
		}
		out[key] += float64(a.Weight()) * multiplier
		return nil
	}
	for _, a := range owned {
		if address.Equal(a.Owner.ID, opts.Addresses.StakingContract) {
			continue
		}
		if err := credit(a, a.Owner.ID); err != nil {
			return nil, err
		}
	}
	for _, a := range staked {
		if err := credit(a, a.ConsumerID()); err != nil {
			return nil, err
		}
	}
	return out, nil
}
