// Package fetcher retrieves the LandWorks assets that give addresses voting
// power: assets they own and staked assets they consume.
package fetcher

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/okian/landpower/internal/adapters/subgraph"
	"github.com/okian/landpower/internal/domain/address"
	"github.com/okian/landpower/internal/domain/batch"
	"github.com/okian/landpower/internal/domain/model"
	"github.com/okian/landpower/pkg/logger"
	"github.com/okian/landpower/pkg/metrics"
)

// Defaults.
const (
	DefaultPageSize    = 1000
	DefaultConcurrency = 4
)

// Kind labels which relation a fetch follows.
type Kind string

// Fetch kinds.
const (
	KindOwner    Kind = "owner"
	KindConsumer Kind = "consumer"
)

// Fetcher pages through the subgraph in address batches.
type Fetcher struct {
	querier     subgraph.Querier
	batchSize   int
	pageSize    int
	concurrency int
	logger      logger.Logger
}

// New creates a Fetcher over q.
func New(q subgraph.Querier, opts ...Option) *Fetcher {
	f := &Fetcher{
		querier:     q,
		batchSize:   batch.MaxFilterLength,
		pageSize:    DefaultPageSize,
		concurrency: DefaultConcurrency,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Owners returns every non-withdrawn land or estate owned by one of addrs.
func (f *Fetcher) Owners(ctx context.Context, addrs []string, opts model.Options, snapshot *uint64) ([]model.Asset, error) {
	registries := opts.Registries()
	return f.fetch(ctx, KindOwner, addrs, opts.Subgraphs.LandWorks, func(b []string) subgraph.AssetQuery {
		return subgraph.AssetQuery{
			Where: subgraph.Where{
				MetaverseRegistryIn: registries,
				OwnerIn:             b,
				StatusNot:           model.StatusWithdrawn,
			},
			First: f.pageSize,
			Block: snapshot,
		}
	})
}

// StakedConsumers returns every non-withdrawn land or estate held by the
// staking contract whose consumer is one of addrs.
func (f *Fetcher) StakedConsumers(ctx context.Context, addrs []string, opts model.Options, snapshot *uint64) ([]model.Asset, error) {
	registries := opts.Registries()
	staking := address.Lower(opts.Addresses.StakingContract)
	return f.fetch(ctx, KindConsumer, addrs, opts.Subgraphs.LandWorks, func(b []string) subgraph.AssetQuery {
		return subgraph.AssetQuery{
			Where: subgraph.Where{
				MetaverseRegistryIn: registries,
				Owner:               staking,
				ConsumerIn:          b,
				StatusNot:           model.StatusWithdrawn,
			},
			First:        f.pageSize,
			Block:        snapshot,
			WithConsumer: true,
		}
	})
}

// fetch queries every batch, at most f.concurrency at a time, and returns
// the pages concatenated in batch order.
func (f *Fetcher) fetch(ctx context.Context, kind Kind, addrs []string, endpoint string, query func([]string) subgraph.AssetQuery) ([]model.Asset, error) {
	batches := batch.Split(address.LowerAll(addrs), f.batchSize)
	if len(batches) == 0 {
		return nil, nil
	}

	results := make([][]model.Asset, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, b := range batches {
		g.Go(func() error {
			metrics.RecordSubgraphBatch(string(kind))
			assets, err := f.paginate(gctx, kind, endpoint, query(b))
			if err != nil {
				return fmt.Errorf("%s batch %d/%d: %w", kind, i+1, len(batches), err)
			}
			results[i] = assets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	out := make([]model.Asset, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}
	f.logger.Debug(ctx, "fetched assets",
		logger.String("kind", string(kind)),
		logger.Int("batches", len(batches)),
		logger.Int("assets", total),
	)
	return out, nil
}

// paginate requests pages of q.First records, advancing skip by q.First,
// until a page comes back short.
func (f *Fetcher) paginate(ctx context.Context, kind Kind, endpoint string, q subgraph.AssetQuery) ([]model.Asset, error) {
	var out []model.Asset
	for {
		page, err := f.querier.Assets(ctx, endpoint, q)
		if err != nil {
			return nil, fmt.Errorf("skip %d: %w", q.Skip, err)
		}
		metrics.RecordSubgraphPage(string(kind), len(page))
		out = append(out, page...)
		if len(page) != q.First {
			return out, nil
		}
		q = q.Next()
	}
}
