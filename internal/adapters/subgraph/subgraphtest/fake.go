// Package subgraphtest provides an in-memory subgraph for tests.
package subgraphtest

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/okian/landpower/internal/adapters/subgraph"
	"github.com/okian/landpower/internal/domain/model"
)

// StatusListed is the status of an asset open for renting.
const StatusListed = "LISTED"

// Row is one stored asset with the indexing metadata the filters look at.
type Row struct {
	Asset  model.Asset
	Status string
	// Block is the height at which the row appears; 0 means genesis.
	Block uint64
}

// Fake implements subgraph.Querier by evaluating AssetQuery filters over Rows
// in insertion order.
type Fake struct {
	mu    sync.Mutex
	rows  []Row
	calls []subgraph.AssetQuery
	// Fail, when set, is consulted before every query.
	Fail func(q subgraph.AssetQuery) error
}

var _ subgraph.Querier = (*Fake)(nil)

// New returns a Fake holding rows.
func New(rows ...Row) *Fake {
	return &Fake{rows: rows}
}

// Add appends rows.
func (f *Fake) Add(rows ...Row) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, rows...)
}

// Calls returns a copy of every query received.
func (f *Fake) Calls() []subgraph.AssetQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Assets implements subgraph.Querier.
func (f *Fake) Assets(ctx context.Context, _ string, q subgraph.AssetQuery) ([]model.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, q)
	fail := f.Fail
	rows := slices.Clone(f.rows)
	f.mu.Unlock()

	if fail != nil {
		if err := fail(q); err != nil {
			return nil, err
		}
	}

	var matched []model.Asset
	for _, r := range rows {
		if matches(r, q) {
			a := r.Asset
			if !q.WithConsumer {
				a.Consumer = nil
			}
			matched = append(matched, a)
		}
	}
	if q.Skip >= len(matched) {
		return []model.Asset{}, nil
	}
	end := min(q.Skip+q.First, len(matched))
	return matched[q.Skip:end], nil
}

func matches(r Row, q subgraph.AssetQuery) bool {
	w := q.Where
	if q.Block != nil && r.Block > *q.Block {
		return false
	}
	if len(w.MetaverseRegistryIn) > 0 && !slices.Contains(w.MetaverseRegistryIn, r.Asset.MetaverseRegistry.ID) {
		return false
	}
	if w.Owner != "" && w.Owner != r.Asset.Owner.ID {
		return false
	}
	if len(w.OwnerIn) > 0 && !slices.Contains(w.OwnerIn, r.Asset.Owner.ID) {
		return false
	}
	if len(w.ConsumerIn) > 0 && !slices.Contains(w.ConsumerIn, r.Asset.ConsumerID()) {
		return false
	}
	if w.StatusNot != "" && strings.EqualFold(w.StatusNot, r.Status) {
		return false
	}
	return true
}

// Asset builds a model.Asset with n coordinates. Addresses are stored
// lowercase, as the subgraph does.
func Asset(id, registry, owner, consumer string, n int) model.Asset {
	a := model.Asset{
		ID:                id,
		MetaverseRegistry: model.Ref{ID: strings.ToLower(registry)},
		MetaverseAssetID:  id,
		Owner:             model.Ref{ID: strings.ToLower(owner)},
		DecentralandData:  &model.DecentralandData{ID: id},
	}
	if consumer != "" {
		a.Consumer = &model.Ref{ID: strings.ToLower(consumer)}
	}
	for i := 0; i < n; i++ {
		a.DecentralandData.Coordinates = append(a.DecentralandData.Coordinates, model.Coordinate{ID: id + "-" + strconv.Itoa(i)})
	}
	return a
}
