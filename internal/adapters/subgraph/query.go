// Package subgraph queries the LandWorks subgraph for land and estate assets.
package subgraph

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Where is the typed filter of an assets query. Empty fields are omitted.
type Where struct {
	MetaverseRegistryIn []string
	Owner               string
	OwnerIn             []string
	ConsumerIn          []string
	StatusNot           string
}

// AssetQuery describes one page of the assets entity.
type AssetQuery struct {
	Where Where
	First int
	Skip  int
	// Block pins the query to a block height; nil queries the latest state.
	Block *uint64
	// WithConsumer adds consumer { id } to the projection.
	WithConsumer bool
}

// Next returns the query for the following page.
func (q AssetQuery) Next() AssetQuery {
	q.Skip += q.First
	return q
}

// GraphQL renders the query document. Output is deterministic for equal queries.
func (q AssetQuery) GraphQL() string {
	var b strings.Builder
	b.WriteString("{ assets(where: {")
	q.Where.render(&b)
	b.WriteString("}, first: ")
	b.WriteString(strconv.Itoa(q.First))
	b.WriteString(", skip: ")
	b.WriteString(strconv.Itoa(q.Skip))
	if q.Block != nil {
		b.WriteString(", block: {number: ")
		b.WriteString(strconv.FormatUint(*q.Block, 10))
		b.WriteString("}")
	}
	b.WriteString(") { id metaverseRegistry { id } metaverseAssetId owner { id } ")
	if q.WithConsumer {
		b.WriteString("consumer { id } ")
	}
	b.WriteString("decentralandData { id coordinates { id } } } }")
	return b.String()
}

func (w Where) render(b *strings.Builder) {
	first := true
	field := func(name string) {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(name)
		b.WriteString(": ")
	}
	if len(w.MetaverseRegistryIn) > 0 {
		field("metaverseRegistry_in")
		writeList(b, w.MetaverseRegistryIn)
	}
	if w.Owner != "" {
		field("owner")
		writeString(b, w.Owner)
	}
	if len(w.OwnerIn) > 0 {
		field("owner_in")
		writeList(b, w.OwnerIn)
	}
	if len(w.ConsumerIn) > 0 {
		field("consumer_in")
		writeList(b, w.ConsumerIn)
	}
	if w.StatusNot != "" {
		field("status_not")
		writeString(b, w.StatusNot)
	}
}

func writeList(b *strings.Builder, items []string) {
	b.WriteString("[")
	for i, s := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		writeString(b, s)
	}
	b.WriteString("]")
}

// writeString emits a GraphQL string literal. JSON string escaping is a
// subset of GraphQL's.
func writeString(b *strings.Builder, s string) {
	quoted, _ := json.Marshal(s)
	b.Write(quoted)
}
