// Package model contains domain models passed between layers.
package model

// StatusWithdrawn marks assets removed from LandWorks; they carry no power.
const StatusWithdrawn = "WITHDRAWN"

// Ref is a subgraph entity reference. For users and registries the id is a
// lowercase hex address.
type Ref struct {
	ID string `json:"id"`
}

// Coordinate is one land unit of a Decentraland asset.
type Coordinate struct {
	ID string `json:"id"`
}

// DecentralandData is the metaverse-specific block of an asset.
type DecentralandData struct {
	ID          string       `json:"id"`
	IsLAND      bool         `json:"isLAND"`
	Coordinates []Coordinate `json:"coordinates"`
}

// Asset is one land or estate unit listed in LandWorks.
type Asset struct {
	ID                string            `json:"id"`
	MetaverseRegistry Ref               `json:"metaverseRegistry"`
	MetaverseAssetID  string            `json:"metaverseAssetId"`
	Owner             Ref               `json:"owner"`
	Consumer          *Ref              `json:"consumer,omitempty"`
	DecentralandData  *DecentralandData `json:"decentralandData,omitempty"`
}

// Weight is the number of coordinates the asset covers.
func (a Asset) Weight() int {
	if a.DecentralandData == nil {
		return 0
	}
	return len(a.DecentralandData.Coordinates)
}

// ConsumerID returns the consumer address or "" when the asset has none.
func (a Asset) ConsumerID() string {
	if a.Consumer == nil {
		return ""
	}
	return a.Consumer.ID
}
