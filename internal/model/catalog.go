package model

import "time"

type BaseModel struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type ItemKind string

const (
	ItemKindMilk ItemKind = "milk"
	ItemKindRTDE ItemKind = "rtde"
)

func (k ItemKind) Valid() bool {
	return k == ItemKindMilk || k == ItemKindRTDE
}

// CodePrefix is the leading segment of generated item codes.
func (k ItemKind) CodePrefix() string {
	if k == ItemKindMilk {
		return "MLK"
	}
	return "RTD"
}

// CatalogItem is a trackable unit (a milk type or a display item) with its par level.
type CatalogItem struct {
	BaseModel
	Kind      ItemKind `db:"kind" json:"kind"`
	Code      string   `db:"code" json:"code"`
	Name      string   `db:"name" json:"name"`
	IsActive  bool     `db:"is_active" json:"is_active"`
	SortOrder int      `db:"sort_order" json:"sort_order"`
	Par       int      `db:"par" json:"par"`
}
