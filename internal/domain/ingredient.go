// Package domain holds the inventory's core types.
package domain

import (
	"fmt"
	"time"
)

// Ingredient is a named stock item with a quantity and unit.
type Ingredient struct {
	Name       string    `json:"name"`
	Quantity   uint32    `json:"quantity"`
	Unit       string    `json:"unit"`
	LastEdited time.Time `json:"last_edited"`
}

// NewIngredient creates an ingredient stamped with the given edit time in UTC.
func NewIngredient(name string, quantity uint32, unit string, editedAt time.Time) *Ingredient {
	return &Ingredient{
		Name:       name,
		Quantity:   quantity,
		Unit:       unit,
		LastEdited: editedAt.UTC(),
	}
}

// String formats the ingredient as "name: quantity unit".
func (i Ingredient) String() string {
	if i.Unit == "" {
		return fmt.Sprintf("%s: %d", i.Name, i.Quantity)
	}
	return fmt.Sprintf("%s: %d %s", i.Name, i.Quantity, i.Unit)
}

// EditedSince reports whether the ingredient was last edited at or after t.
func (i Ingredient) EditedSince(t time.Time) bool {
	return !i.LastEdited.Before(t)
}
