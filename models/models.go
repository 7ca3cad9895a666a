package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Product is a row in the products table. The ID is assigned by the backend
// and immutable once created. ImageRef, when set, is the public URL of a blob
// in the storage bucket.
type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Detail   string  `json:"detail"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	ImageRef string  `json:"image_ref,omitempty"`
	Category string  `json:"category"`
}

// Sauce is a row in the sauces table.
type Sauce struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// Numeric is a JSON scalar that accepts either a number or a numeric string,
// which is the check the public API has always applied to price and stock
// fields. Decoding never fails: absence and invalidity are recorded on the
// value so validation can name the offending field instead of rejecting the
// whole body with a decode error.
type Numeric struct {
	Value   float64
	Present bool
	Valid   bool
}

func (n *Numeric) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	n.Present = true
	if strings.HasPrefix(s, `"`) {
		var quoted string
		if err := json.Unmarshal(b, &quoted); err != nil {
			return nil
		}
		s = strings.TrimSpace(quoted)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	n.Value = v
	n.Valid = true
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.Present || !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// ProductInput is the request body for product create and update. Required
// text fields are pointers so a missing key is distinguishable from an empty
// one.
type ProductInput struct {
	Name     *string `json:"name"`
	Detail   *string `json:"detail"`
	Price    Numeric `json:"price"`
	Stock    Numeric `json:"stock"`
	ImageRef *string `json:"image_ref"`
	Category *string `json:"category"`
}

// SauceInput is the request body for sauce create and update.
type SauceInput struct {
	Name  *string `json:"name"`
	Price Numeric `json:"price"`
	Stock Numeric `json:"stock"`
}

// StockKind selects which collection a stock line targets.
type StockKind string

const (
	KindProduct StockKind = "product"
	KindSauce   StockKind = "sauce"
)

// StockLine is one validated entry of a stock-decrement batch. It is only
// ever an input value, never persisted on its own.
type StockLine struct {
	ID       int
	Kind     StockKind
	Quantity int
}

// StockLineInput is the wire form of a stock line before validation.
type StockLineInput struct {
	ID       *int    `json:"id"`
	Kind     *string `json:"kind"`
	Quantity Numeric `json:"quantity"`
}

// ToLine converts a validated input into a StockLine. Callers must have run
// Validate first.
func (in StockLineInput) ToLine() StockLine {
	return StockLine{
		ID:       *in.ID,
		Kind:     StockKind(*in.Kind),
		Quantity: int(in.Quantity.Value),
	}
}

// LineNotFoundError reports a stock line whose target row does not exist.
type LineNotFoundError struct {
	Kind StockKind
	ID   int
}

func (e *LineNotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Kind, e.ID)
}

// InsufficientStockError reports a decrement larger than the current stock of
// the target row.
type InsufficientStockError struct {
	Kind      StockKind
	ID        int
	Current   int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s with ID %d: current stock %d, requested %d",
		e.Kind, e.ID, e.Current, e.Requested)
}

// ImageDeleteResult says what an image delete actually did, so callers can
// log or retry deliberately instead of guessing from a swallowed error.
type ImageDeleteResult int

const (
	// ImageDeleted means the backend confirmed the blob removal.
	ImageDeleted ImageDeleteResult = iota
	// ImageDeleteSkipped means there was nothing to delete: no URL, or a URL
	// that does not reference the configured bucket.
	ImageDeleteSkipped
	// ImageDeleteFailed means the backend call was made and failed. The blob
	// may be orphaned.
	ImageDeleteFailed
)
