package models

import (
	"fmt"
	"strings"
)

// Field names as they appear on the wire. Constants so handlers, validation
// and tests all refer to the same spelling.
const (
	FieldName     = "name"
	FieldDetail   = "detail"
	FieldPrice    = "price"
	FieldStock    = "stock"
	FieldCategory = "category"
	FieldImageRef = "image_ref"
	FieldID       = "id"
	FieldKind     = "kind"
	FieldQuantity = "quantity"
)

// FieldViolation names a single missing or invalid request field. A 400
// response carries the full list rather than one merged message.
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func requireText(list []FieldViolation, field string, val *string) []FieldViolation {
	if val == nil {
		return append(list, FieldViolation{Field: field, Reason: "is required"})
	}
	if strings.TrimSpace(*val) == "" {
		return append(list, FieldViolation{Field: field, Reason: "must be non-empty text"})
	}
	return list
}

func requireNumeric(list []FieldViolation, field string, n Numeric) []FieldViolation {
	switch {
	case !n.Present:
		return append(list, FieldViolation{Field: field, Reason: "is required"})
	case !n.Valid:
		return append(list, FieldViolation{Field: field, Reason: "must be a numeric value"})
	}
	return list
}

// Validate checks the statically declared product schema: name, detail and
// category must be present non-empty text, price and stock must parse as
// numbers. Value ranges are deliberately not checked.
func (in ProductInput) Validate() []FieldViolation {
	var v []FieldViolation
	v = requireText(v, FieldName, in.Name)
	v = requireText(v, FieldDetail, in.Detail)
	v = requireNumeric(v, FieldPrice, in.Price)
	v = requireNumeric(v, FieldStock, in.Stock)
	v = requireText(v, FieldCategory, in.Category)
	return v
}

// Validate checks the sauce schema: name present non-empty, price and stock
// numeric.
func (in SauceInput) Validate() []FieldViolation {
	var v []FieldViolation
	v = requireText(v, FieldName, in.Name)
	v = requireNumeric(v, FieldPrice, in.Price)
	v = requireNumeric(v, FieldStock, in.Stock)
	return v
}

// Validate checks one stock line. pos is the zero-based position in the batch
// and prefixes the reported field names, e.g. "items[2].kind".
func (in StockLineInput) Validate(pos int) []FieldViolation {
	prefix := fmt.Sprintf("items[%d].", pos)
	var v []FieldViolation
	if in.ID == nil {
		v = append(v, FieldViolation{Field: prefix + FieldID, Reason: "is required"})
	}
	switch {
	case in.Kind == nil:
		v = append(v, FieldViolation{Field: prefix + FieldKind, Reason: "is required"})
	case StockKind(*in.Kind) != KindProduct && StockKind(*in.Kind) != KindSauce:
		v = append(v, FieldViolation{Field: prefix + FieldKind, Reason: `must be "product" or "sauce"`})
	}
	v = requireNumeric(v, prefix+FieldQuantity, in.Quantity)
	return v
}
