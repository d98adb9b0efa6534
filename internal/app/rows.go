package app

import (
	"strconv"
	"strings"
)

// Spreadsheet exports disagree on column names, so each field is read
// through a list of accepted aliases in priority order.
var (
	isbnAliases    = []string{"isbn", "ean", "barcode"}
	titleAliases   = []string{"title", "name", "book_title"}
	authorAliases  = []string{"author", "authors", "writer"}
	pubAliases     = []string{"publisher", "imprint"}
	qtyAliases     = []string{"qty", "quantity", "units", "stock", "available"}
	priceAliases   = []string{"list_price", "price", "mrp"}
	shelfAliases   = []string{"shelf_location", "shelf", "location"}
	summaryAliases = []string{"summary", "description"}
)

// rowString returns the first non-empty value among the aliased keys.
func rowString(row map[string]any, aliases []string) string {
	for _, key := range aliases {
		v, ok := row[key]
		if !ok {
			continue
		}
		s := strings.TrimSpace(toString(v))
		if s != "" {
			return s
		}
	}
	return ""
}

// rowInt coerces the first present aliased value to an int. Missing or
// non-numeric values yield zero rather than an error.
func rowInt(row map[string]any, aliases []string) int {
	for _, key := range aliases {
		v, ok := row[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		case string:
			s := strings.TrimSpace(n)
			if s == "" {
				continue
			}
			if i, err := strconv.Atoi(s); err == nil {
				return i
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return int(f)
			}
		}
	}
	return 0
}

// rowFloat coerces the first present aliased value to a float64.
func rowFloat(row map[string]any, aliases []string) float64 {
	for _, key := range aliases {
		v, ok := row[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		case string:
			s := strings.TrimSpace(n)
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		// ISBN columns often arrive as numbers from spreadsheet exports.
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}
