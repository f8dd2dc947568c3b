package query

import (
	"math"
	"strings"
)

// DefaultLimit is the row cap used when the query string carries no usable limit.
const DefaultLimit uint64 = 200

// MaxLimit is the largest limit the query string may request.
const MaxLimit uint64 = math.MaxUint8

// IDField is the identifier column every listable resource is paginated by.
const IDField = "id"

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// directions fixes the order in which sort lists are applied.
var directions = []Direction{Asc, Desc}

type Operator string

const (
	And Operator = "AND"
	Or  Operator = "OR"
)

type Comparator string

const (
	GT     Comparator = "GT"
	GTE    Comparator = "GTE"
	LT     Comparator = "LT"
	LTE    Comparator = "LTE"
	EQ     Comparator = "EQ"
	NE     Comparator = "NE"
	Like   Comparator = "LIKE"
	Cursor Comparator = "CURSOR"
)

var comparators = []Comparator{GT, GTE, LT, LTE, EQ, NE, Like, Cursor}

// parseComparator matches s case-insensitively against the comparator keywords.
func parseComparator(s string) (Comparator, bool) {
	upper := strings.ToUpper(s)
	for _, c := range comparators {
		if string(c) == upper {
			return c, true
		}
	}
	return "", false
}

func parseOperator(s string) (Operator, bool) {
	switch strings.ToUpper(s) {
	case string(And):
		return And, true
	case string(Or):
		return Or, true
	}
	return "", false
}

// Filter is a single property comparison. Value stays a raw string until compile time.
type Filter struct {
	Operator   Operator
	Comparator Comparator
	Property   string
	Value      string
}

// FilterGroup holds one or more filters. Operator records how the group asked to be
// combined with its siblings; the compiler always AND-combines groups.
type FilterGroup struct {
	Operator Operator
	Filters  []Filter
}

// SortSpecs maps a direction to its ordered field list. At most one list per direction.
type SortSpecs map[Direction][]string

// Intent is the structured form of a list request's query string.
// Values are treated as immutable: the With* methods return modified copies.
type Intent struct {
	Limit  uint64
	Sort   SortSpecs
	Groups []FilterGroup
}

// NewIntent returns the intent of an empty query string.
func NewIntent() Intent {
	return Intent{
		Limit: DefaultLimit,
		Sort:  SortSpecs{Asc: {IDField}},
	}
}

// Clone returns a deep copy.
func (in Intent) Clone() Intent {
	out := Intent{Limit: in.Limit}
	if in.Sort != nil {
		out.Sort = make(SortSpecs, len(in.Sort))
		for dir, fields := range in.Sort {
			out.Sort[dir] = append([]string(nil), fields...)
		}
	}
	if in.Groups != nil {
		out.Groups = make([]FilterGroup, len(in.Groups))
		for i, g := range in.Groups {
			out.Groups[i] = FilterGroup{
				Operator: g.Operator,
				Filters:  append([]Filter(nil), g.Filters...),
			}
		}
	}
	return out
}

// HasCursor reports whether any filter uses the CURSOR comparator.
func (in Intent) HasCursor() bool {
	for _, g := range in.Groups {
		for _, f := range g.Filters {
			if f.Comparator == Cursor {
				return true
			}
		}
	}
	return false
}

// WithoutCursor returns a copy with every CURSOR filter removed.
// Groups left without filters are dropped.
func (in Intent) WithoutCursor() Intent {
	out := in.Clone()
	groups := out.Groups[:0]
	for _, g := range out.Groups {
		kept := g.Filters[:0]
		for _, f := range g.Filters {
			if f.Comparator != Cursor {
				kept = append(kept, f)
			}
		}
		if len(kept) == 0 {
			continue
		}
		g.Filters = kept
		groups = append(groups, g)
	}
	if len(groups) == 0 {
		groups = nil
	}
	out.Groups = groups
	return out
}

// WithDescendingID returns a copy sorted by the identifier field, descending only.
func (in Intent) WithDescendingID() Intent {
	out := in.Clone()
	out.Sort = SortSpecs{Desc: {IDField}}
	return out
}

// WithLessThan returns a copy with an extra LT filter group appended.
func (in Intent) WithLessThan(property, value string) Intent {
	out := in.Clone()
	out.Groups = append(out.Groups, FilterGroup{
		Operator: And,
		Filters: []Filter{{
			Operator:   And,
			Comparator: LT,
			Property:   property,
			Value:      value,
		}},
	})
	return out
}

// WithLimit returns a copy with a different row cap.
func (in Intent) WithLimit(limit uint64) Intent {
	out := in.Clone()
	out.Limit = limit
	return out
}
