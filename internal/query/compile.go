package query

import (
	"math"
	"strconv"

	"github.com/Masterminds/squirrel"
)

// Compile applies the intent's row cap, sort clauses and filters to base.
// It never touches the backend.
func Compile(base squirrel.SelectBuilder, in Intent, cat Catalog) squirrel.SelectBuilder {
	sb := base.Limit(in.Limit)
	for _, clause := range OrderClauses(in, cat) {
		sb = sb.OrderBy(clause)
	}
	return CompileCount(sb, in, cat)
}

// CompileCount applies only the filters. Count queries carry no ordering or cap.
func CompileCount(base squirrel.SelectBuilder, in Intent, cat Catalog) squirrel.SelectBuilder {
	if pred := BuildPredicate(in, cat); pred != nil {
		return base.Where(predicateSQL{pred})
	}
	return base
}

// OrderClauses resolves the sort lists against the catalog, ASC first then DESC.
// Fields unknown to the catalog are skipped.
func OrderClauses(in Intent, cat Catalog) []string {
	var clauses []string
	for _, dir := range directions {
		for _, field := range in.Sort[dir] {
			col, ok := findColumn(cat, field)
			if !ok {
				continue
			}
			clauses = append(clauses, QuoteIdent(col.Name)+" "+string(dir))
		}
	}
	return clauses
}

// BuildPredicate builds the filter tree for the intent, or nil when nothing applies.
// Groups are always AND-combined; the group operator is not consulted.
func BuildPredicate(in Intent, cat Catalog) Predicate {
	var groups []Predicate
	for _, g := range in.Groups {
		if p := groupPredicate(g, cat); p != nil {
			groups = append(groups, p)
		}
	}
	switch len(groups) {
	case 0:
		return nil
	case 1:
		return groups[0]
	}
	return Conjunction{Predicates: groups}
}

// groupPredicate folds the group's filters left to right, joining each subsequent
// filter with its own operator.
func groupPredicate(g FilterGroup, cat Catalog) Predicate {
	var acc Predicate
	for _, f := range g.Filters {
		p, ok := filterPredicate(f, cat)
		if !ok {
			continue
		}
		switch {
		case acc == nil:
			acc = p
		case f.Operator == Or:
			acc = Disjunction{Predicates: []Predicate{acc, p}}
		default:
			acc = Conjunction{Predicates: []Predicate{acc, p}}
		}
	}
	return acc
}

func filterPredicate(f Filter, cat Catalog) (Predicate, bool) {
	col, ok := findColumn(cat, f.Property)
	if !ok {
		return nil, false
	}
	switch f.Comparator {
	case Like:
		return Contains{Column: col.Name, Value: f.Value, CastText: col.Type != "string"}, true
	case Cursor:
		return comparison(col, GTE, f.Value), true
	case GT, GTE, LT, LTE, EQ, NE:
		return comparison(col, f.Comparator, f.Value), true
	}
	return nil, false
}

func comparison(col Column, op Comparator, raw string) Comparison {
	v := bindValue(col, raw)
	_, fractional := v.(float64)
	return Comparison{Column: col.Name, Op: op, Value: v, CastFloat: fractional && col.Type != "float"}
}

func bindValue(col Column, raw string) any {
	if isTextType(col.Type) {
		return raw
	}
	return Coerce(raw)
}

// Coerce converts raw to an int64, else a finite float64, else leaves it a string.
func Coerce(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return raw
}

// predicateSQL defers tree-to-SQL conversion until the builder renders.
type predicateSQL struct {
	p Predicate
}

func (s predicateSQL) ToSql() (string, []any, error) {
	sq, err := Sqlizer(s.p)
	if err != nil {
		return "", nil, err
	}
	return sq.ToSql()
}
