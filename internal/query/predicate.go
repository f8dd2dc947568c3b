package query

import (
	"fmt"

	"github.com/Masterminds/squirrel"
)

// Predicate is a node of the filter tree built from an Intent.
//
// The interface is sealed: only types in this package implement it, so Sqlizer can
// switch over every variant.
type Predicate interface {
	predicateNode()
}

// Comparison is <column> <op> <value> for GT, GTE, LT, LTE, EQ and NE.
// CastFloat binds Value as DOUBLE PRECISION, so a fractional value against an
// integer column is compared as is instead of being narrowed to the column type.
type Comparison struct {
	Column    string
	Op        Comparator
	Value     any
	CastFloat bool
}

// Contains is a substring match of Value within the column's text form.
type Contains struct {
	Column   string
	Value    string
	CastText bool
}

// Conjunction holds when every child holds.
type Conjunction struct {
	Predicates []Predicate
}

// Disjunction holds when any child holds.
type Disjunction struct {
	Predicates []Predicate
}

var comparisonOps = map[Comparator]string{
	GT:  ">",
	GTE: ">=",
	LT:  "<",
	LTE: "<=",
	EQ:  "=",
	NE:  "<>",
}

func (Comparison) predicateNode()  {}
func (Contains) predicateNode()    {}
func (Conjunction) predicateNode() {}
func (Disjunction) predicateNode() {}

// Sqlizer converts a predicate tree into a squirrel expression with bound values.
func Sqlizer(p Predicate) (squirrel.Sqlizer, error) {
	switch n := p.(type) {
	case Comparison:
		col := QuoteIdent(n.Column)
		if n.CastFloat {
			op, ok := comparisonOps[n.Op]
			if !ok {
				return nil, fmt.Errorf("unsupported comparison operator %q", n.Op)
			}
			return squirrel.Expr(col+" "+op+" CAST(? AS DOUBLE PRECISION)", n.Value), nil
		}
		switch n.Op {
		case GT:
			return squirrel.Gt{col: n.Value}, nil
		case GTE:
			return squirrel.GtOrEq{col: n.Value}, nil
		case LT:
			return squirrel.Lt{col: n.Value}, nil
		case LTE:
			return squirrel.LtOrEq{col: n.Value}, nil
		case EQ:
			return squirrel.Eq{col: n.Value}, nil
		case NE:
			return squirrel.NotEq{col: n.Value}, nil
		}
		return nil, fmt.Errorf("unsupported comparison operator %q", n.Op)
	case Contains:
		col := QuoteIdent(n.Column)
		if n.CastText {
			col = fmt.Sprintf("CAST(%s AS TEXT)", col)
		}
		return squirrel.Like{col: "%" + n.Value + "%"}, nil
	case Conjunction:
		parts, err := sqlizeAll(n.Predicates)
		if err != nil {
			return nil, err
		}
		return squirrel.And(parts), nil
	case Disjunction:
		parts, err := sqlizeAll(n.Predicates)
		if err != nil {
			return nil, err
		}
		return squirrel.Or(parts), nil
	case nil:
		return nil, fmt.Errorf("nil predicate")
	}
	return nil, fmt.Errorf("unsupported predicate type %T", p)
}

func sqlizeAll(preds []Predicate) ([]squirrel.Sqlizer, error) {
	parts := make([]squirrel.Sqlizer, 0, len(preds))
	for _, p := range preds {
		s, err := Sqlizer(p)
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}
	return parts, nil
}
