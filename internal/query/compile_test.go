package query

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersCatalog() StaticCatalog {
	return StaticCatalog{
		{Name: "id", Type: "int"},
		{Name: "first_name", Type: "string"},
		{Name: "age", Type: "int"},
		{Name: "score", Type: "float"},
		{Name: "created_on", Type: "datetime"},
	}
}

func compileSQL(t *testing.T, raw string) (string, []any) {
	t.Helper()
	in, err := Parse(raw)
	require.NoError(t, err)
	sql, args, err := Compile(squirrel.Select("*").From("users"), in, usersCatalog()).ToSql()
	require.NoError(t, err)
	return sql, args
}

func TestCompile_Defaults(t *testing.T) {
	sql, args := compileSQL(t, "")
	assert.Equal(t, `SELECT * FROM users ORDER BY "id" ASC LIMIT 200`, sql)
	assert.Empty(t, args)
}

func TestCompile_SortOrder(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"asc then desc", "sort_by=desc(age),asc(first_name)", `SELECT * FROM users ORDER BY "first_name" ASC, "age" DESC LIMIT 200`},
		{"field order kept", "sort_by=asc(age,id)", `SELECT * FROM users ORDER BY "age" ASC, "id" ASC LIMIT 200`},
		{"unknown field ignored", "sort_by=asc(nope,age)", `SELECT * FROM users ORDER BY "age" ASC LIMIT 200`},
		{"case sensitive match", "sort_by=asc(ID)", `SELECT * FROM users LIMIT 200`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _ := compileSQL(t, tt.query)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestCompile_Comparators(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantSQL  string
		wantArgs []any
	}{
		{"gt int", "age[gt]=5", `"age" > ?`, []any{int64(5)}},
		{"gte float", "score[gte]=2.5", `"score" >= ?`, []any{2.5}},
		{"lt", "age[lt]=9", `"age" < ?`, []any{int64(9)}},
		{"lte", "age[lte]=9", `"age" <= ?`, []any{int64(9)}},
		{"eq default", "age=7", `"age" = ?`, []any{int64(7)}},
		{"ne", "age[ne]=7", `"age" <> ?`, []any{int64(7)}},
		{"not numeric stays string", "age=seven", `"age" = ?`, []any{"seven"}},
		{"text column keeps raw value", "first_name=007", `"first_name" = ?`, []any{"007"}},
		{"like on text", "first_name[like]=an", `"first_name" LIKE ?`, []any{"%an%"}},
		{"like on number casts", "age[like]=4", `CAST("age" AS TEXT) LIKE ?`, []any{"%4%"}},
		{"cursor is gte", "id[cursor]=400", `"id" >= ?`, []any{int64(400)}},
		{"fraction on int column binds as float", "age[gte]=2.5", `"age" >= CAST(? AS DOUBLE PRECISION)`, []any{2.5}},
		{"fraction on int column eq", "id[eq]=2.5", `"id" = CAST(? AS DOUBLE PRECISION)`, []any{2.5}},
		{"datetime column keeps raw fraction", "created_on[lt]=1.5", `"created_on" < ?`, []any{"1.5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := compileSQL(t, tt.query)
			assert.Equal(t, `SELECT * FROM users WHERE `+tt.wantSQL+` ORDER BY "id" ASC LIMIT 200`, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestCompile_UnknownPropertySkipped(t *testing.T) {
	sql, args := compileSQL(t, "password=x&age=3")
	assert.Equal(t, `SELECT * FROM users WHERE "age" = ? ORDER BY "id" ASC LIMIT 200`, sql)
	assert.Equal(t, []any{int64(3)}, args)
}

// The [or] prefix is parsed into the group operator but groups are still AND-combined.
func TestCompile_GroupOrPrefixIsInert(t *testing.T) {
	in, err := Parse("age=1&[or]first_name=bob")
	require.NoError(t, err)
	require.Equal(t, Or, in.Groups[1].Operator)

	sql, args, err := Compile(squirrel.Select("*").From("users"), in, usersCatalog()).ToSql()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM users WHERE ("age" = ? AND "first_name" = ?) ORDER BY "id" ASC LIMIT 200`, sql)
	assert.Equal(t, []any{int64(1), "bob"}, args)

	in, err = Parse("[or]age[or][gte]=5")
	require.NoError(t, err)
	sql, _, err = Compile(squirrel.Select("*").From("users"), in, usersCatalog()).ToSql()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM users WHERE "age" >= ? ORDER BY "id" ASC LIMIT 200`, sql)
}

func TestCompile_IntraGroupOperators(t *testing.T) {
	in := Intent{
		Limit: 10,
		Groups: []FilterGroup{{
			Operator: And,
			Filters: []Filter{
				{Operator: And, Comparator: EQ, Property: "age", Value: "1"},
				{Operator: Or, Comparator: EQ, Property: "age", Value: "2"},
				{Operator: And, Comparator: NE, Property: "first_name", Value: "x"},
			},
		}},
	}

	want := Conjunction{Predicates: []Predicate{
		Disjunction{Predicates: []Predicate{
			Comparison{Column: "age", Op: EQ, Value: int64(1)},
			Comparison{Column: "age", Op: EQ, Value: int64(2)},
		}},
		Comparison{Column: "first_name", Op: NE, Value: "x"},
	}}
	if diff := cmp.Diff(want, BuildPredicate(in, usersCatalog())); diff != "" {
		t.Fatalf("predicate mismatch (-want +got):\n%s", diff)
	}

	sql, args, err := CompileCount(squirrel.Select("COUNT(*)").From("users"), in, usersCatalog()).ToSql()
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM users WHERE (("age" = ? OR "age" = ?) AND "first_name" <> ?)`, sql)
	assert.Equal(t, []any{int64(1), int64(2), "x"}, args)
}

func TestCompile_CountIgnoresSortAndLimit(t *testing.T) {
	in, err := Parse("limit=5&sort_by=desc(age)&age[gt]=1")
	require.NoError(t, err)
	sql, _, err := CompileCount(squirrel.Select("COUNT(*)").From("users"), in, usersCatalog()).ToSql()
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM users WHERE "age" > ?`, sql)
}

func TestCompile_DoesNotMutateBase(t *testing.T) {
	base := squirrel.Select("*").From("users")
	in, err := Parse("limit=3&age=4")
	require.NoError(t, err)
	_ = Compile(base, in, usersCatalog())

	sql, args, err := base.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users", sql)
	assert.Empty(t, args)
}

func TestCompile_DollarPlaceholders(t *testing.T) {
	in, err := Parse("age[gt]=1&first_name[like]=a")
	require.NoError(t, err)
	base := squirrel.Select("*").From("users").PlaceholderFormat(squirrel.Dollar)
	sql, _, err := Compile(base, in, usersCatalog()).ToSql()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM users WHERE ("age" > $1 AND "first_name" LIKE $2) ORDER BY "id" ASC LIMIT 200`, sql)
}

func TestCompile_FractionOnIntColumnDollar(t *testing.T) {
	in, err := Parse("id[eq]=2.5")
	require.NoError(t, err)
	base := squirrel.Select("COUNT(*)").From("users").PlaceholderFormat(squirrel.Dollar)
	sql, args, err := CompileCount(base, in, usersCatalog()).ToSql()
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM users WHERE "id" = CAST($1 AS DOUBLE PRECISION)`, sql)
	assert.Equal(t, []any{2.5}, args)
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, int64(-12), Coerce("-12"))
	assert.Equal(t, 1.5, Coerce("1.5"))
	assert.Equal(t, "NaN", Coerce("NaN"))
	assert.Equal(t, "abc", Coerce("abc"))
}

func TestSqlizer_NilPredicate(t *testing.T) {
	_, err := Sqlizer(nil)
	assert.Error(t, err)
}
