package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"CursorAPI/internal/logger"
)

// ErrLimitOverflow is returned when a limit parameter does not fit the limit type.
var ErrLimitOverflow = errors.New("limit out of range")

const (
	limitKey  = "limit"
	sortByKey = "sort_by"
)

// maxLimitDigits bounds the limit text considered before numeric parsing.
const maxLimitDigits = 3

var groupPrefixes = []struct {
	text string
	op   Operator
}{
	{"[or]", Or},
	{"[OR]", Or},
	{"[and]", And},
	{"[AND]", And},
}

// Parse turns a raw URL query string into an Intent.
//
// Parsing is lenient: fragments that do not fit the grammar are dropped without error.
// The only failure is a limit that overflows the limit type (ErrLimitOverflow).
func Parse(raw string) (Intent, error) {
	in := Intent{Limit: DefaultLimit}
	limitSet := false
	sortSeen := false

	for _, param := range strings.Split(raw, "&") {
		if param == "" {
			continue
		}
		first := strings.IndexByte(param, '=')
		if first < 0 {
			continue
		}
		key := decode(param[:first])
		value := decode(param[strings.LastIndexByte(param, '=')+1:])

		switch key {
		case limitKey:
			if limitSet || !isLimitText(value) {
				continue
			}
			n, err := strconv.ParseUint(value, 10, 8)
			if err != nil {
				return Intent{}, fmt.Errorf("%w: %s", ErrLimitOverflow, value)
			}
			if n == 0 {
				continue
			}
			in.Limit = n
			limitSet = true
		case sortByKey:
			if sortSeen {
				continue
			}
			sortSeen = true
			in.Sort = parseSort(value)
		default:
			if g, ok := parseFilter(key, value); ok {
				in.Groups = append(in.Groups, g)
			}
		}
	}

	if len(in.Sort) == 0 {
		in.Sort = SortSpecs{Asc: {IDField}}
	}
	return in, nil
}

func decode(s string) string {
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	return s
}

func isLimitText(s string) bool {
	if s == "" || len(s) > maxLimitDigits {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// parseSort reads "asc(a,b),desc(c)". A later group for the same direction replaces
// the earlier one.
func parseSort(spec string) SortSpecs {
	out := SortSpecs{}
	for _, group := range strings.Split(spec, "),") {
		group = strings.TrimSuffix(group, ")")
		open := strings.IndexByte(group, '(')
		if open < 0 {
			continue
		}
		dir := parseDirection(group[:open])

		var fields []string
		for _, f := range strings.Split(group[open+1:], ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
		if len(fields) == 0 {
			continue
		}
		out[dir] = fields
	}
	return out
}

func parseDirection(s string) Direction {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Asc):
		return Asc
	case string(Desc):
		return Desc
	}
	logger.Warn("sort_direction_unknown", map[string]any{
		"direction": s,
		"fallback":  string(Asc),
	})
	return Asc
}

// parseFilter reads "[or]property[and][gte]" plus its value into a one-filter group.
func parseFilter(lhs, value string) (FilterGroup, bool) {
	group := FilterGroup{Operator: And}
	for _, p := range groupPrefixes {
		if strings.HasPrefix(lhs, p.text) {
			group.Operator = p.op
			lhs = lhs[len(p.text):]
			break
		}
	}

	property := lhs
	var segments []string
	if open := strings.IndexByte(lhs, '['); open >= 0 {
		property = lhs[:open]
		segments = bracketSegments(lhs[open:])
	}
	if property == "" || value == "" {
		return FilterGroup{}, false
	}

	f := Filter{
		Operator:   And,
		Comparator: EQ,
		Property:   property,
		Value:      value,
	}
	for i, seg := range segments {
		// every segment may name the comparator; the last match wins
		if c, ok := parseComparator(seg); ok {
			f.Comparator = c
		}
		if i == 0 {
			if op, ok := parseOperator(seg); ok {
				f.Operator = op
			}
		}
	}

	group.Filters = []Filter{f}
	return group, true
}

// bracketSegments splits "[a][b]" into ["a", "b"].
func bracketSegments(s string) []string {
	parts := strings.Split(s, "[")
	out := make([]string, 0, len(parts))
	for _, p := range parts[1:] {
		if end := strings.IndexByte(p, ']'); end >= 0 {
			p = p[:end]
		}
		out = append(out, p)
	}
	return out
}
