package query

// PageCount is ceil(total / limit).
func PageCount(total, limit uint64) uint64 {
	if limit == 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}

// CurrentPage locates the page that starts `remaining` rows before the end:
// floor((total-remaining)/limit) + 1. For a fractional quotient this equals its
// ceiling, so both the aligned and unaligned cases reduce to one formula.
func CurrentPage(total, remaining, limit uint64) uint64 {
	if limit == 0 {
		return 0
	}
	if remaining > total {
		remaining = total
	}
	return (total-remaining)/limit + 1
}
