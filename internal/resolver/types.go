package resolver

import (
	"context"

	"CursorAPI/internal/model"
	"CursorAPI/internal/query"

	"github.com/Masterminds/squirrel"
)

// Backend executes compiled queries. Placeholders are the backend's concern.
type Backend interface {
	Select(ctx context.Context, sb squirrel.SelectBuilder) ([]map[string]any, error)
	Count(ctx context.Context, sb squirrel.SelectBuilder) (uint64, error)
}

// CatalogSource resolves the column catalog of a resource.
type CatalogSource interface {
	Catalog(ctx context.Context, res *model.Resource) (query.Catalog, error)
}

// Page is one resolved page plus its pagination metadata.
// Next and Previous hold identifier values, 0 when there is no such page.
type Page struct {
	Rows        []map[string]any
	Count       uint64
	Page        uint64
	PageCount   uint64
	Limit       uint64
	CursorField string
	Next        any
	Previous    any
}

// Round trip names, used in errors, logs and metrics.
const (
	stagePage      = "page"
	stageRemaining = "remaining_count"
	stageTotal     = "total_count"
	stageNext      = "next_probe"
	stagePrevious  = "previous_probe"
)
