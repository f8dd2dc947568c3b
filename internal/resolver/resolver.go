package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CursorAPI/internal/logger"
	"CursorAPI/internal/metrics"
	"CursorAPI/internal/model"
	"CursorAPI/internal/query"

	"github.com/Masterminds/squirrel"
	"golang.org/x/sync/errgroup"
)

type Resolver struct {
	Backend  Backend
	Catalogs CatalogSource
}

func New(backend Backend, catalogs CatalogSource) *Resolver {
	return &Resolver{Backend: backend, Catalogs: catalogs}
}

// Главный резолвер: страница и пять запросов пагинации.
func (r *Resolver) Resolve(ctx context.Context, res *model.Resource, in query.Intent) (*Page, error) {
	cat, err := r.catalog(ctx, res)
	if err != nil {
		return nil, err
	}
	base := selectBase(res, cat)

	// 1) основная страница
	rows, err := r.selectRows(ctx, res, stagePage, query.Compile(base, in, cat))
	if err != nil {
		return nil, err
	}

	page := &Page{
		Rows:        rows,
		Limit:       in.Limit,
		CursorField: query.IDField,
		Next:        0,
		Previous:    0,
	}

	// 2..5 независимы друг от друга
	var remaining, total uint64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := r.count(gctx, res, stageRemaining, query.CompileCount(countBase(res), in, cat))
		remaining = n
		return err
	})
	g.Go(func() error {
		n, err := r.count(gctx, res, stageTotal, query.CompileCount(countBase(res), in.WithoutCursor(), cat))
		total = n
		return err
	})
	if len(rows) > 0 {
		g.Go(func() error {
			probe, err := r.selectRows(gctx, res, stageNext, query.Compile(base, in.WithLimit(in.Limit+1), cat))
			if err != nil {
				return err
			}
			if uint64(len(rows)) == in.Limit && uint64(len(probe)) > in.Limit {
				page.Next = rowID(probe[len(probe)-1])
			}
			return nil
		})
		g.Go(func() error {
			prevIntent := in.WithoutCursor().
				WithDescendingID().
				WithLessThan(query.IDField, fmt.Sprint(rowID(rows[0])))
			probe, err := r.selectRows(gctx, res, stagePrevious, query.Compile(base, prevIntent, cat))
			if err != nil {
				return err
			}
			if len(probe) > 0 {
				page.Previous = rowID(probe[len(probe)-1])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page.Count = total
	page.PageCount = query.PageCount(total, in.Limit)
	page.Page = query.CurrentPage(total, remaining, in.Limit)
	return page, nil
}

// Count returns the number of rows matching the intent's filters, cursor ignored.
func (r *Resolver) Count(ctx context.Context, res *model.Resource, in query.Intent) (uint64, error) {
	cat, err := r.catalog(ctx, res)
	if err != nil {
		return 0, err
	}
	return r.count(ctx, res, stageTotal, query.CompileCount(countBase(res), in.WithoutCursor(), cat))
}

func (r *Resolver) catalog(ctx context.Context, res *model.Resource) (query.Catalog, error) {
	if res == nil {
		return nil, errors.New("resolver: resource is nil")
	}
	if r.Backend == nil {
		return nil, errors.New("resolver: backend is nil")
	}
	if r.Catalogs == nil {
		if res.Declared() {
			return query.StaticCatalog(res.Columns), nil
		}
		return nil, fmt.Errorf("resolver: no catalog for resource %q", res.Name)
	}
	cat, err := r.Catalogs.Catalog(ctx, res)
	if err != nil {
		logger.Error("catalog_error", map[string]any{
			"resource": res.Name,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("catalog %s: %w", res.Name, err)
	}
	return cat, nil
}

func (r *Resolver) selectRows(ctx context.Context, res *model.Resource, stage string, sb squirrel.SelectBuilder) ([]map[string]any, error) {
	started := time.Now()
	rows, err := r.Backend.Select(ctx, sb)
	metrics.ObserveRoundTrip(res.Name, stage, started, err)
	if err != nil {
		logger.Error("backend_error", map[string]any{
			"resource": res.Name,
			"stage":    stage,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("%s: %w", stage, err)
	}
	return rows, nil
}

func (r *Resolver) count(ctx context.Context, res *model.Resource, stage string, sb squirrel.SelectBuilder) (uint64, error) {
	started := time.Now()
	n, err := r.Backend.Count(ctx, sb)
	metrics.ObserveRoundTrip(res.Name, stage, started, err)
	if err != nil {
		logger.Error("backend_error", map[string]any{
			"resource": res.Name,
			"stage":    stage,
			"error":    err.Error(),
		})
		return 0, fmt.Errorf("%s: %w", stage, err)
	}
	return n, nil
}

func selectBase(res *model.Resource, cat query.Catalog) squirrel.SelectBuilder {
	names := query.ColumnNames(cat)
	cols := make([]string, len(names))
	for i, n := range names {
		cols[i] = query.QuoteIdent(n)
	}
	return squirrel.Select(cols...).From(res.Table)
}

func countBase(res *model.Resource) squirrel.SelectBuilder {
	return squirrel.Select("COUNT(*)").From(res.Table)
}

// rowID returns the identifier of a row, 0 when it has none.
func rowID(row map[string]any) any {
	if v, ok := row[query.IDField]; ok && v != nil {
		return v
	}
	return 0
}
