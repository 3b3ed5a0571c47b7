package lists

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-odoo-sync/internal/liststore"
	"github.com/noah-isme/sma-odoo-sync/internal/models"
	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
)

// listService is the read/delete surface shared by the flat entity services.
type listService[T any] interface {
	Load(ctx context.Context, force bool) ([]T, error)
	Cached(ctx context.Context) ([]T, bool)
	Delete(ctx context.Context, id int64) models.MutationResult
}

type countFunc func(ctx context.Context) (map[string]int, error)

// flatSource loads the whole list online and the cached copy offline. Server
// counts run next to the load; a failed count leaves counting to Classify.
func flatSource[T any](
	logger *zap.Logger,
	load func(ctx context.Context, force bool) ([]T, error),
	cached func(ctx context.Context) ([]T, bool),
	counts countFunc,
	order func([]T),
) liststore.SourceFunc[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, req liststore.FetchRequest) (liststore.Batch[T], error) {
		if req.Offline {
			items, ok := cached(ctx)
			if !ok {
				return liststore.Batch[T]{}, appErrors.ErrCacheMiss
			}
			return batchOf(items, nil, order), nil
		}

		var (
			items []T
			byKey map[string]int
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			items, err = load(gctx, req.Force)
			return err
		})
		if counts != nil {
			g.Go(func() error {
				c, err := counts(gctx)
				if err != nil {
					logger.Debug("server counts unavailable", zap.Error(err))
					return nil
				}
				byKey = c
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return liststore.Batch[T]{}, err
		}
		return batchOf(items, byKey, order), nil
	}
}

func batchOf[T any](items []T, counts map[string]int, order func([]T)) liststore.Batch[T] {
	out := append([]T(nil), items...)
	if order != nil {
		order(out)
	}
	return liststore.Batch[T]{Items: out, Total: len(out), Counts: counts}
}

// contains reports whether any field holds query, which is already lower-cased.
func contains(query string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}
