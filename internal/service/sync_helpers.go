package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

const sessionExpiredMessage = "session expired"

// cachedList implements read-through/write-through caching of one entity list.
type cachedList[T any] struct {
	cache *CacheService
	key   string
	ttl   time.Duration
}

// load serves from cache unless force is set, fetching and storing on a miss.
// Fetch errors are returned untouched; the cache is only written on success.
func (c cachedList[T]) load(ctx context.Context, force bool, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if !force {
		if items, ok := c.cached(ctx); ok {
			return items, nil
		}
	}
	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	_ = c.cache.Set(ctx, c.key, items, c.ttl)
	return items, nil
}

// cached returns the stored list when present and non-empty.
func (c cachedList[T]) cached(ctx context.Context) ([]T, bool) {
	var items []T
	hit, err := c.cache.Get(ctx, c.key, &items)
	if err != nil || !hit || len(items) == 0 {
		return nil, false
	}
	return items, true
}

func (c cachedList[T]) invalidate(ctx context.Context, prefix string) {
	_ = c.cache.Invalidate(ctx, prefix)
}

// mutationFailed translates a client error into a failed MutationResult.
func mutationFailed(err error, fallback string) models.MutationResult {
	switch {
	case odoo.IsSessionExpired(err):
		return models.MutationResult{Message: sessionExpiredMessage, SessionExpired: true}
	case odoo.IsTransport(err):
		return models.MutationResult{Message: "server is unreachable"}
	}
	msg := fallback
	var rpcErr *odoo.Error
	if errors.As(err, &rpcErr) {
		if m := rpcErr.UserMessage(); m != "" {
			msg = m
		}
	}
	return models.MutationResult{Message: msg}
}

// invalidPayload reports validator failures as a failed MutationResult.
func invalidPayload(err error) models.MutationResult {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
		}
		return models.MutationResult{Message: "invalid fields: " + strings.Join(fields, ", ")}
	}
	return models.MutationResult{Message: "invalid payload"}
}

// countAll runs one count per key in parallel and fails when any of them fails.
func countAll(ctx context.Context, keys []string, count func(ctx context.Context, key string) (int, error)) (map[string]int, error) {
	var mu sync.Mutex
	out := make(map[string]int, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			n, err := count(gctx, key)
			if err != nil {
				return err
			}
			mu.Lock()
			out[key] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// newValidator reports field errors under their JSON names.
func newValidator(v *validator.Validate) *validator.Validate {
	if v != nil {
		return v
	}
	v = validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
