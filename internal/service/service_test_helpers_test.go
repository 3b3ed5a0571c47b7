package service

import (
	"fmt"
	"testing"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/noah-isme/sma-odoo-sync/internal/repository"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

func newTestCache(t *testing.T) (*CacheService, *repository.MemoryCacheRepository) {
	t.Helper()
	repo := repository.NewMemoryCacheRepository(gocache.New(time.Minute, time.Minute), 100)
	return NewCacheService(repo, nil, time.Minute, nil, true), repo
}

func expiredErr() error {
	return fmt.Errorf("write: %w", &odoo.Error{Code: 100, Message: "Odoo Session Expired", SessionExpired: true})
}

func transportErr() error {
	return fmt.Errorf("%w: dial tcp: connection refused", odoo.ErrTransport)
}

func userErr(msg string) error {
	return &odoo.Error{Code: 200, Message: "Odoo Server Error", Data: odoo.ErrorData{Name: "odoo.exceptions.UserError", Message: msg}}
}
