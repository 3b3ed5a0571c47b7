package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
)

const sessionKey = "session:current"

type keyValueStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// SessionRepository persists the single signed-in user session.
type SessionRepository struct {
	store  keyValueStore
	maxAge time.Duration
}

// NewSessionRepository constructs a SessionRepository; entries live at most maxAge.
func NewSessionRepository(store keyValueStore, maxAge time.Duration) *SessionRepository {
	if maxAge <= 0 {
		maxAge = 4 * time.Hour
	}
	return &SessionRepository{store: store, maxAge: maxAge}
}

// Load returns the stored session or nil when none exists.
func (r *SessionRepository) Load(ctx context.Context) (*models.UserSession, error) {
	var session models.UserSession
	if err := r.store.Get(ctx, sessionKey, &session); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &session, nil
}

// Save stores the session.
func (r *SessionRepository) Save(ctx context.Context, session *models.UserSession) error {
	if session == nil {
		return r.Clear(ctx)
	}
	if err := r.store.Set(ctx, sessionKey, session, r.maxAge); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes the stored session.
func (r *SessionRepository) Clear(ctx context.Context) error {
	if err := r.store.DeleteByPattern(ctx, sessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
