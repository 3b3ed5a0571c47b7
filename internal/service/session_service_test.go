package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/internal/repository"
	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

type fakeSessionClient struct {
	reachable bool
	auth      *odoo.AuthResult
	authErr   error
	info      *odoo.SessionInfo
	infoErr   error

	sid        string
	destroyed  int
	onExpired  func()
	authLogins []string
}

func (f *fakeSessionClient) Authenticate(_ context.Context, login, _ string) (*odoo.AuthResult, error) {
	f.authLogins = append(f.authLogins, login)
	if f.authErr != nil {
		return nil, f.authErr
	}
	f.sid = string(f.auth.SessionID)
	return f.auth, nil
}

func (f *fakeSessionClient) SessionInfo(context.Context) (*odoo.SessionInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return f.info, nil
}

func (f *fakeSessionClient) DestroySession(context.Context) error {
	f.destroyed++
	f.sid = ""
	return nil
}

func (f *fakeSessionClient) CheckConnection(context.Context) (bool, error) {
	if !f.reachable {
		return false, transportErr()
	}
	return true, nil
}

func (f *fakeSessionClient) SetSessionID(sid string) { f.sid = sid }

func (f *fakeSessionClient) Database() string { return "school" }

func (f *fakeSessionClient) OnSessionExpired(fn func()) { f.onExpired = fn }

func newSessionFixture(t *testing.T) (*SessionService, *fakeSessionClient, *repository.SessionRepository) {
	t.Helper()
	_, memory := newTestCache(t)
	store := repository.NewSessionRepository(memory, 4*time.Hour)
	client := &fakeSessionClient{
		reachable: true,
		auth: &odoo.AuthResult{
			UID: 7, Name: "Maria Gomez", Username: "mgomez", Login: "mgomez@school.test",
			PartnerID: 30, CompanyID: 1, Role: "docente", SessionID: "sid-1",
		},
		info: &odoo.SessionInfo{UID: 7, Name: "María Gómez", UserContext: map[string]interface{}{"lang": "es_VE"}},
	}
	return NewSessionService(client, store, 4*time.Hour, 30*time.Minute, nil), client, store
}

func TestSessionServiceLogin(t *testing.T) {
	svc, client, store := newSessionFixture(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, models.LoginRequest{Username: " mgomez ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, []string{"mgomez"}, client.authLogins)
	assert.Equal(t, models.RoleTeacher, session.Role)
	assert.Equal(t, "María Gómez", session.FullName)
	assert.Equal(t, "school", session.Database)

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "sid-1", stored.SessionID)
}

func TestSessionServiceLoginWithoutRole(t *testing.T) {
	svc, client, store := newSessionFixture(t)
	client.auth.Role = ""

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "mgomez", Password: "secret"})
	require.Error(t, err)
	assert.Equal(t, NoRoleDefined, appErrors.FromError(err).Message)
	assert.Equal(t, 1, client.destroyed)

	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestSessionServiceLoginFailures(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		svc, _, _ := newSessionFixture(t)
		_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ab", Password: "x"})
		assert.True(t, errors.Is(err, appErrors.ErrValidation))
	})
	t.Run("offline", func(t *testing.T) {
		svc, client, _ := newSessionFixture(t)
		client.reachable = false
		_, err := svc.Login(context.Background(), models.LoginRequest{Username: "mgomez", Password: "secret"})
		assert.True(t, errors.Is(err, appErrors.ErrOffline))
		assert.Empty(t, client.authLogins)
	})
	t.Run("access denied", func(t *testing.T) {
		svc, client, _ := newSessionFixture(t)
		client.authErr = &odoo.Error{Code: 200, Message: "Odoo Server Error", Data: odoo.ErrorData{Message: "Access Denied"}}
		_, err := svc.Login(context.Background(), models.LoginRequest{Username: "mgomez", Password: "bad"})
		require.True(t, errors.Is(err, appErrors.ErrUnauthorized))
		assert.Equal(t, "invalid username or password", appErrors.FromError(err).Message)
	})
}

func TestSessionServiceVerifySession(t *testing.T) {
	ctx := context.Background()

	t.Run("no session", func(t *testing.T) {
		svc, _, _ := newSessionFixture(t)
		session, err := svc.VerifySession(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("restores session id", func(t *testing.T) {
		svc, client, store := newSessionFixture(t)
		require.NoError(t, store.Save(ctx, &models.UserSession{UserID: 7, SessionID: "sid-9", LoginTime: time.Now()}))
		session, err := svc.VerifySession(ctx)
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, "sid-9", client.sid)
		assert.Equal(t, "es_VE", session.Context["lang"])
	})

	t.Run("expired locally", func(t *testing.T) {
		svc, client, store := newSessionFixture(t)
		require.NoError(t, store.Save(ctx, &models.UserSession{UserID: 7, SessionID: "sid-9", LoginTime: time.Now().Add(-5 * time.Hour)}))
		session, err := svc.VerifySession(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)
		assert.Equal(t, 1, client.destroyed)
		stored, _ := store.Load(ctx)
		assert.Nil(t, stored)
	})

	t.Run("rejected by server", func(t *testing.T) {
		svc, client, store := newSessionFixture(t)
		client.infoErr = expiredErr()
		require.NoError(t, store.Save(ctx, &models.UserSession{UserID: 7, SessionID: "sid-9", LoginTime: time.Now()}))
		session, err := svc.VerifySession(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)
		stored, _ := store.Load(ctx)
		assert.Nil(t, stored)
	})

	t.Run("different user", func(t *testing.T) {
		svc, client, store := newSessionFixture(t)
		client.info = &odoo.SessionInfo{UID: 8}
		require.NoError(t, store.Save(ctx, &models.UserSession{UserID: 7, SessionID: "sid-9", LoginTime: time.Now()}))
		session, err := svc.VerifySession(ctx)
		require.NoError(t, err)
		assert.Nil(t, session)
		assert.Zero(t, client.destroyed)
	})
}

func TestSessionServiceExpiryHookClearsStore(t *testing.T) {
	svc, client, store := newSessionFixture(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, models.LoginRequest{Username: "mgomez", Password: "secret"})
	require.NoError(t, err)

	require.NotNil(t, client.onExpired)
	client.onExpired()

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
	_, err = svc.Status(ctx)
	assert.True(t, errors.Is(err, appErrors.ErrNoSession))
}

func TestSessionServiceHealthWithRetry(t *testing.T) {
	svc, client, _ := newSessionFixture(t)
	client.reachable = false

	health := svc.CheckServerHealthWithRetry(context.Background(), 3, time.Millisecond)
	assert.False(t, health.OK)
	assert.NotEmpty(t, health.Error)

	client.reachable = true
	assert.True(t, svc.CheckServerHealthWithRetry(context.Background(), 3, time.Millisecond).OK)
}
