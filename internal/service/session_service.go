package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

// NoRoleDefined is returned when the Odoo user has no school role.
const NoRoleDefined = "NO_ROLE_DEFINED"

type sessionClient interface {
	Authenticate(ctx context.Context, login, password string) (*odoo.AuthResult, error)
	SessionInfo(ctx context.Context) (*odoo.SessionInfo, error)
	DestroySession(ctx context.Context) error
	CheckConnection(ctx context.Context) (bool, error)
	SetSessionID(sid string)
	Database() string
	OnSessionExpired(fn func())
}

type sessionStore interface {
	Load(ctx context.Context) (*models.UserSession, error)
	Save(ctx context.Context, session *models.UserSession) error
	Clear(ctx context.Context) error
}

// SessionService checks the server and owns the stored login.
type SessionService struct {
	client     sessionClient
	store      sessionStore
	validator  *validator.Validate
	maxAge     time.Duration
	nearExpiry time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewSessionService constructs the session service and registers it as the
// client's session-expired handler.
func NewSessionService(client sessionClient, store sessionStore, maxAge, nearExpiry time.Duration, logger *zap.Logger) *SessionService {
	if maxAge <= 0 {
		maxAge = 4 * time.Hour
	}
	if nearExpiry <= 0 {
		nearExpiry = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SessionService{
		client:     client,
		store:      store,
		validator:  newValidator(nil),
		maxAge:     maxAge,
		nearExpiry: nearExpiry,
		logger:     logger,
		now:        time.Now,
	}
	client.OnSessionExpired(s.handleExpired)
	return s
}

// CheckServerHealth reports whether the Odoo server answers.
func (s *SessionService) CheckServerHealth(ctx context.Context) models.ServerHealth {
	start := s.now()
	ok, err := s.client.CheckConnection(ctx)
	health := models.ServerHealth{OK: ok, Duration: s.now().Sub(start), CheckedAt: start.UTC()}
	if err != nil {
		health.Error = odoo.Message(err)
	}
	return health
}

// CheckServerHealthWithRetry checks up to attempts times, waiting delay between failures.
func (s *SessionService) CheckServerHealthWithRetry(ctx context.Context, attempts int, delay time.Duration) models.ServerHealth {
	if attempts < 1 {
		attempts = 1
	}
	var health models.ServerHealth
	for i := 0; i < attempts; i++ {
		health = s.CheckServerHealth(ctx)
		if health.OK || i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return health
		case <-time.After(delay):
		}
	}
	return health
}

// Current returns the stored session without contacting the server.
func (s *SessionService) Current(ctx context.Context) (*models.UserSession, error) {
	session, err := s.store.Load(ctx)
	if err != nil || session == nil {
		return nil, err
	}
	s.client.SetSessionID(session.SessionID)
	return session, nil
}

// VerifySession checks the stored session locally and against the server.
// It returns nil when there is no usable session.
func (s *SessionService) VerifySession(ctx context.Context) (*models.UserSession, error) {
	session, err := s.Current(ctx)
	if err != nil || session == nil {
		return nil, err
	}

	if session.ExpiredAt(s.now(), s.maxAge) {
		s.logger.Info("session expired locally", zap.String("username", session.Username))
		s.discard(ctx, true)
		return nil, nil
	}

	info, err := s.client.SessionInfo(ctx)
	if err != nil {
		s.logger.Info("session rejected by server", zap.String("username", session.Username), zap.Error(err))
		s.discard(ctx, true)
		return nil, nil
	}
	if int64(info.UID) != session.UserID {
		s.logger.Warn("session belongs to another user",
			zap.Int64("stored_uid", session.UserID),
			zap.Int64("server_uid", int64(info.UID)),
		)
		s.discard(ctx, false)
		return nil, nil
	}

	if name := string(info.Name); name != "" {
		session.FullName = name
	}
	if info.UserContext != nil {
		session.Context = info.UserContext
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Status describes the stored session and its remaining lifetime.
func (s *SessionService) Status(ctx context.Context) (*models.SessionStatus, error) {
	session, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, appErrors.ErrNoSession
	}
	now := s.now()
	return &models.SessionStatus{
		Session:    session,
		Remaining:  session.Remaining(now, s.maxAge).Round(time.Second).String(),
		NearExpiry: session.NearExpiry(now, s.maxAge, s.nearExpiry),
	}, nil
}

// Login authenticates against Odoo and stores the resulting session.
func (s *SessionService) Login(ctx context.Context, req models.LoginRequest) (*models.UserSession, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, invalidPayload(err).Message)
	}
	if health := s.CheckServerHealth(ctx); !health.OK {
		return nil, appErrors.ErrOffline
	}

	auth, err := s.client.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if odoo.IsTransport(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrOffline.Code, appErrors.ErrOffline.Status, appErrors.ErrOffline.Message)
		}
		msg := odoo.Message(err)
		if strings.Contains(strings.ToLower(msg), "access denied") {
			msg = "invalid username or password"
		}
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, msg)
	}
	if auth == nil || auth.UID == 0 || auth.SessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "incomplete authentication response")
	}
	if strings.TrimSpace(string(auth.Role)) == "" {
		s.logger.Warn("user without role", zap.String("username", req.Username), zap.Int64("uid", int64(auth.UID)))
		_ = s.client.DestroySession(ctx)
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, NoRoleDefined)
	}

	username := string(auth.Username)
	if username == "" {
		username = req.Username
	}
	session := &models.UserSession{
		UserID:    int64(auth.UID),
		Username:  username,
		Email:     string(auth.Login),
		FullName:  string(auth.Name),
		Role:      models.RoleFromOdoo(string(auth.Role)),
		OdooRole:  string(auth.Role),
		PartnerID: int64(auth.PartnerID),
		CompanyID: int64(auth.CompanyID),
		SessionID: string(auth.SessionID),
		Database:  s.client.Database(),
		LoginTime: s.now().UTC(),
		Context:   auth.UserContext,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	verified, err := s.VerifySession(ctx)
	if err != nil {
		return nil, err
	}
	if verified == nil {
		_ = s.client.DestroySession(ctx)
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "could not establish the session")
	}
	s.logger.Info("login succeeded", zap.String("username", verified.Username), zap.String("role", string(verified.Role)))
	return verified, nil
}

// Logout ends the server session and forgets the stored one.
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.client.DestroySession(ctx); err != nil {
		s.logger.Warn("destroy session failed", zap.Error(err))
	}
	return s.store.Clear(ctx)
}

func (s *SessionService) discard(ctx context.Context, destroy bool) {
	if destroy {
		if err := s.client.DestroySession(ctx); err != nil {
			s.logger.Debug("destroy session failed", zap.Error(err))
		}
	}
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("clear session failed", zap.Error(err))
	}
}

func (s *SessionService) handleExpired() {
	s.logger.Info("server reported session expired")
	if err := s.store.Clear(context.Background()); err != nil {
		s.logger.Warn("clear session failed", zap.Error(err))
	}
}
