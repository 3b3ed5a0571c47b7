package models

import "time"

// AppRole is the role the front-end uses to gate screens.
type AppRole string

const (
	RoleAdmin    AppRole = "admin"
	RoleTeacher  AppRole = "teacher"
	RoleStudent  AppRole = "student"
	RoleEmployee AppRole = "employee"
)

var odooRoles = map[string]AppRole{
	"administrativo": RoleAdmin,
	"docente":        RoleTeacher,
	"obrero":         RoleEmployee,
	"cenar":          RoleEmployee,
}

// RoleFromOdoo maps the school_employee role reported by Odoo; unknown roles become employee.
func RoleFromOdoo(role string) AppRole {
	if r, ok := odooRoles[role]; ok {
		return r
	}
	return RoleEmployee
}

// UserSession is the locally persisted login.
type UserSession struct {
	UserID    int64                  `json:"user_id"`
	Username  string                 `json:"username"`
	Email     string                 `json:"email"`
	FullName  string                 `json:"full_name"`
	Role      AppRole                `json:"role"`
	OdooRole  string                 `json:"odoo_role"`
	PartnerID int64                  `json:"partner_id"`
	CompanyID int64                  `json:"company_id"`
	SessionID string                 `json:"session_id"`
	Database  string                 `json:"database"`
	LoginTime time.Time              `json:"login_time"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// ExpiresAt returns when the session stops being accepted locally.
func (s UserSession) ExpiresAt(maxAge time.Duration) time.Time {
	return s.LoginTime.Add(maxAge)
}

// ExpiredAt reports whether the session is older than maxAge at now.
// A session without a login time is always expired.
func (s UserSession) ExpiredAt(now time.Time, maxAge time.Duration) bool {
	if s.LoginTime.IsZero() {
		return true
	}
	return now.Sub(s.LoginTime) >= maxAge
}

// Remaining returns the time left before expiry, never negative.
func (s UserSession) Remaining(now time.Time, maxAge time.Duration) time.Duration {
	if s.LoginTime.IsZero() {
		return 0
	}
	left := s.ExpiresAt(maxAge).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// NearExpiry reports whether less than window remains.
func (s UserSession) NearExpiry(now time.Time, maxAge, window time.Duration) bool {
	if s.LoginTime.IsZero() {
		return true
	}
	return now.Sub(s.LoginTime) >= maxAge-window
}

// LoginRequest carries credentials for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required"`
}

// SessionStatus describes the current session for clients.
type SessionStatus struct {
	Session    *UserSession `json:"session"`
	Remaining  string       `json:"remaining"`
	NearExpiry bool         `json:"near_expiry"`
}
