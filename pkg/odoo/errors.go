package odoo

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNoSession is returned when an authenticated call is attempted without a session id.
	ErrNoSession = errors.New("odoo: no active session")
	// ErrTransport marks failures to reach the server or to read its reply.
	ErrTransport = errors.New("odoo: transport failure")
)

const sessionExpiredMessage = "your session has expired, please sign in again"

// Error is a JSON-RPC error object returned by Odoo.
type Error struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Data    ErrorData `json:"data"`

	// SessionExpired is set when the error means the stored session can no longer be used.
	SessionExpired bool `json:"-"`

	raw []byte
}

// ErrorData carries the server-side exception details.
type ErrorData struct {
	Name      string        `json:"name"`
	Debug     string        `json:"debug"`
	Message   string        `json:"message"`
	Arguments []interface{} `json:"arguments"`
}

// Error implements the error interface with the most readable message available.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.UserMessage()
}

var (
	userErrorPattern       = regexp.MustCompile(`UserError\(['"](.+?)['"]\)`)
	validationErrorPattern = regexp.MustCompile(`ValidationError\(['"](.+?)['"]\)`)
)

// UserMessage extracts a human readable message from the error payload.
func (e *Error) UserMessage() string {
	if e == nil {
		return ""
	}
	if e.SessionExpired {
		return sessionExpiredMessage
	}
	if len(e.Data.Arguments) > 0 {
		if s, ok := e.Data.Arguments[0].(string); ok && s != "" {
			return s
		}
		if e.Data.Arguments[0] != nil {
			return fmt.Sprint(e.Data.Arguments[0])
		}
	}
	if e.Data.Message != "" && e.Data.Message != e.Message {
		return e.Data.Message
	}
	if debug := e.Data.Debug; debug != "" {
		if m := userErrorPattern.FindStringSubmatch(debug); len(m) > 1 {
			return m[1]
		}
		if m := validationErrorPattern.FindStringSubmatch(debug); len(m) > 1 {
			return m[1]
		}
		if msg := lastDebugLineMessage(debug); msg != "" {
			return msg
		}
	}
	if e.Message != "" && e.Message != "Odoo Server Error" {
		return e.Message
	}
	raw := e.raw
	if len(raw) == 0 {
		raw, _ = json.Marshal(e)
	}
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return string(raw)
}

func lastDebugLineMessage(debug string) string {
	lines := strings.Split(debug, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			return ""
		}
		return strings.TrimSpace(line[idx+1:])
	}
	return ""
}

func (e *Error) detectSessionExpired() bool {
	if e.Code == 100 || strings.Contains(e.Data.Name, "SessionExpired") {
		return true
	}
	text := strings.ToLower(string(e.raw))
	if text == "" {
		b, _ := json.Marshal(e)
		text = strings.ToLower(string(b))
	}
	for _, marker := range []string{
		"session expired", "session_expired", "sessionexpiredexception",
		"access denied", "access_denied", "accessdenied",
	} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// IsSessionExpired reports whether err carries an expired-session condition.
func IsSessionExpired(err error) bool {
	if errors.Is(err, ErrNoSession) {
		return true
	}
	var rpcErr *Error
	return errors.As(err, &rpcErr) && rpcErr.SessionExpired
}

// IsTransport reports whether err is a connectivity failure rather than a server answer.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// Message returns the best user-facing message for any client error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNoSession) {
		return "no active session"
	}
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr.UserMessage()
	}
	return err.Error()
}
