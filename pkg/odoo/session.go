package odoo

import (
	"context"
	"time"
)

// AuthResult is the subset of /web/session/authenticate we rely on.
type AuthResult struct {
	UID         Int                    `json:"uid"`
	Name        String                 `json:"name"`
	Username    String                 `json:"username"`
	Login       String                 `json:"login"`
	PartnerID   Int                    `json:"partner_id"`
	CompanyID   Int                    `json:"company_id"`
	Role        String                 `json:"role"`
	SessionID   String                 `json:"session_id"`
	UserContext map[string]interface{} `json:"user_context"`
}

// SessionInfo is returned by /web/session/get_session_info.
type SessionInfo struct {
	UID         Int                    `json:"uid"`
	Name        String                 `json:"name"`
	Username    String                 `json:"username"`
	PartnerID   Int                    `json:"partner_id"`
	Database    String                 `json:"db"`
	UserContext map[string]interface{} `json:"user_context"`
}

// Authenticate logs in and stores the returned session id on the client.
func (c *Client) Authenticate(ctx context.Context, login, password string) (*AuthResult, error) {
	params := map[string]interface{}{
		"db":       c.database,
		"login":    login,
		"password": password,
	}
	var result AuthResult
	start := time.Now()
	cookies, err := c.do(ctx, pathAuthenticate, params, false, &result)
	c.observe("session", "authenticate", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	sid := ""
	for _, cookie := range cookies {
		if cookie.Name == sessionCookie && cookie.Value != "" {
			sid = cookie.Value
		}
	}
	if sid == "" {
		sid = string(result.SessionID)
	}
	result.SessionID = String(sid)
	if sid != "" {
		c.SetSessionID(sid)
	}
	return &result, nil
}

// SessionInfo asks the server whether the current session is alive.
func (c *Client) SessionInfo(ctx context.Context) (*SessionInfo, error) {
	var info SessionInfo
	start := time.Now()
	_, err := c.do(ctx, pathSessionInfo, map[string]interface{}{}, true, &info)
	c.observe("session", "get_session_info", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// DestroySession logs out on the server. The local session id is cleared regardless of the outcome.
func (c *Client) DestroySession(ctx context.Context) error {
	if c.SessionID() == "" {
		return nil
	}
	_, err := c.do(ctx, pathDestroySession, map[string]interface{}{}, true, nil)
	c.SetSessionID("")
	return err
}

// ListDatabases returns the databases exposed by the server.
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	var dbs []string
	if _, err := c.do(ctx, pathDatabaseList, map[string]interface{}{}, false, &dbs); err != nil {
		return nil, err
	}
	return dbs, nil
}

// CheckConnection pings the server within the health timeout. Any well-formed
// JSON-RPC answer counts as reachable, including servers that refuse to list databases.
func (c *Client) CheckConnection(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	start := time.Now()
	_, err := c.ListDatabases(ctx)
	c.observe("health", "database_list", err, time.Since(start))
	if err == nil {
		return true, nil
	}
	if IsTransport(err) {
		return false, err
	}
	return true, nil
}
