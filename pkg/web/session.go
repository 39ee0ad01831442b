package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"
)

const sessionName = "quadrant_session"

// Session value keys. The token is stored as an opaque JSON blob and
// passed through unmodified to the Google collaborators.
const (
	keyAuthed = "authenticated"
	keyEmail  = "email"
	keyName   = "name"
	keyState  = "state"
	keyToken  = "token"
)

func (s *Server) session(c *gin.Context) *sessions.Session {
	// Get only errors on an undecodable cookie; it still returns a
	// fresh session, which is exactly what we want then.
	sess, err := s.sessions.Get(c.Request, sessionName)
	if err != nil {
		slog.Warn("session cookie rejected, starting fresh", "error", err)
	}
	return sess
}

func (s *Server) saveSession(c *gin.Context, sess *sessions.Session) {
	if err := sess.Save(c.Request, c.Writer); err != nil {
		slog.Error("save session failed", "error", err)
	}
}

func isAuthenticated(sess *sessions.Session) bool {
	authed, _ := sess.Values[keyAuthed].(bool)
	return authed
}

// sessionToken decodes the credential blob stored at login, or nil
// when the session never completed the Google flow.
func sessionToken(sess *sessions.Session) *oauth2.Token {
	raw, _ := sess.Values[keyToken].(string)
	if raw == "" {
		return nil
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		slog.Warn("stored credential unreadable", "error", err)
		return nil
	}
	return &tok
}

// loginRequired gates every task route behind the session flag.
func (s *Server) loginRequired(c *gin.Context) {
	if !isAuthenticated(s.session(c)) {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.Next()
}
