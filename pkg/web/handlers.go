package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harrisonrobin/quadrant/pkg/auth"
	"github.com/harrisonrobin/quadrant/pkg/magicsort"
	"github.com/harrisonrobin/quadrant/pkg/store"
	tasksync "github.com/harrisonrobin/quadrant/pkg/sync"
)

// Domain failures are surfaced as a 200 with an error envelope, the
// contract the frontend was built against. Only transport-level
// problems become non-200s.
func fail(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"status": "error", "message": message})
}

func (s *Server) loginPage(c *gin.Context) {
	if isAuthenticated(s.session(c)) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", nil)
}

func (s *Server) googleLogin(c *gin.Context) {
	state, err := auth.NewState()
	if err != nil {
		slog.Error("google login failed", "error", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	sess := s.session(c)
	sess.Values[keyState] = state
	s.saveSession(c, sess)
	c.Redirect(http.StatusFound, s.auth.AuthURL(state))
}

func (s *Server) oauthCallback(c *gin.Context) {
	sess := s.session(c)
	wantState, _ := sess.Values[keyState].(string)
	if wantState == "" || c.Query("state") != wantState {
		slog.Warn("oauth callback state mismatch")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	tok, err := s.auth.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		slog.Error("oauth callback failed", "error", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	user, err := s.auth.UserInfo(c.Request.Context(), tok)
	if err != nil {
		slog.Error("fetching user info failed", "error", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	raw, err := json.Marshal(tok)
	if err != nil {
		slog.Error("serializing credential failed", "error", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	delete(sess.Values, keyState)
	sess.Values[keyAuthed] = true
	sess.Values[keyEmail] = user.Email
	sess.Values[keyName] = user.Name
	sess.Values[keyToken] = string(raw)
	s.saveSession(c, sess)

	slog.Info("user authenticated", "email", user.Email)
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) logout(c *gin.Context) {
	sess := s.session(c)
	sess.Options.MaxAge = -1
	s.saveSession(c, sess)
	c.Redirect(http.StatusFound, "/login")
}

func (s *Server) index(c *gin.Context) {
	sess := s.session(c)
	name, _ := sess.Values[keyName].(string)
	email, _ := sess.Values[keyEmail].(string)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Tasks":     s.store.Tasks(),
		"UserName":  name,
		"UserEmail": email,
	})
}

func (s *Server) addTask(c *gin.Context) {
	content := c.PostForm("task")
	if content == "" {
		fail(c, "Task content is required")
		return
	}

	task, err := s.store.Add(content)
	if err != nil {
		if errors.Is(err, store.ErrEmptyContent) {
			fail(c, "Task content is required")
			return
		}
		slog.Error("add task failed", "error", err)
		fail(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "task": task})
}

func (s *Server) updateTask(c *gin.Context) {
	id := c.PostForm("id")
	if id == "" {
		fail(c, "Task ID is missing")
		return
	}

	var content *string
	if v, ok := c.GetPostForm("content"); ok && v != "" {
		content = &v
	}
	var completed *bool
	if v, ok := c.GetPostForm("completed"); ok && v != "" {
		b := v == "true"
		completed = &b
	}

	task, err := s.store.Update(id, content, completed)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, "Task not found")
			return
		}
		slog.Error("update task failed", "id", id, "error", err)
		fail(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "task": task})
}

func (s *Server) deleteTask(c *gin.Context) {
	id := c.PostForm("id")
	if id == "" {
		fail(c, "Task ID is missing")
		return
	}

	removed, err := s.store.Delete(id)
	if err != nil {
		slog.Error("delete task failed", "id", id, "error", err)
		fail(c, err.Error())
		return
	}
	if !removed {
		fail(c, "Task not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (s *Server) syncTasks(c *gin.Context) {
	tok := sessionToken(s.session(c))
	if tok == nil {
		fail(c, "Not authenticated with Google")
		return
	}

	remote, err := s.newRemote(c.Request.Context(), tok)
	if err != nil {
		slog.Error("building drive client failed", "error", err)
		fail(c, err.Error())
		return
	}

	res, err := tasksync.New(s.store, remote).Sync(c.Request.Context())
	if err != nil {
		slog.Error("task sync failed", "error", err)
		fail(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Tasks synced successfully",
		"result":  string(res.Status),
		"fileId":  res.FileID,
		"tasks":   s.store.Tasks(),
	})
}

func (s *Server) magicSort(c *gin.Context) {
	doc, err := s.sorter.Process(c.Request.Context())
	if err != nil {
		if errors.Is(err, magicsort.ErrNoTasks) {
			fail(c, "No tasks to sort")
			return
		}
		slog.Error("magic sort failed", "error", err)
		fail(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Tasks sorted successfully",
		"tasks":   doc.Tasks,
	})
}
