// Package web exposes the HTTP surface: session-gated task CRUD, the
// Google login flow, Drive sync and the magic sort, mirroring the
// JSON response envelope {"status": ..., ...} the frontend expects.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"

	"github.com/harrisonrobin/quadrant/pkg/auth"
	"github.com/harrisonrobin/quadrant/pkg/config"
	"github.com/harrisonrobin/quadrant/pkg/magicsort"
	"github.com/harrisonrobin/quadrant/pkg/store"
	tasksync "github.com/harrisonrobin/quadrant/pkg/sync"
)

//go:embed templates/*.html
var templateFS embed.FS

// RemoteFactory builds a remote-storage client for the session's
// credential. Injected so tests can substitute an in-memory remote.
type RemoteFactory func(ctx context.Context, tok *oauth2.Token) (tasksync.Remote, error)

// Server wires the task store and its collaborators behind gin routes.
type Server struct {
	cfg       config.Config
	store     *store.Store
	sorter    *magicsort.Sorter
	auth      *auth.Service
	sessions  *sessions.CookieStore
	newRemote RemoteFactory
	engine    *gin.Engine
}

// New assembles the server. All collaborators are constructed by the
// caller and injected; the server owns no global state.
func New(cfg config.Config, st *store.Store, sorter *magicsort.Sorter,
	authSvc *auth.Service, newRemote RemoteFactory) (*Server, error) {

	cookieStore := sessions.NewCookieStore([]byte(cfg.SecretKey))
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Server{
		cfg:       cfg,
		store:     st,
		sorter:    sorter,
		auth:      authSvc,
		sessions:  cookieStore,
		newRemote: newRemote,
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.SetHTMLTemplate(tmpl)

	engine.GET("/login", s.loginPage)
	engine.GET("/google-login", s.googleLogin)
	engine.GET("/oauth2callback", s.oauthCallback)
	engine.GET("/logout", s.logout)

	authed := engine.Group("/", s.loginRequired)
	{
		authed.GET("/", s.index)
		authed.POST("/add-task", s.addTask)
		authed.POST("/update-task", s.updateTask)
		authed.POST("/delete-task", s.deleteTask)
		authed.POST("/sync-tasks", s.syncTasks)
		authed.POST("/magic-sort", s.magicSort)
	}

	s.engine = engine
	return s, nil
}

// Handler exposes the routing tree, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	return s.engine.Run(s.cfg.Addr())
}
