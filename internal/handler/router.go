package handler

import (
	"io/fs"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/joestump/kernel-prism/internal/api"
	"github.com/joestump/kernel-prism/internal/auth"
	"github.com/joestump/kernel-prism/internal/imagegen"
	"github.com/joestump/kernel-prism/internal/logging"
	"github.com/joestump/kernel-prism/internal/session"
	"github.com/joestump/kernel-prism/internal/store"
	"github.com/joestump/kernel-prism/web"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	DB             *sqlx.DB
	Logger         *zap.Logger
	SessionManager *scs.SessionManager
	Workspaces     *session.Workspaces
	AuthHandlers   *auth.Handlers // nil when OIDC is off
	ExportStore    store.ExportStoreIface
	ExportCh       chan<- store.ExportEvent
	Renderer       imagegen.Generator // nil when image generation is off

	// ResetClearsSubject selects which reset the builder's reset button runs.
	ResetClearsSubject bool
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(deps.Logger))
	r.Use(middleware.Recoverer)

	// Probes and metrics sit outside the session middleware so scrapes never
	// touch the session store.
	r.Get("/healthz", NewHealthHandler(deps.DB).Check)
	r.Handle("/metrics", promhttp.Handler())

	// Static assets (embedded). Use fs.Sub so the file server sees
	// css/app.css and js/app.js directly, not static/css/... paths.
	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServerFS(staticSub)))

	r.Group(func(r chi.Router) {
		r.Use(deps.SessionManager.LoadAndSave)
		r.Use(auth.Identify(deps.SessionManager))

		if deps.AuthHandlers != nil {
			r.Get("/auth/login", deps.AuthHandlers.Login)
			r.Get("/auth/callback", deps.AuthHandlers.Callback)
			r.Post("/auth/logout", deps.AuthHandlers.Logout)
		}

		r.Post("/theme", NewThemeHandler().Toggle)

		b := NewBuilderHandler(deps.Workspaces, deps.ExportCh, deps.Renderer,
			deps.ResetClearsSubject, deps.AuthHandlers != nil, deps.Logger)
		r.Group(func(r chi.Router) {
			if deps.AuthHandlers != nil {
				r.Use(auth.RequireAuth)
			}
			r.Get("/", b.Show)
			r.Route("/builder", func(r chi.Router) {
				r.Post("/domain", b.SetDomain)
				r.Post("/subject", b.SetSubject)
				r.Post("/tags/toggle", b.ToggleTag)
				r.Post("/categories", b.CreateCategory)
				r.Post("/categories/{id}/tags", b.AddCustomTag)
				r.Delete("/categories/{id}/tags", b.RemoveCustomTag)
				r.Post("/reset", b.Reset)
				r.Post("/copy", b.Copy)
				r.Post("/render", b.Render)
			})
		})

		var apiRouter http.Handler = api.NewAPIRouter(api.Deps{
			Workspaces:  deps.Workspaces,
			ExportStore: deps.ExportStore,
			ExportCh:    deps.ExportCh,
			Renderer:    deps.Renderer,
			Logger:      deps.Logger,

			ResetClearsSubject: deps.ResetClearsSubject,
		})
		if deps.AuthHandlers != nil {
			apiRouter = auth.RequireAuthAPI(apiRouter)
		}
		r.Mount("/api/v1", apiRouter)
	})

	return r
}
