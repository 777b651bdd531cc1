package handlers

import (
	"log/slog"
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "task-manager/docs"
	"task-manager/middlewares"
	"task-manager/services"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Store        Pinger
	Users        *services.CredentialStore
	Tokens       *services.TokenService
	Tasks        *services.TaskStore
	Avatars      *services.AvatarProcessor
	AvatarLimit  int64
	LoginLimiter *middlewares.ClientLimiter
	Maintenance  bool
	CORSOrigins  []string
	Logger       *slog.Logger
}

// NewRouter wires every route and wraps the router in the shared middleware.
func NewRouter(d Deps) http.Handler {
	auth := &middlewares.Authenticator{Tokens: d.Tokens, Users: d.Users, Logger: d.Logger}
	tasks := &TaskHandler{Tasks: d.Tasks, Logger: d.Logger}
	users := &UserHandler{Users: d.Users, Tokens: d.Tokens, Logger: d.Logger}
	avatars := &AvatarHandler{Users: d.Users, Processor: d.Avatars, MaxBytes: d.AvatarLimit, Logger: d.Logger}

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}
	throttled := func(h http.HandlerFunc) http.Handler {
		if d.LoginLimiter == nil {
			return h
		}
		return d.LoginLimiter.Middleware(h)
	}

	r := mux.NewRouter()

	r.HandleFunc("/", homeHandler).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler(d.Store, d.Logger)).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	r.Handle("/users", throttled(users.Signup)).Methods(http.MethodPost)
	r.Handle("/users/login", throttled(users.Login)).Methods(http.MethodPost)
	r.Handle("/users/logout", protected(users.Logout)).Methods(http.MethodPost)
	r.Handle("/users/logoutall", protected(users.LogoutAll)).Methods(http.MethodPost)
	r.Handle("/users/me", protected(users.GetProfile)).Methods(http.MethodGet)
	r.Handle("/users/me", protected(users.UpdateProfile)).Methods(http.MethodPatch)
	r.Handle("/users/me", protected(users.DeleteAccount)).Methods(http.MethodDelete)

	r.Handle("/users/me/avatar", protected(avatars.UploadAvatar)).Methods(http.MethodPost)
	r.Handle("/users/me/avatar", protected(avatars.DeleteAvatar)).Methods(http.MethodDelete)
	r.Handle("/users/me/avatar", protected(avatars.GetMyAvatar)).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/avatar", avatars.GetUserAvatar).Methods(http.MethodGet)

	r.Handle("/tasks", protected(tasks.GetTasks)).Methods(http.MethodGet)
	r.Handle("/tasks", protected(tasks.CreateTask)).Methods(http.MethodPost)
	r.Handle("/tasks/{id}", protected(tasks.GetTaskByID)).Methods(http.MethodGet)
	r.Handle("/tasks/{id}", protected(tasks.UpdateTask)).Methods(http.MethodPatch)
	r.Handle("/tasks/{id}", protected(tasks.DeleteTask)).Methods(http.MethodDelete)

	var h http.Handler = r
	if len(d.CORSOrigins) > 0 {
		h = gorillahandlers.CORS(
			gorillahandlers.AllowedOrigins(d.CORSOrigins),
			gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete}),
			gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		)(h)
	}
	h = gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(slog.NewLogLogger(d.Logger.Handler(), slog.LevelError)),
	)(h)
	h = middlewares.Maintenance(d.Maintenance)(h)
	return middlewares.RequestLogger(d.Logger)(h)
}
