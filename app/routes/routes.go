package routes

import (
	"log/slog"
	"net/http"
	"strings"

	"blog/app/controllers"
	"blog/app/middleware"
	"blog/app/repositories"
	"blog/app/services"

	"github.com/gorilla/mux"
)

// Config holds everything the router needs to build its controllers
type Config struct {
	Posts     *services.PostService
	Store     repositories.PostRepository
	Templates controllers.Renderer
	Logger    *slog.Logger

	IndexLimit         int
	GenerateRequestIDs bool
	RabbitMQURL        string

	// AdminUsername and AdminPasswordHash gate /admin. With no hash the
	// admin routes are not registered.
	AdminUsername     string
	AdminPasswordHash string
}

// Setup builds the application handler: the mux router wrapped in the
// request-id, logging and recovery middleware. The middleware sits outside
// the router so unmatched requests pass through it too.
func Setup(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	router := mux.NewRouter()

	notFound := controllers.NewNotFoundHandler(logger, cfg.Templates)
	router.NotFoundHandler = notFound
	router.MethodNotAllowedHandler = methodNotAllowed(router)

	postController := controllers.NewPostController(cfg.Posts, cfg.Templates, notFound, logger, cfg.IndexLimit)
	healthController := controllers.NewHealthController(cfg.Store, cfg.RabbitMQURL)

	router.HandleFunc("/", postController.Index).Methods("GET", "HEAD")
	router.HandleFunc("/posts/{slug}", postController.Show).Methods("GET", "HEAD")
	router.HandleFunc("/health", healthController.Check).Methods("GET")

	if cfg.AdminPasswordHash != "" {
		adminController := controllers.NewAdminController(cfg.Posts, cfg.Templates, notFound, logger)

		admin := router.PathPrefix("/admin").Subrouter()
		admin.Use(middleware.BasicAuth("blog admin", cfg.AdminUsername, cfg.AdminPasswordHash))
		admin.HandleFunc("", adminController.RedirectToPosts).Methods("GET")
		admin.HandleFunc("/", adminController.RedirectToPosts).Methods("GET")
		admin.HandleFunc("/posts", adminController.Index).Methods("GET")
		admin.HandleFunc("/posts", adminController.Create).Methods("POST")
		admin.HandleFunc("/posts/new", adminController.New).Methods("GET")
		admin.HandleFunc("/posts/{id:[0-9]+}/edit", adminController.Edit).Methods("GET")
		admin.HandleFunc("/posts/{id:[0-9]+}", adminController.Update).Methods("POST")
		admin.HandleFunc("/posts/{id:[0-9]+}/delete", adminController.Delete).Methods("POST")
	} else {
		logger.Warn("admin.password_hash is empty, admin routes disabled")
	}

	var handler http.Handler = router
	handler = middleware.Recoverer(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(cfg.GenerateRequestIDs)(handler)
	return handler
}

var allMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// methodNotAllowed answers 405 and lists the methods the matched path
// does accept.
func methodNotAllowed(router *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var allowed []string
		for _, method := range allMethods {
			probe := r.Clone(r.Context())
			probe.Method = method
			var match mux.RouteMatch
			if router.Match(probe, &match) && match.MatchErr == nil {
				allowed = append(allowed, method)
			}
		}
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})
}
