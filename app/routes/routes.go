package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"postboard/app/controllers"
	"postboard/app/middleware"
	"postboard/app/repositories"
	"postboard/app/services"
)

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(svc *services.Services, store repositories.Pinger, pageSize int, logger zerolog.Logger) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.ContentTypeJSON)

	postController := controllers.NewPostController(svc, pageSize, logger)
	groupController := controllers.NewGroupController(svc.Groups, logger)
	authorController := controllers.NewAuthorController(svc.Authors, logger)
	healthController := controllers.NewHealthController(store)

	router.NotFoundHandler = jsonError(logger, http.StatusNotFound, "not_found")
	router.MethodNotAllowedHandler = jsonError(logger, http.StatusMethodNotAllowed, "method_not_allowed")

	// Health probes
	router.HandleFunc("/live", healthController.Liveness).Methods("GET")
	router.HandleFunc("/ready", healthController.Readiness).Methods("GET")

	// Listings
	router.HandleFunc("/", postController.Index).Methods("GET")
	router.HandleFunc("/group/{slug}/", postController.GroupPosts).Methods("GET")
	router.HandleFunc("/profile/{username}/", postController.Profile).Methods("GET")

	// Posts
	router.HandleFunc("/posts/{id:[0-9]+}/", postController.Show).Methods("GET")
	router.HandleFunc("/create/", postController.New).Methods("GET")
	router.HandleFunc("/create/", postController.Create).Methods("POST")
	router.HandleFunc("/posts/{id:[0-9]+}/edit/", postController.EditForm).Methods("GET")
	router.HandleFunc("/posts/{id:[0-9]+}/edit/", postController.Edit).Methods("POST")

	// Groups and authors
	router.HandleFunc("/groups/", groupController.Index).Methods("GET")
	router.HandleFunc("/groups/", groupController.Create).Methods("POST")
	router.HandleFunc("/authors/", authorController.Create).Methods("POST")

	return router
}

// jsonError answers requests no route accepts. mux does not run router
// middleware for these, so it logs on its own.
func jsonError(logger zerolog.Logger, status int, code string) http.Handler {
	body := []byte(`{"error":"` + code + `"}` + "\n")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Warn().Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Msg("no route")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	})
}
