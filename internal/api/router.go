package api

import (
	"net/http"
	"time"

	"camp_photos/internal/api/handler"
	"camp_photos/internal/api/middleware"
	"camp_photos/internal/app/service"
	"camp_photos/internal/common/security"
	"camp_photos/internal/domain/repository"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

type RouterDeps struct {
	TokenCodec        *security.TokenCodec
	UserRepo          repository.UserRepository
	AuthService       *service.AuthService
	ChallengeService  *service.ChallengeService
	SubmissionService *service.SubmissionService
	UploadsDir        string
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Base middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Authentication gate: Verifier decodes the bearer token fail-open, the
	// Authenticator turns it into an identity (or anonymous), and the Policy
	// is the single place requests get rejected.
	r.Use(jwtauth.Verifier(deps.TokenCodec.JWTAuth()))
	r.Use(middleware.Authenticator(deps.UserRepo))
	r.Use(middleware.Policy())

	r.Route("/api", func(api chi.Router) {
		authHandler := handler.NewAuthHandler(deps.AuthService)
		api.Route("/auth", authHandler.RegisterRoutes)

		healthHandler := handler.NewHealthHandler()
		api.Route("/test", healthHandler.RegisterRoutes)

		challengeHandler := handler.NewChallengeHandler(deps.ChallengeService)
		submissionHandler := handler.NewSubmissionHandler(deps.SubmissionService)
		api.Route("/challenges", func(cr chi.Router) {
			challengeHandler.RegisterRoutes(cr)
			submissionHandler.RegisterChallengeRoutes(cr)
		})
		api.Route("/submissions", submissionHandler.RegisterRoutes)
		api.Route("/gallery", submissionHandler.RegisterGalleryRoutes)
	})

	// Uploaded photos are served as plain static files.
	if deps.UploadsDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadsDir)))
		r.Get("/uploads/*", func(w http.ResponseWriter, req *http.Request) {
			fileServer.ServeHTTP(w, req)
		})
	}

	return r
}
