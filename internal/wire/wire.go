// internal/wire/wire.go
package wire

import (
	"net/http"

	"mediateka/internal/adaptor"
	"mediateka/internal/data/repository"
	"mediateka/internal/usecase"
	"mediateka/pkg/auth"
	"mediateka/pkg/middleware"
	"mediateka/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type App struct {
	Router *chi.Mux
}

// Wiring builds the dependency graph: token manager, services, handlers,
// and the routed chi mux.
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	tokens := auth.NewTokenManager(config.JWT.Secret, config.JWT.ExpiryHours)

	service := usecase.NewService(repo, tokens, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, tokens, repo, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	tokens auth.TokenManager,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireAuth(r, handler.Auth, config, logger)
	wireUser(r, handler.User, tokens, repo, logger)
	wireCategory(r, handler.Category, tokens, repo, logger)
	wireGenre(r, handler.Genre, tokens, repo, logger)
	wireTitle(r, handler.Title, tokens, repo, logger)
	wireReview(r, handler.Review, tokens, repo, logger)
	wireComment(r, handler.Comment, tokens, repo, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
