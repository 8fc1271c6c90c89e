// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gridverse/gridverse/internal/auth"
	"github.com/gridverse/gridverse/internal/observability"
	"github.com/gridverse/gridverse/internal/world"
)

// AccountService is the account surface the handlers need.
type AccountService interface {
	Signup(ctx context.Context, username, password, accountType string) (ulid.ULID, error)
	Signin(ctx context.Context, username, password string) (string, error)
	UpdateAvatar(ctx context.Context, userID, avatarID ulid.ULID) error
	GetAvatars(ctx context.Context, userIDs []ulid.ULID) ([]auth.UserAvatar, error)
}

// CatalogService is the catalog surface the handlers need.
type CatalogService interface {
	CreateElement(ctx context.Context, width, height int, static bool, imageURL string) (ulid.ULID, error)
	UpdateElementImage(ctx context.Context, id ulid.ULID, imageURL string) error
	CreateAvatar(ctx context.Context, name, imageURL string) (ulid.ULID, error)
	CreateMap(ctx context.Context, name, dimensions, thumbnail string, placements []world.MapPlacement) (ulid.ULID, error)
	ListElements(ctx context.Context) ([]*world.Element, error)
	ListAvatars(ctx context.Context) ([]*world.Avatar, error)
}

// SpaceService is the space surface the handlers need.
type SpaceService interface {
	Create(ctx context.Context, creatorID ulid.ULID, name, dimensions string) (ulid.ULID, error)
	CreateFromMap(ctx context.Context, creatorID ulid.ULID, name string, mapID ulid.ULID) (ulid.ULID, error)
	Delete(ctx context.Context, callerID, spaceID ulid.ULID) error
	ListOwn(ctx context.Context, callerID ulid.ULID) ([]*world.Space, error)
	Get(ctx context.Context, spaceID ulid.ULID) (*world.SpaceDetail, error)
	AddElement(ctx context.Context, callerID, spaceID, elementID ulid.ULID, x, y int) error
	RemoveElement(ctx context.Context, callerID, spaceElementID ulid.ULID) error
}

// Config holds the server's dependencies.
type Config struct {
	Addr            string
	CORSOrigins     []string
	Accounts        AccountService
	Catalog         CatalogService
	Spaces          SpaceService
	Verifier        TokenVerifier
	Metrics         *observability.Metrics
	Logger          *slog.Logger
	ShutdownTimeout time.Duration
}

// Server serves the REST API.
type Server struct {
	cfg        Config
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
	listener   net.Listener
}

// NewServer builds the router and returns an unstarted server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{cfg: cfg, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(recordMetrics(s.cfg.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	user := RequireUser(s.cfg.Verifier)
	admin := RequireAdmin(s.cfg.Verifier)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/signin", s.handleSignin)
		r.Get("/elements", s.handleListElements)
		r.Get("/avatars", s.handleListAvatars)
		r.Get("/user/metadata/bulk", s.handleBulkMetadata)
		r.Get("/space/{spaceId}", s.handleGetSpace)

		r.Group(func(r chi.Router) {
			r.Use(user)
			r.Post("/user/metadata", s.handleUpdateMetadata)
			r.Post("/space", s.handleCreateSpace)
			r.Get("/space/all", s.handleListSpaces)
			r.Delete("/space/{spaceId}", s.handleDeleteSpace)
			r.Post("/space/element", s.handleAddSpaceElement)
			r.Delete("/space/element", s.handleRemoveSpaceElement)
		})

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/admin/element", s.handleCreateElement)
			r.Put("/admin/element/{elementId}", s.handleUpdateElement)
			r.Post("/admin/avatar", s.handleCreateAvatar)
			r.Post("/admin/map", s.handleCreateMap)
		})
	})

	return r
}

// Start begins serving on the configured address.
// It returns an error channel that receives any error from the HTTP server
// after it starts; the channel is closed on graceful shutdown.
func (s *Server) Start() (<-chan error, error) {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return nil, oops.With("addr", s.cfg.Addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return oops.With("operation", "shutdown_api_server").Wrap(err)
	}
	s.logger.Info("api server stopped")
	return nil
}
