package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrygo/folio/internal/profile"
	"github.com/hrygo/folio/server/middleware"
	apiv1 "github.com/hrygo/folio/server/router/api/v1"
	"github.com/hrygo/folio/server/service/tagging"
	"github.com/hrygo/folio/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store
	Tagging *tagging.Service

	echoServer *echo.Echo
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Profile: profile,
		Store:   store,
		Tagging: tagging.NewService(store, tagging.Options{CacheTTL: profile.CacheTTL}),
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomiddleware.Recover())
	echoServer.Use(middleware.RequestContext(slog.Default()))
	// Health checks and metric scrapes stay outside the limiter.
	limiter := middleware.NewRateLimiter(profile.RateLimit, profile.RateBurst)
	echoServer.Use(limiter.Middleware("/api/"))
	s.echoServer = echoServer

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})
	echoServer.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiV1Service := apiv1.NewAPIV1Service(profile, store, s.Tagging)
	apiV1Service.RegisterRoutes(echoServer)

	slog.Debug("server created", slog.String("mode", profile.Mode), slog.String("driver", profile.Driver))
	return s, nil
}

// Handler exposes the underlying http handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}

	slog.Info("server listening", slog.String("address", listener.Addr().String()), slog.String("version", s.Profile.Version))
	s.echoServer.Listener = listener
	if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start echo server")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("server shutting down")
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown echo server", slog.String("error", err.Error()))
	}

	s.Tagging.Close()
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", slog.String("error", err.Error()))
	}

	slog.Info("server stopped properly")
}
