// Package api serves the storefront, push subscription and admin endpoints.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"qimat/config"
	"qimat/internal/delivery"
	apimiddleware "qimat/internal/delivery/api/middleware"
	"qimat/internal/delivery/api/router"
	"qimat/internal/delivery/api/validator"
	deliverycontext "qimat/internal/delivery/context"
	"qimat/internal/delivery/middleware"
	"qimat/internal/domain/lifecycle"
	"qimat/internal/errors"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"golang.org/x/net/http2"
)

type apiServer struct {
	addr   string
	idle   http2.Server
	logger *slog.Logger
	echo   *echo.Echo
}

// ServerParams holds dependencies for HTTP server, injected by Fx.
type ServerParams struct {
	fx.In

	Lc           fx.Lifecycle
	Cfg          *config.Config
	Logger       *slog.Logger
	RouterParams router.RouterParams
}

// NewServer builds the echo instance and registers its shutdown hook.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	timeouts := params.Cfg.HTTP.Timeouts
	e.Server.ReadTimeout = timeouts.ReadTimeout
	e.Server.ReadHeaderTimeout = timeouts.ReadHeaderTimeout
	e.Server.WriteTimeout = timeouts.WriteTimeout
	e.Server.IdleTimeout = timeouts.IdleTimeout

	// Order matters: panics are recovered first and every later log line carries the request id.
	e.Use(
		echomiddleware.Recover(),
		middleware.NewRequestIDMiddleware(params.Logger).Process,
		middleware.NewLoggerMiddleware(params.Logger, params.Cfg).Handle,
		echomiddleware.CORSWithConfig(corsConfig(params.Cfg)),
		echomiddleware.BodyLimit(params.Cfg.HTTP.MaxRequestBodySize),
		echomiddleware.GzipWithConfig(echomiddleware.GzipConfig{
			Skipper: func(c echo.Context) bool { return c.Path() == "/metrics" },
		}),
	)

	e.HTTPErrorHandler = apimiddleware.NewErrorMiddleware(params.Logger).HandleHTTPError
	e.Validator = validator.New()

	router.NewRouter(params.RouterParams).RegisterRoutes(e)

	srv := &apiServer{
		addr:   net.JoinHostPort("0.0.0.0", strconv.Itoa(params.Cfg.HTTP.Port)),
		idle:   http2.Server{IdleTimeout: timeouts.IdleTimeout},
		logger: params.Logger,
		echo:   e,
	}

	params.Lc.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

// corsConfig allows the storefront origin, or any origin when none is configured.
func corsConfig(cfg *config.Config) echomiddleware.CORSConfig {
	corsCfg := echomiddleware.DefaultCORSConfig
	if cfg.Site != nil && cfg.Site.BaseURL != "" {
		corsCfg.AllowOrigins = []string{strings.TrimRight(cfg.Site.BaseURL, "/")}
	}
	corsCfg.AllowHeaders = []string{
		echo.HeaderOrigin,
		echo.HeaderContentType,
		echo.HeaderAccept,
		echo.HeaderAuthorization,
		deliverycontext.HeaderXRequestID,
	}
	corsCfg.ExposeHeaders = []string{deliverycontext.HeaderXRequestID}

	return corsCfg
}

// Serve blocks until the server is shut down. Cleartext HTTP/2 is accepted next to HTTP/1.1.
func (s *apiServer) Serve(_ context.Context) error {
	s.logger.Info("Starting API HTTP server", slog.String("addr", s.addr))

	if err := s.echo.StartH2CServer(s.addr, &s.idle); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}

	return nil
}

func (s *apiServer) stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Shutting down API HTTP server")

	return errors.WithStack(s.echo.Shutdown(ctx))
}
