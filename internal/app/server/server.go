package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aria-khodro/cargo-relay/internal/app/ingress"
	"github.com/aria-khodro/cargo-relay/internal/app/server/handlers"
	"github.com/aria-khodro/cargo-relay/internal/config"
	"github.com/aria-khodro/cargo-relay/internal/core/contracts"
	"github.com/aria-khodro/cargo-relay/internal/core/services"
	"github.com/aria-khodro/cargo-relay/pkg/middleware"
)

type Server struct {
	mux       *http.ServeMux
	srv       *http.Server
	cfg       *config.Config
	log       *slog.Logger
	wsHandler *handlers.WSHandler
	verifier  contracts.IdentityVerifier
}

func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	sockets *services.SocketService,
	verifier contracts.IdentityVerifier,
	httpBackend *ingress.HTTPBackend,
) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		cfg:       cfg,
		log:       log,
		wsHandler: handlers.NewWSHandler(sockets, cfg.DevMode),
		verifier:  verifier,
	}

	s.routes(httpBackend)

	handler := middleware.RequestLogger(log)(s.mux)
	handler = middleware.TracerMiddleware(cfg.Service.Name)(handler)
	if cfg.APIOriginAllow.AllowCors {
		handler = middleware.CORS(middleware.CORSOptions{
			AllowOrigin:  cfg.APIOriginAllow.AllowOrigin,
			AllowMethods: cfg.APIOriginAllow.AllowMethods,
			AllowHeaders: cfg.APIOriginAllow.AllowHeaders,
		})(handler)
	}

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

func (s *Server) routes(httpBackend *ingress.HTTPBackend) {
	admission := middleware.AdmissionMiddleware(s.verifier)

	httpBackend.Register(s.mux)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.Handle("/ws", admission(http.HandlerFunc(s.wsHandler.Handler)))
}

func (s *Server) Start() error {
	s.log.Info("server - start - listening", "addr", s.srv.Addr, "protocol", s.cfg.Protocol)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
