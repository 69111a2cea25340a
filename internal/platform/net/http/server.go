package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bugprint/internal/platform/config"
	"bugprint/internal/platform/logger"
)

// Server is a chi mux behind a stdlib http.Server
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *stdhttp.Server
}

// NewServer listens on cfg's ADDR, ":4000" when unset
func NewServer(cfg config.Conf) *Server {
	addr := cfg.MayString("ADDR", ":4000")
	m := chi.NewRouter()
	return &Server{
		addr: addr,
		mux:  m,
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router returns a Router facade over the chi mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Addr returns the listening address
func (s *Server) Addr() string { return s.addr }

// shutdownGrace bounds the drain once ctx passed to Run is done
const shutdownGrace = 10 * time.Second

// Run starts the server and blocks until it stops
// canceling ctx drains in flight requests and returns nil
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
			defer cancel()
			if err := s.srv.Shutdown(sctx); err != nil {
				log.Warn().Err(err).Msg("http shutdown")
			}
		case <-stop:
		}
	}()

	log.Info().Str("addr", s.addr).Msg("http listening")
	err := s.srv.ListenAndServe()
	if errors.Is(err, stdhttp.ErrServerClosed) {
		return nil
	}
	return err
}
