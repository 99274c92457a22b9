package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"

	"github.com/babcock-shuttle/shuttlemap/internal/fleet"
	"github.com/babcock-shuttle/shuttlemap/internal/simulation"
)

// Path is where the vehicle positions feed is served.
const Path = "/gtfsrt/vehicle-positions.pb"

// Source supplies the state a feed request is built from.
type Source interface {
	Snapshot() []simulation.Marker
	Shuttles() []fleet.Summary
}

type healthResponse struct {
	Status   string `json:"status"`
	Vehicles int    `json:"vehicles"`
}

// NewHandler serves the feed at Path and a health check at /api/health.
// The feed is protobuf; ?debug=1 returns the text form instead.
func NewHandler(src Source, proj Projection, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, func(w http.ResponseWriter, r *http.Request) {
		msg := Build(src.Snapshot(), src.Shuttles(), proj, time.Now())

		if r.URL.Query().Get("debug") == "1" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte(prototext.Format(msg)))
			return
		}

		b, err := proto.Marshal(msg)
		if err != nil {
			logger.Error().Err(err).Msg("failed to encode feed")
			http.Error(w, "failed to encode feed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/x-protobuf")
		_, _ = w.Write(b)
	})
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok", Vehicles: len(src.Snapshot())})
	})
	return mux
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, logger zerolog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return serve(ctx, ln, h, logger)
}

func serve(ctx context.Context, ln net.Listener, h http.Handler, logger zerolog.Logger) error {
	server := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(ln)
	}()
	logger.Info().Str("addr", ln.Addr().String()).Msg("feed server listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info().Msg("feed server shut down")
	return nil
}
