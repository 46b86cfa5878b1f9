package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Server exposes the read-side endpoints: game lookup, replay, lobby,
// per-player stats and match history. All writes go through the WebSocket
// transport.
type Server struct {
	logger   *slog.Logger
	handlers *handlers
}

func New(logger *slog.Logger, manager gameManager) *Server {
	return &Server{
		logger:   logger,
		handlers: newHandlers(logger, manager),
	}
}

func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", that.handlers.Ping)
	mux.HandleFunc("GET /games", that.handlers.WaitingGames)
	mux.HandleFunc("GET /games/{id}", that.handlers.GameByID)
	mux.HandleFunc("GET /games/{id}/replay", that.handlers.Replay)
	mux.HandleFunc("GET /rooms/{code}", that.handlers.GameByRoomCode)
	mux.HandleFunc("GET /me/games", that.handlers.MyGames)
	mux.HandleFunc("GET /me/stats", that.handlers.MyStats)
	mux.HandleFunc("GET /me/matches", that.handlers.MyMatches)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
