package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/storyloom/trpg-api/internal/config"
	"github.com/storyloom/trpg-api/internal/errors"
	"github.com/storyloom/trpg-api/internal/events"
	"github.com/storyloom/trpg-api/internal/narrator/gemini"
	"github.com/storyloom/trpg-api/internal/orchestrators/turn"
	"github.com/storyloom/trpg-api/internal/pkg/clock"
	"github.com/storyloom/trpg-api/internal/pkg/dice"
	"github.com/storyloom/trpg-api/internal/pkg/idgen"
	redisclient "github.com/storyloom/trpg-api/internal/redis"
	"github.com/storyloom/trpg-api/internal/repositories/bestiary"
	"github.com/storyloom/trpg-api/internal/repositories/gamesession"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server",
	Long:  `Start the trpg-api HTTP server with all configured services.`,
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		return err
	}

	client, err := redisclient.NewClient(cfg.RedisAddr, nil)
	if err != nil {
		return err
	}

	sessionRepo, err := gamesession.NewRedisRepository(&gamesession.Config{
		Client: client,
		Clock:  clock.New(),
	})
	if err != nil {
		return err
	}

	bestiaryRepo, err := bestiary.NewInMemory(&bestiary.Config{
		Groups:      rules.Bestiary,
		IDGenerator: idgen.NewPrefixed("mon"),
	})
	if err != nil {
		return err
	}

	resolver, err := events.NewResolver(&events.Config{
		Rules:    rules.Events,
		Bestiary: bestiaryRepo,
		Roller:   dice.New(),
	})
	if err != nil {
		return err
	}

	generator, err := gemini.New(ctx, &gemini.Config{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
	})
	if err != nil {
		return err
	}
	defer generator.Close()

	turnService, err := turn.NewOrchestrator(&turn.Config{
		SessionRepo:   sessionRepo,
		Generator:     generator,
		Events:        resolver,
		HistoryWindow: cfg.HistoryWindow,
	})
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/games/{game_id}/turn", handleTurn(turnService))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("received shutdown signal, gracefully stopping")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()

	slog.Info("trpg-api server listening", "addr", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

type turnRequestBody struct {
	Message string `json:"message"`
}

// handleTurn is thin HTTP glue over the turn orchestrator. The owner
// id is taken from the authentication layer's header as given; issuing
// and verifying it is not this server's job.
func handleTurn(service turn.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.Header.Get("X-Owner-ID")

		var body turnRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, errors.InvalidArgument("request body must be JSON with a message field"))
			return
		}

		output, err := service.ProcessTurn(r.Context(), &turn.ProcessTurnInput{
			GameID:  r.PathValue("game_id"),
			OwnerID: ownerID,
			Message: body.Message,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(output)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code.HTTPStatus())
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code.String(),
		"message": errors.GetMessage(err),
	})
}
