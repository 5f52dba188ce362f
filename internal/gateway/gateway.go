// ABOUTME: Gateway wires the dialogue engine together and owns the HTTP server lifecycle.
// ABOUTME: Builds store, conversation memory, tools, and model client from config and runs until shutdown.

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mitra-ai/mitra-gateway/internal/config"
	"github.com/mitra-ai/mitra-gateway/internal/convo"
	"github.com/mitra-ai/mitra-gateway/internal/dialogue"
	"github.com/mitra-ai/mitra-gateway/internal/model"
	"github.com/mitra-ai/mitra-gateway/internal/search"
	"github.com/mitra-ai/mitra-gateway/internal/store"
	"github.com/mitra-ai/mitra-gateway/internal/tools"
)

// Gateway orchestrates the mitra-gateway server components.
type Gateway struct {
	config        *config.Config
	store         store.Store
	conversations *convo.Store
	dialogue      *dialogue.Service
	httpServer    *http.Server
	logger        *slog.Logger

	// mockGenerator lets tests inject a stub reply generator.
	mockGenerator generator
}

// New creates a gateway from config. All capabilities are constructed here
// and injected; nothing holds ambient global state.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ledger, err := store.NewSQLiteStore(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	conversations := convo.NewStore(cfg.Conversation.Retention)

	searchClient := search.NewClient(cfg.Search.APIKey,
		search.WithBaseURL(nonEmpty(cfg.Search.BaseURL, search.DefaultBaseURL)),
		search.WithMaxResults(cfg.Search.MaxResults),
	)

	registry := tools.NewRegistry(logger)
	registry.Register(tools.NewWebSearchTool(searchClient))

	modelClient := model.NewOpenAIClient(model.Config{
		APIKey:     cfg.Model.APIKey,
		BaseURL:    cfg.Model.BaseURL,
		Model:      cfg.Model.Name,
		MaxRetries: cfg.Model.MaxRetries,
	}, logger)

	svc := dialogue.New(conversations, registry, modelClient, logger,
		dialogue.WithMaxToolRounds(cfg.Conversation.MaxToolRounds),
		dialogue.WithLedger(ledger),
	)

	g := &Gateway{
		config:        cfg,
		store:         ledger,
		conversations: conversations,
		dialogue:      svc,
		logger:        logger.With("component", "gateway"),
	}

	g.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           g.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return g, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server
// fails. On shutdown the conversation memory is cleared and the store closed.
func (g *Gateway) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		g.logger.Info("HTTP server listening", "addr", g.httpServer.Addr)
		if err := g.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		g.logger.Info("shutting down")
		if err := g.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	err := eg.Wait()

	g.conversations.Clear()
	g.conversations.Close()
	if closeErr := g.store.Close(); closeErr != nil {
		g.logger.Error("failed to close store", "error", closeErr)
	}

	return err
}

func nonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
