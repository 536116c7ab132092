package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "braid/internal/adapters/http"
	"braid/internal/adapters/llm"
	firestorestore "braid/internal/adapters/storage/firestore"
	memstore "braid/internal/adapters/storage/memory"
	sqlitestore "braid/internal/adapters/storage/sqlite"
	"braid/internal/app/archive"
	"braid/internal/app/workspace"
	"braid/internal/config"
	"braid/internal/domain"
	"braid/internal/observability"
)

const version = "0.1.0"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "braid-api",
		Short:         "Threaded-chat engine API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := observability.Logger()

	var llmClient domain.StreamClient
	if cfg.UseMockLLM {
		log.Info("using mock LLM client")
		llmClient = llm.NewMockLLM()
	} else {
		log.Info("using Vertex AI LLM client", "model", cfg.DefaultModel)
		llmClient, err = llm.NewVertexClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.DefaultModel)
		if err != nil {
			return fmt.Errorf("initializing Vertex AI client: %w", err)
		}
	}

	snapshotStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	workspaces := workspace.NewManager(cfg.DefaultModel, llmClient, llm.BuildSystemPrompt)
	archiveSvc := archive.NewService(snapshotStore, cfg.ShareBaseURL, cfg.RequireAuth)
	handler := httpadapter.NewServer(workspaces, archiveSvc)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("braid API listening", "port", cfg.Port, "storage", cfg.StorageBackend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func openStore(ctx context.Context, cfg *config.Config) (domain.SnapshotStore, func(), error) {
	log := observability.Logger()

	switch cfg.StorageBackend {
	case "firestore":
		log.Info("using Firestore storage", "project", cfg.GCPProjectID)
		store, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing Firestore store: %w", err)
		}
		return store, func() {}, nil

	case "sqlite":
		log.Info("using SQLite storage", "path", cfg.SQLitePath)
		store, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing SQLite store: %w", err)
		}
		return store, func() { store.Close() }, nil

	default:
		log.Info("using in-memory storage")
		return memstore.NewSnapshotStore(), func() {}, nil
	}
}
