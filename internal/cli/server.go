package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vize-study-service/internal/app"
	"vize-study-service/internal/config"
	"vize-study-service/internal/infra/memory"
	pgcatalog "vize-study-service/internal/infra/postgres"
	redisinfra "vize-study-service/internal/infra/redis"
	transport "vize-study-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the study server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(sampleCatalog())
	if pool != nil {
		loader = pgcatalog.NewCatalogLoader(pool)
	} else if cfg.Catalog.Path != "" {
		loader = memory.NewFileCatalogLoader(cfg.Catalog.Path)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalog app.CatalogRepository
	if redisClient != nil {
		catalog = redisinfra.NewCatalogRepository(redisClient, loader, cfg.Redis.Namespace, catalogTTL)
	} else {
		catalog = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var store app.UserSessionRepository
	switch {
	case redisClient != nil:
		store = redisinfra.NewSessionStore(redisClient, cfg.Redis.Namespace)
	case cfg.Session.File != "":
		store = memory.NewFileSessionStore(cfg.Session.File)
	default:
		store = memory.NewSessionStore()
	}

	service := app.NewStudyService(ctx, store, catalog)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting study service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCatalog provides a minimal raw catalog so the server runs with zero
// config; point catalog.path or postgres.url at real data in production.
func sampleCatalog() []any {
	return []any{
		map[string]any{
			"id":         "eay_1_1",
			"konu":       "Genel",
			"zorluk":     "Kolay",
			"soruMetni":  "2 + 2 kactir?",
			"secenekler": []any{"3", "4", "5"},
			"dogruCevap": "4",
			"aciklama":   "Toplama islemi.",
		},
		map[string]any{
			"id":         "eay_1_2",
			"konu":       "Genel",
			"zorluk":     "Kolay",
			"soruMetni":  "Haftanin kac gunu vardir?",
			"secenekler": []any{"5", "6", "7"},
			"dogruCevap": "7",
			"aciklama":   "Takvim bilgisi.",
		},
	}
}
