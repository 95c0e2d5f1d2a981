package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"escape-quiz-service/internal/advice"
	"escape-quiz-service/internal/ai"
	"escape-quiz-service/internal/app"
	"escape-quiz-service/internal/config"
	"escape-quiz-service/internal/grader"
	"escape-quiz-service/internal/infra/memory"
	pgloader "escape-quiz-service/internal/infra/postgres"
	redisstore "escape-quiz-service/internal/infra/redis"
	"escape-quiz-service/internal/judge"
	"escape-quiz-service/internal/script"
	"escape-quiz-service/internal/speech"
	transport "escape-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.ScriptLoader = memory.NewStaticScriptLoader(script.MustBuiltin())
	if pool != nil {
		loader = pgloader.NewScriptLoader(pool)
	}

	scriptTTL := config.TTLDuration(cfg.Script.TTL, 10*time.Minute)
	var scripts app.ScriptRepository
	if redisClient != nil {
		scripts = redisstore.NewScriptRepository(redisClient, loader, scriptTTL)
	} else {
		scripts = memory.NewScriptRepository(loader, scriptTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	chat, err := buildChatClient(ctx, cfg)
	if err != nil {
		return err
	}
	if closer, ok := chat.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	service := app.NewGameService(sessions, scripts, judge.NewService(chat))
	wsHandler := transport.NewWSHandler(service, buildSynthesizer(cfg))
	gradeHandler := transport.NewGradeHandler(grader.NewService(chat))
	adviceHandler := transport.NewAdviceHandler(advice.NewAdvisor(chat))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/tasks", gradeHandler.ListTasks)
	mux.HandleFunc("/grade", gradeHandler.Grade)
	mux.HandleFunc("/advice", adviceHandler.Advise)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting escape quiz service on :%s", finalPort)
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

// buildChatClient returns nil when no provider is configured or the key
// is missing; the judge and grader then run on their local fallbacks.
func buildChatClient(ctx context.Context, cfg config.Config) (ai.ChatClient, error) {
	timeout := config.TTLDuration(cfg.AI.Timeout, 10*time.Second)

	switch cfg.AI.Provider {
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			log.Println("OPENAI_API_KEY not set, judging locally")
			return nil, nil
		}
		return ai.NewOpenAIClient(key, cfg.AI.Model, 0.3, timeout), nil
	case "gemini":
		key := os.Getenv("GEMINI_API_KEY")
		if key == "" {
			log.Println("GEMINI_API_KEY not set, judging locally")
			return nil, nil
		}
		return ai.NewGeminiClient(ctx, key, cfg.AI.Model, 0.3)
	case "":
		return nil, nil
	default:
		log.Printf("unknown ai provider %q, judging locally", cfg.AI.Provider)
		return nil, nil
	}
}

func buildSynthesizer(cfg config.Config) speech.Synthesizer {
	var backend speech.Synthesizer
	switch cfg.TTS.Provider {
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			log.Println("OPENAI_API_KEY not set, audio disabled")
			return nil
		}
		backend = speech.NewOpenAISynthesizer(key, "", "")
	case "google":
		key := os.Getenv("GOOGLE_TTS_API_KEY")
		if key == "" {
			log.Println("GOOGLE_TTS_API_KEY not set, audio disabled")
			return nil
		}
		backend = speech.NewGoogleSynthesizer(key, "")
	default:
		return nil
	}

	cacheDir := cfg.TTS.CacheDir
	if cacheDir == "" {
		cacheDir = "audio_cache"
	}
	return speech.NewCachedSynthesizer(backend, cacheDir, cfg.TTS.AudioDir)
}
