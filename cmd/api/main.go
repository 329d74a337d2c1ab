package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/mock-interview/backend/internal/config"
	"github.com/zhouzirui/mock-interview/backend/internal/handler"
	"github.com/zhouzirui/mock-interview/backend/internal/handler/admin"
	"github.com/zhouzirui/mock-interview/backend/internal/model/questionbank"
	"github.com/zhouzirui/mock-interview/backend/internal/service/ai"
	"github.com/zhouzirui/mock-interview/backend/internal/service/generator"
	"github.com/zhouzirui/mock-interview/backend/internal/service/guard"
	"github.com/zhouzirui/mock-interview/backend/internal/service/interview"
	"github.com/zhouzirui/mock-interview/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	bank, err := loadQuestionBank(cfg.QuestionBankPath)
	if err != nil {
		log.Fatalf("failed to load question bank: %v", err)
	}

	sessions, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Printf("warning: failed to open %s session store: %v", cfg.Store.Backend, err)
		log.Println("continuing with in-memory session storage")
		sessions = store.NewMemory()
	}
	if closer, ok := sessions.(io.Closer); ok {
		defer closer.Close()
	}

	// Initialize AI service
	var text ai.TextGenerator
	provider := "development"
	switch {
	case cfg.AI.DevelopmentMode:
		log.Println("development mode enabled, questions and evaluations come from the local bank")
	default:
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing in fallback mode - 请检查模型相关环境变量")
		} else {
			text = aiService
			provider = aiService.Provider()
			log.Printf("AI service initialized successfully (provider=%s model=%s)", provider, cfg.AI.Model)
		}
	}

	gen := generator.New(
		text,
		guard.NewRateLimiter(cfg.Generator.DailyLimit),
		guard.NewResponseCache(),
		bank,
		generator.Options{
			DevelopmentMode: cfg.AI.DevelopmentMode || text == nil,
			CachingEnabled:  cfg.Generator.CachingEnabled,
			MaxRetries:      cfg.Generator.MaxRetries,
			RetryBaseDelay:  cfg.Generator.RetryBaseDelay,
			RetryMaxJitter:  cfg.Generator.RetryMaxJitter,
		},
	)

	svc := interview.NewService(sessions, gen)

	router := handler.NewRouter(svc, gen, handler.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Info: admin.Info{
			AIProvider:   provider,
			SessionStore: sessions.Name(),
		},
	})

	startServer(ctx, cfg.Server, router)
}

func loadQuestionBank(path string) (*questionbank.Bank, error) {
	if path == "" {
		return questionbank.Default()
	}
	log.Printf("loading question bank from %s", path)
	return questionbank.Load(path)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Interview practice backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
