// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cued-ai/rehearsal-platform/internal/config"
	"github.com/cued-ai/rehearsal-platform/internal/dispatch"
	"github.com/cued-ai/rehearsal-platform/internal/handler"
	"github.com/cued-ai/rehearsal-platform/internal/llm"
	"github.com/cued-ai/rehearsal-platform/internal/middleware"
	natsclient "github.com/cued-ai/rehearsal-platform/internal/nats"
	"github.com/cued-ai/rehearsal-platform/internal/service"
	"github.com/cued-ai/rehearsal-platform/internal/storage"
	"github.com/cued-ai/rehearsal-platform/pkg/logger"
	"github.com/cued-ai/rehearsal-platform/pkg/tracing"
)

func main() {
	// A missing .env is fine; environment variables take over.
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "rehearsal-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Storage: NATS JetStream KV in deployment, in-memory when disabled.
	var (
		kv      storage.KV
		checker handler.ReadinessChecker
	)
	if cfg.NATSEnabled {
		client, err := natsclient.Connect(natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer client.Close()

		kvStore, err := natsclient.NewKVStore(ctx, client)
		if err != nil {
			log.Error("failed to open KV bucket", zap.Error(err))
			os.Exit(1)
		}
		kv = kvStore
		checker = client
	} else {
		log.Warn("NATS disabled, state will not survive restarts")
		kv = storage.NewMemoryKV()
	}

	// LLM client is optional; without one every reply comes from the local
	// dispatcher.
	var llmClient llm.Client
	switch {
	case cfg.AnthropicAPIKey != "" && cfg.DefaultLLM != string(llm.ProviderOpenAI):
		llmClient, err = llm.NewClient(llm.ProviderAnthropic, cfg.AnthropicAPIKey)
	case cfg.OpenAIAPIKey != "":
		llmClient, err = llm.NewClient(llm.ProviderOpenAI, cfg.OpenAIAPIKey)
	case cfg.AnthropicAPIKey != "":
		llmClient, err = llm.NewClient(llm.ProviderAnthropic, cfg.AnthropicAPIKey)
	}
	if err != nil {
		log.Warn("failed to create LLM client, remote completions disabled", zap.Error(err))
		llmClient = nil
	}
	if llmClient == nil {
		log.Info("no LLM provider configured, serving canned responses only")
	}

	dispatcher := dispatch.New()

	conversationSvc := service.NewConversationService(ctx, kv, log)
	chatSvc := service.NewChatService(conversationSvc, dispatcher, llmClient, cfg.CompletionMaxTokens, log)
	feedbackSvc := service.NewFeedbackService(llmClient, dispatch.TimePicker(), cfg.FeedbackMaxTokens, log)
	documentSvc := service.NewDocumentService(llmClient, cfg.FormatMaxTokens, log)
	subscribeSvc := service.NewSubscribeService(log)

	healthHandler := handler.NewHealthHandler(checker)
	chatHandler := handler.NewChatHandler(chatSvc, log)
	conversationHandler := handler.NewConversationHandler(conversationSvc, log)
	documentHandler := handler.NewDocumentHandler(documentSvc, cfg.MaxUploadBytes, log)
	feedbackHandler := handler.NewFeedbackHandler(feedbackSvc, log)
	subscribeHandler := handler.NewSubscribeHandler(subscribeSvc, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// The public demo runs open; auth kicks in only when a secret is set.
		if cfg.JWTSecret != "" {
			r.Use(middleware.Auth(cfg.JWTSecret))
		}
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/chat", chatHandler.Send)

		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", conversationHandler.Create)
			r.Get("/", conversationHandler.List)
			r.Delete("/", conversationHandler.ClearAll)
			r.Post("/current", conversationHandler.Switch)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", conversationHandler.Get)
				r.Put("/", conversationHandler.Rename)
				r.Delete("/", conversationHandler.Delete)
				r.Get("/messages", conversationHandler.Messages)
				r.Post("/messages", conversationHandler.AppendMessage)
			})
		})

		r.Get("/memory", conversationHandler.Memory)
		r.Delete("/memory", conversationHandler.ResetMemory)

		r.Post("/documents/parse", documentHandler.Parse)
		r.Post("/rehearsal/feedback", feedbackHandler.Feedback)
		r.Post("/subscribe", subscribeHandler.Subscribe)
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
