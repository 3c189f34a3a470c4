// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"company-research-agent/internal/config"
	"company-research-agent/internal/domain/ports/adapter"
	aiAdapters "company-research-agent/internal/infra/adapters/ai"
	"company-research-agent/internal/infra/adapters/notify"
	"company-research-agent/internal/infra/adapters/scrape"
	"company-research-agent/internal/infra/adapters/search"
	"company-research-agent/internal/infra/logging"
	"company-research-agent/internal/infra/metrics"
	red "company-research-agent/internal/infra/redis"
	"company-research-agent/internal/infra/web"
	"company-research-agent/internal/infra/worker"
	"company-research-agent/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop AI, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()

	jobRepo := red.NewJobRepo(redisClient, cfg.Redis.JobTTL)
	queue := red.NewQueue(redisClient)

	// ---- AI Adapter (Gemini -> OpenAI -> Noop in dev) ----
	var ai adapter.AIServiceAdapter
	switch {
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, cfg.AI.MaxOutTokens)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: Gemini")
	case cfg.AI.OpenAIKey != "":
		ai, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: OpenAI")
	case cfg.Runtime.Dev:
		ai = aiAdapters.NewNoopAIAdapter()
		logger.Warn().Msg("AI adapter: noop (dev mode)")
	default:
		log.Fatalf("no AI provider configured: set ai.gemini_key or ai.openai_key in %s", *cfgPath)
	}
	modelInfo, err := ai.GetModelInfo(cfg.AI.DefaultModel)
	if err != nil {
		log.Fatalf("model %s unavailable: %v", cfg.AI.DefaultModel, err)
	}
	logger.Info().Str("model", modelInfo.Name).Int("max_tokens", modelInfo.MaxTokens).Msg("default model ready")

	// ---- Collectors ----
	tavily, err := search.NewTavilyAdapter(cfg.Collectors.TavilyKey, cfg.Collectors.CallTimeout)
	if err != nil {
		log.Fatalf("tavily adapter: %v", err)
	}
	linkedin, err := scrape.NewScrapeCreatorsAdapter(cfg.Collectors.ScrapeCreatorsKey, cfg.Collectors.CallTimeout)
	if err != nil {
		log.Fatalf("scrapecreators adapter: %v", err)
	}
	firecrawl, err := scrape.NewFirecrawlAdapter(cfg.Collectors.FirecrawlKey, cfg.Collectors.CallTimeout)
	if err != nil {
		log.Fatalf("firecrawl adapter: %v", err)
	}

	// ---- Notifier ----
	var notifier adapter.Notifier = notify.NoopNotifier{}
	if cfg.Notify.TelegramToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			logger.Warn().Err(err).Msg("telegram notifier disabled")
		} else {
			notifier = tg
		}
	}

	// ---- Use cases ----
	modelName := cfg.AI.DefaultModel
	resolver := usecase.NewIdentityResolver(tavily, ai, modelName)
	profile := usecase.NewProfileCollector(linkedin, firecrawl, resolver, ai, modelName, logger)
	news := usecase.NewNewsCollector(tavily, ai, modelName)
	openings := usecase.NewJobsCollector(tavily, firecrawl, ai, modelName)
	synth := usecase.NewSynthesizer(ai, modelName, logger)

	pipeline := usecase.NewPipeline(jobRepo, resolver, profile, news, openings, synth, notifier, cfg.Research.StepTimeout, logger)
	researchUC := usecase.NewResearchUseCase(jobRepo, queue, logger)

	// ---- Workers ----
	pool := worker.NewPool(cfg.Research.Workers, logger)
	pool.Start(ctx)
	dispatcher := worker.NewDispatcher(queue, pool, pipeline, logger)
	go dispatcher.Start(ctx)

	// ---- HTTP server ----
	srv := web.NewServer(researchUC, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	cancel()
	pool.Stop()
}
