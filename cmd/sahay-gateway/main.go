package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/d23ai/sahay-gateway/internal/agent"
	"github.com/d23ai/sahay-gateway/internal/channel"
	"github.com/d23ai/sahay-gateway/internal/channel/telegram"
	"github.com/d23ai/sahay-gateway/internal/channel/webchat"
	"github.com/d23ai/sahay-gateway/internal/classify"
	"github.com/d23ai/sahay-gateway/internal/config"
	"github.com/d23ai/sahay-gateway/internal/graph"
	"github.com/d23ai/sahay-gateway/internal/handlers"
	"github.com/d23ai/sahay-gateway/internal/llm"
	"github.com/d23ai/sahay-gateway/internal/logging"
	"github.com/d23ai/sahay-gateway/internal/registry"
	"github.com/d23ai/sahay-gateway/internal/scheduler"
	"github.com/d23ai/sahay-gateway/internal/server"
	"github.com/d23ai/sahay-gateway/internal/store"
	"github.com/d23ai/sahay-gateway/internal/tools"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the config file")
	flag.Parse()

	logger := logging.WithComponent("main")
	logger.Info("Starting sahay-gateway", "version", version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// LLM client (classifier fallback, chat and generative tools).
	var llmClient llm.Client
	if cfg.LLM.Provider != "" {
		llmClient, err = llm.NewClient(cfg.LLM.Provider, cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			logger.Error("Failed to create llm client", "error", err)
			os.Exit(1)
		}
		if err := llmClient.Health(ctx); err != nil {
			logger.Warn("LLM backend unhealthy at startup, continuing", "error", err)
		}
	} else {
		logger.Warn("No llm provider configured; keyword classification only")
	}

	// TTL stores: redis when configured, in-process otherwise.
	var (
		contexts    store.ContextStore
		pending     store.PendingStore
		redisClient *store.RedisClient
		sweepers    []store.Sweeper
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = store.NewRedisClient(store.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		contexts = store.NewRedisContextStore(redisClient, cfg.ContextTTL())
		pending = store.NewRedisPendingStore(redisClient, cfg.PendingTTL())
		logger.Info("Using redis stores", "addr", cfg.Redis.Addr)
	} else {
		memContexts := store.NewMemoryContextStore(cfg.ContextTTL())
		memPending := store.NewMemoryPendingStore(cfg.PendingTTL())
		contexts, pending = memContexts, memPending
		sweepers = append(sweepers, memContexts, memPending)
		logger.Info("Using in-memory stores")
	}

	classifier := classify.New(llmClient, cfg.LLM.Model, cfg.LLMTimeout(), cfg.Dispatch.ConfidenceThreshold)

	g, reg, err := buildDispatch(cfg, llmClient, pending)
	if err != nil {
		logger.Error("Failed to build routing graph", "error", err)
		os.Exit(1)
	}

	orch := agent.New(classifier, g, reg, contexts, pending)

	// Channels.
	adapters := []channel.Adapter{
		telegram.NewTelegramAdapter(cfg.Channels.Telegram.Token),
		webchat.NewWebChatAdapter(cfg.Channels.WebChat.Port),
	}
	for _, adapter := range adapters {
		if !adapter.IsEnabled() {
			logger.Info("Channel disabled", "channel", adapter.Name())
			continue
		}
		if err := adapter.Start(ctx); err != nil {
			logger.Error("Failed to start adapter", "adapter", adapter.Name(), "error", err)
			continue
		}
		go orch.Serve(ctx, adapter)
		logger.Info("Channel started", "channel", adapter.Name())
	}

	// Store reaper for the in-memory stores.
	var sched *scheduler.Scheduler
	if len(sweepers) > 0 {
		sched, err = scheduler.NewScheduler(cfg.Dispatch.ReaperSchedule, sweepers...)
		if err != nil {
			logger.Error("Failed to create scheduler", "error", err)
			os.Exit(1)
		}
		sched.Start()
		logger.Info("Scheduler started", "schedule", cfg.Dispatch.ReaperSchedule)
	}

	// Operational HTTP surface.
	var pinger server.Pinger
	if redisClient != nil {
		pinger = redisClient
	}
	srv := server.New(cfg, classifier, pinger, adapters)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	for _, adapter := range adapters {
		if !adapter.IsEnabled() {
			continue
		}
		if err := adapter.Stop(); err != nil {
			logger.Error("Failed to stop adapter", "adapter", adapter.Name(), "error", err)
		}
	}
	if sched != nil {
		sched.Stop()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close redis", "error", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	logger.Info("Shutdown complete")
}

// buildDispatch wires the capability registry and builds the routing
// graph from it.
func buildDispatch(cfg *config.Config, llmClient llm.Client, pending store.PendingStore) (*graph.Graph, *registry.Registry, error) {
	weatherSvc := tools.NewOpenMeteoWeather(cfg.Tools.Weather)
	railSvc := tools.NewRailAPI(cfg.Tools.Rail)
	placesSvc := tools.NewPlacesAPI(cfg.Tools.Places)
	newsSvc := tools.NewNewsAPI(cfg.Tools.News)
	astroSvc := tools.NewLLMAstro(llmClient, cfg.LLM.Model)
	infoSvc := tools.NewLLMInfo(llmClient, cfg.LLM.Model)

	reg := registry.New()
	register := func(intent, domain string, h graph.HandlerFunc) error {
		return reg.RegisterIntent(intent, domain, h)
	}

	steps := []error{
		register(classify.IntentChat, registry.DomainConversation, handlers.Chat(llmClient, cfg.LLM.Model)),
		register(classify.IntentHelp, registry.DomainConversation, handlers.Help()),

		register(classify.IntentWeather, "utility", handlers.Weather(weatherSvc, pending)),
		register(classify.IntentNews, "utility", handlers.News(newsSvc)),
		register(classify.IntentLocalSearch, "utility", handlers.Search(placesSvc, pending, handlers.PendingSearch, "popular places")),
		register(classify.IntentFoodOrder, "utility", handlers.Search(placesSvc, pending, handlers.PendingFood, "food delivery")),
		register(classify.IntentStockPrice, "utility", handlers.Info(infoSvc, classify.IntentStockPrice, channel.ResponseText)),
		register(classify.IntentCricketScore, "utility", handlers.Info(infoSvc, classify.IntentCricketScore, channel.ResponseText)),
		register(classify.IntentEvents, "utility", handlers.Search(placesSvc, pending, handlers.PendingEvents, "events nearby")),
		register(classify.IntentImage, "utility", handlers.Info(infoSvc, classify.IntentImage, channel.ResponseText)),
		register(classify.IntentReminder, "utility", handlers.Info(infoSvc, classify.IntentReminder, channel.ResponseText)),
		register(classify.IntentEChallan, "utility", handlers.Info(infoSvc, classify.IntentEChallan, channel.ResponseText)),
		register(classify.IntentGovtJobs, "utility", handlers.Info(infoSvc, classify.IntentGovtJobs, channel.ResponseText)),
		register(classify.IntentGovtSchemes, "utility", handlers.Info(infoSvc, classify.IntentGovtSchemes, channel.ResponseText)),

		register(classify.IntentPNRStatus, "travel", handlers.PNRStatus(railSvc)),
		register(classify.IntentTrainStatus, "travel", handlers.TrainStatus(railSvc)),
		register(classify.IntentTrainJourney, "travel", handlers.TrainJourney(railSvc)),
		register(classify.IntentMetroTicket, "travel", handlers.Info(infoSvc, classify.IntentMetroTicket, channel.ResponseText)),
	}
	for _, err := range steps {
		if err != nil {
			return nil, nil, err
		}
	}

	astroGraph, err := handlers.AstrologyGraph(astroSvc)
	if err != nil {
		return nil, nil, err
	}
	if err := reg.RegisterDomainGraph("astrology", astroGraph); err != nil {
		return nil, nil, err
	}
	astroIntents := []string{
		classify.IntentHoroscope, classify.IntentBirthChart,
		classify.IntentTarotReading, classify.IntentAskAstrologer,
		classify.IntentNumerology,
	}
	for _, intent := range astroIntents {
		if err := reg.RegisterDomainIntent(intent, "astrology"); err != nil {
			return nil, nil, err
		}
	}

	reg.SetFallback(handlers.Fallback())
	reg.RegisterPendingRoute(handlers.PendingWeather, classify.IntentWeather)
	reg.RegisterPendingRoute(handlers.PendingFood, classify.IntentFoodOrder)
	reg.RegisterPendingRoute("__events", classify.IntentEvents)
	reg.RegisterPendingRoute(handlers.PendingSearch, classify.IntentLocalSearch)

	g, err := reg.BuildGraph(cfg.SubgraphTimeout())
	if err != nil {
		return nil, nil, err
	}
	return g, reg, nil
}
