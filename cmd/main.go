package main

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openaiclient "github.com/strivekit/strivekit-backend/internal/clients/openai"
	redisclient "github.com/strivekit/strivekit-backend/internal/clients/redis"
	"github.com/strivekit/strivekit-backend/internal/data/db"
	goalsrepo "github.com/strivekit/strivekit-backend/internal/data/repos/goals"
	jobsrepo "github.com/strivekit/strivekit-backend/internal/data/repos/jobs"
	standardsrepo "github.com/strivekit/strivekit-backend/internal/data/repos/standards"
	usersrepo "github.com/strivekit/strivekit-backend/internal/data/repos/users"
	apphttp "github.com/strivekit/strivekit-backend/internal/http"
	httpH "github.com/strivekit/strivekit-backend/internal/http/handlers"
	httpMW "github.com/strivekit/strivekit-backend/internal/http/middleware"
	"github.com/strivekit/strivekit-backend/internal/jobs"
	"github.com/strivekit/strivekit-backend/internal/jobs/pipelines"
	"github.com/strivekit/strivekit-backend/internal/jobs/runtime"
	"github.com/strivekit/strivekit-backend/internal/jobs/worker"
	"github.com/strivekit/strivekit-backend/internal/observability"
	"github.com/strivekit/strivekit-backend/internal/plangen"
	plangencfg "github.com/strivekit/strivekit-backend/internal/plangen/config"
	"github.com/strivekit/strivekit-backend/internal/plangen/prompts"
	"github.com/strivekit/strivekit-backend/internal/plangen/standards"
	"github.com/strivekit/strivekit-backend/internal/plangen/steps"
	"github.com/strivekit/strivekit-backend/internal/pkg/envutil"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
)

const serviceName = "strivekit-backend"

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	log.Info("Loading engine configuration from main...")
	cfgPath := envutil.GetEnv("ENGINE_CONFIG_PATH", "", log)
	cfg, err := plangencfg.Load(cfgPath, log)
	if err != nil {
		log.Error("Could not load engine config", "error", err)
		os.Exit(1)
	}

	// Tracing
	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: envutil.GetEnv("APP_ENV", "development", log),
		Version:     envutil.GetEnv("APP_VERSION", "dev", log),
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOtel(shutdownCtx); err != nil {
			log.Warn("OTel shutdown failed", "error", err)
		}
	}()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	goalRepo := goalsrepo.NewGoalRepo(thePG, log)
	goalMetricRepo := goalsrepo.NewGoalMetricRepo(thePG, log)
	milestoneRepo := goalsrepo.NewMilestoneRepo(thePG, log)
	planRepo := goalsrepo.NewPlanRepo(thePG, log)
	profileRepo := usersrepo.NewProfileRepo(thePG, log)
	standardRepo := standardsrepo.NewStandardRepo(thePG, log)
	jobRunRepo := jobsrepo.NewJobRunRepo(thePG, log)

	// Clients
	log.Info("Setting up clients from main...")
	openaiClient, err := openaiclient.NewClient(log)
	if err != nil {
		log.Error("Could not init OpenAI client", "error", err)
		os.Exit(1)
	}
	eventBus, err := redisclient.NewEventBus(log)
	if err != nil {
		log.Warn("Could not init event bus, plan events disabled", "error", err)
		eventBus = nil
	}

	// Plan generation
	log.Info("Setting up plan generation from main...")
	prompts.RegisterAll()
	resolver := standards.NewCatalogResolver(standardRepo, log)
	discovery := standards.NewDiscoveryService(standardRepo, openaiClient, cfg.Discovery.MinConfidence, log)
	dispatcher := jobs.NewDispatcher(jobRunRepo, log)

	genOpts := []plangen.GeneratorOption{
		plangen.WithFeasibilityRules(steps.FeasibilityRules{
			MinEnduranceWeeks: cfg.Feasibility.MinEnduranceWeeks,
			SafeWeeklyRateKg:  cfg.Feasibility.SafeWeeklyRateKg,
		}),
	}
	if cfg.Discovery.Enabled {
		genOpts = append(genOpts, plangen.WithDiscovery(dispatcher))
	}
	if eventBus != nil {
		genOpts = append(genOpts, plangen.WithEventBus(eventBus))
	}
	generator := plangen.NewGenerator(
		resolver,
		openaiClient,
		goalRepo,
		goalMetricRepo,
		milestoneRepo,
		planRepo,
		profileRepo,
		log,
		genOpts...,
	)

	// Job worker
	log.Info("Setting up job worker from main...")
	registry := runtime.NewRegistry()
	if err := registry.Register(pipelines.NewPlanGenerate(generator, log)); err != nil {
		log.Error("Could not register plan_generate pipeline", "error", err)
		os.Exit(1)
	}
	if err := registry.Register(pipelines.NewStandardDiscover(discovery, log)); err != nil {
		log.Error("Could not register standard_discover pipeline", "error", err)
		os.Exit(1)
	}
	jobWorker := worker.NewWorker(thePG, log, jobRunRepo, registry, eventBus)
	jobWorker.Start(ctx, cfg.Worker.Concurrency)

	// Handlers
	log.Info("Setting up handlers from main...")
	planHandler := httpH.NewPlanHandler(goalRepo, milestoneRepo, planRepo, jobRunRepo, dispatcher, log)
	standardsHandler := httpH.NewStandardsHandler(standardRepo, log)
	healthHandler := httpH.NewHealthHandler()

	// Middleware
	authMiddleware := httpMW.NewAuthMiddleware(log)

	// Router
	log.Info("Setting up router from main...")
	router := apphttp.NewRouter(apphttp.RouterConfig{
		Log:              log,
		AuthMiddleware:   authMiddleware,
		PlanHandler:      planHandler,
		StandardsHandler: standardsHandler,
		HealthHandler:    healthHandler,
		ServiceName:      serviceName,
	})

	port := envutil.GetEnv("PORT", "8080", log)
	srv := &stdhttp.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Info("Server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Server shutdown failed", "error", err)
	}
}
