package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	analysisdispatch "brandpulse/internal/analysis/dispatch"
	analysisrepository "brandpulse/internal/analysis/repository"
	analysisscheduler "brandpulse/internal/analysis/scheduler"
	analysisservice "brandpulse/internal/analysis/service"
	companiesrepository "brandpulse/internal/companies/repository"
	companiesservice "brandpulse/internal/companies/service"
	"brandpulse/internal/scrapers"
	"brandpulse/pkg/config"
	"brandpulse/pkg/identity"
	"brandpulse/pkg/kafka"
	kafka_middleware "brandpulse/pkg/kafka/middleware"
	"brandpulse/pkg/model"
	"brandpulse/pkg/sanitizer"
)

const ServiceName = "analyzer"

const (
	ModeCLI   = "cli"
	ModeKafka = "kafka"
	ModeCron  = "cron"
)

func main() {
	company := flag.String("company", "", "company name to analyze once")
	keywords := flag.String("keywords", "", "comma separated keywords")
	mode := flag.String("mode", ModeCLI, "cli, kafka or cron")
	flag.Parse()

	os.Exit(run(*mode, *company, *keywords))
}

// run returns the process exit code once every deferred shutdown step has run.
func run(mode, company, keywords string) int {
	cfg := config.Load(ServiceName)
	defer cfg.GracefulShutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	companyService := companiesservice.NewCompanyService(companiesrepository.NewMongoCompanyRepository(cfg), cfg.Log)
	runner := analysisservice.NewRunner(
		companyService,
		analysisrepository.NewMongoResultRepository(cfg),
		scrapers.NewSources(cfg, cfg.Log),
		nil,
		nil,
		cfg.Log,
	)
	executor := analysisservice.NewExecutor(runner, analysisrepository.NewMongoTaskRepository(cfg), companyService, cfg.Log)

	switch mode {
	case ModeCLI:
		return runOnce(ctx, cfg, executor, company, keywords)
	case ModeKafka:
		return consume(ctx, cfg, executor)
	case ModeCron:
		return schedule(ctx, cfg, companyService, executor)
	default:
		cfg.Log.Error("Unknown mode", "mode", mode)
		return 2
	}
}

func runOnce(ctx context.Context, cfg *config.Config, executor *analysisservice.Executor, company, keywords string) int {
	if company == "" {
		cfg.Log.Error("-company is required in cli mode")
		return 2
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.AnalysisTimeout)
	defer cancel()

	company = sanitizer.SanitizeName(company)
	task := &model.AnalysisTask{
		CompanyID:   identity.Canonical(company),
		CompanyName: company,
		Keywords:    analysisservice.SplitKeywords(keywords),
		Status:      model.TaskPending,
	}
	if err := executor.Execute(ctx, task); err != nil {
		cfg.Log.Error("Analysis failed", "company_id", task.CompanyID, "error", err)
		return 1
	}
	cfg.Log.Info("Analysis complete", "company_id", task.CompanyID)
	return 0
}

func consume(ctx context.Context, cfg *config.Config, executor *analysisservice.Executor) int {
	if !cfg.KafkaEnabled {
		cfg.Log.Error("KAFKA_ENABLED must be true in kafka mode")
		return 2
	}

	worker := analysisdispatch.NewWorker(executor, cfg.Log)
	consumer, err := kafka.NewConsumer(cfg.Kafka, cfg.KafkaAnalysisTopic, cfg.KafkaAnalysisGroup, worker.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Error("Failed to create analysis request consumer", "error", err)
		return 1
	}
	metrics := &kafka_middleware.Metrics{}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware(metrics))
	defer func() {
		metrics.Log(cfg.Log)
		if err := consumer.Close(); err != nil {
			cfg.Log.Warn("Failed to close analysis request consumer", "error", err)
		}
	}()

	cfg.Log.Info("Consuming analysis requests", "topic", cfg.KafkaAnalysisTopic, "group", cfg.KafkaAnalysisGroup)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Analysis request consumer stopped", "error", err)
		return 1
	}
	return 0
}

func schedule(ctx context.Context, cfg *config.Config, companies companiesservice.CompanyService, executor *analysisservice.Executor) int {
	scheduler := analysisscheduler.New(companies, executor, analysisscheduler.Options{
		Interval:   cfg.AnalysisInterval,
		DailyAt:    cfg.DailyAnalysisTime,
		Delay:      cfg.CompanyAnalysisDelay,
		RunTimeout: cfg.AnalysisTimeout,
	}, cfg.Log)

	if err := scheduler.Start(ctx); err != nil {
		cfg.Log.Error("Failed to start analysis scheduler", "error", err)
		return 1
	}

	<-ctx.Done()
	cfg.Log.Info("Shutdown signal received, stopping scheduler")

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	scheduler.Stop(stopCtx)
	return 0
}
