package main

import (
	"context"

	analysisdispatch "brandpulse/internal/analysis/dispatch"
	analysishandler "brandpulse/internal/analysis/handler"
	analysisrepository "brandpulse/internal/analysis/repository"
	analysisservice "brandpulse/internal/analysis/service"
	companieshandler "brandpulse/internal/companies/handler"
	companiesrepository "brandpulse/internal/companies/repository"
	companiesservice "brandpulse/internal/companies/service"
	insightshandler "brandpulse/internal/insights/handler"
	insightsrepository "brandpulse/internal/insights/repository"
	insightsservice "brandpulse/internal/insights/service"
	mentionshandler "brandpulse/internal/mentions/handler"
	mentionsrepository "brandpulse/internal/mentions/repository"
	mentionsservice "brandpulse/internal/mentions/service"
	"brandpulse/internal/scrapers"
	"brandpulse/pkg/app"
	"brandpulse/pkg/config"
	"brandpulse/pkg/contracts"
	"brandpulse/pkg/kafka"
	kafka_middleware "brandpulse/pkg/kafka/middleware"
)

const ServiceName = "api"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting BrandPulse API")
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(initHandlers(cfg, serverApp)...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, serverApp *app.Application) []contracts.Handler {
	companyService := companiesservice.NewCompanyService(companiesrepository.NewMongoCompanyRepository(cfg), cfg.Log)
	mentionService := mentionsservice.NewMentionService(mentionsrepository.NewMongoMentionRepository(cfg), cfg.Log)
	insightService := insightsservice.NewInsightService(insightsrepository.NewMongoInsightRepository(cfg), cfg.Log)

	taskRepo := analysisrepository.NewMongoTaskRepository(cfg)
	taskService := analysisservice.NewTaskService(taskRepo, initDispatcher(cfg, serverApp, companyService, taskRepo), cfg.Log)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		companieshandler.NewCompanyHandler(companyService, cfg.Log),
		mentionshandler.NewMentionHandler(mentionService, cfg.Log),
		insightshandler.NewInsightHandler(insightService, cfg.Log),
		analysishandler.NewAnalysisHandler(taskService, cfg.Log),
	}
}

// initDispatcher publishes analysis requests when Kafka is enabled and runs
// them in process otherwise.
func initDispatcher(
	cfg *config.Config,
	serverApp *app.Application,
	companyService companiesservice.CompanyService,
	taskRepo analysisrepository.TaskRepository,
) analysisservice.Dispatcher {
	if cfg.KafkaEnabled {
		producer, err := kafka.NewProducer(cfg.Kafka, cfg.KafkaAnalysisTopic, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create analysis request producer", "error", err)
		}
		metrics := &kafka_middleware.Metrics{}
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))

		serverApp.OnShutdown(func(ctx context.Context) {
			metrics.Log(cfg.Log)
			if err := producer.Close(); err != nil {
				cfg.Log.Warn("Failed to close analysis request producer", "error", err)
			}
		})
		cfg.Log.Info("Analysis requests dispatched through Kafka", "topic", cfg.KafkaAnalysisTopic)
		return analysisdispatch.NewKafkaDispatcher(producer, cfg.Log)
	}

	runner := analysisservice.NewRunner(
		companyService,
		analysisrepository.NewMongoResultRepository(cfg),
		scrapers.NewSources(cfg, cfg.Log),
		nil,
		nil,
		cfg.Log,
	)
	executor := analysisservice.NewExecutor(runner, taskRepo, companyService, cfg.Log)
	dispatcher := analysisdispatch.NewLocalDispatcher(executor, cfg.AnalysisTimeout, cfg.Log)

	serverApp.OnShutdown(func(ctx context.Context) {
		if err := dispatcher.Wait(ctx); err != nil {
			cfg.Log.Warn("Background analyses still running at shutdown", "error", err)
		}
	})
	cfg.Log.Info("Analysis requests run in process")
	return dispatcher
}
