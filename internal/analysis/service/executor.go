package service

import (
	"context"
	"time"

	"brandpulse/internal/analysis/repository"
	companiesservice "brandpulse/internal/companies/service"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"
)

// Analyzer runs one analysis pass. *Runner is the production implementation.
type Analyzer interface {
	Run(ctx context.Context, name string, keywords []string) (*RunReport, error)
}

// Executor drives a task through running to complete or failed around an
// analysis run. Status marker writes are best effort.
type Executor struct {
	analyzer  Analyzer
	tasks     repository.TaskRepository
	companies companiesservice.CompanyService
	log       *logger.Logger
	now       func() time.Time
}

func NewExecutor(analyzer Analyzer, tasks repository.TaskRepository, companies companiesservice.CompanyService, log *logger.Logger) *Executor {
	return &Executor{
		analyzer:  analyzer,
		tasks:     tasks,
		companies: companies,
		log:       log,
		now:       time.Now,
	}
}

func (e *Executor) Execute(ctx context.Context, task *model.AnalysisTask) error {
	log := e.log.With("task_id", task.TaskID, "company_id", task.CompanyID)

	if task.TaskID != "" {
		if err := e.tasks.MarkRunning(ctx, task.TaskID, e.now()); err != nil {
			log.Warn("Failed to mark task running", "error", err)
		}
	}

	_, runErr := e.analyzer.Run(ctx, task.CompanyName, task.Keywords)

	status, errMsg := model.TaskComplete, ""
	if runErr != nil {
		status, errMsg = model.TaskFailed, runErr.Error()
		log.Error("Analysis failed", "error", runErr)
	}

	// The run context may already be past its deadline.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if task.TaskID != "" {
		if err := e.tasks.MarkFinished(finishCtx, task.TaskID, status, errMsg, e.now()); err != nil {
			log.Warn("Failed to mark task finished", "status", status, "error", err)
		}
	}

	if runErr == nil {
		if err := e.companies.RecordAnalysis(finishCtx, task.CompanyID, e.now()); err != nil {
			log.Warn("Failed to record analysis", "error", err)
		}
	}
	return runErr
}
