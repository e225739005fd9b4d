package service

import (
	"context"
	"errors"
	"strings"
	"time"

	analysiserrors "brandpulse/internal/analysis/errors"
	"brandpulse/internal/analysis/repository"
	"brandpulse/internal/analysis/validator"
	apperrors "brandpulse/pkg/errors"
	"brandpulse/pkg/identity"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"
	"brandpulse/pkg/sanitizer"

	"github.com/google/uuid"
)

// Dispatcher hands a task to whatever executes it. Dispatch must not wait
// for the analysis to finish.
type Dispatcher interface {
	Dispatch(ctx context.Context, task *model.AnalysisTask) error
}

type TaskService interface {
	// Submit validates the request, records a pending task and dispatches it.
	Submit(ctx context.Context, req *model.AnalyzeRequest) (*model.AnalysisTask, error)
	// Status never fails: anything unknown is pending.
	Status(ctx context.Context, companyID string) model.TaskStatus
}

type taskService struct {
	tasks      repository.TaskRepository
	dispatcher Dispatcher
	validator  *validator.AnalyzeValidator
	log        *logger.Logger
	now        func() time.Time
}

func NewTaskService(tasks repository.TaskRepository, dispatcher Dispatcher, log *logger.Logger) TaskService {
	return &taskService{
		tasks:      tasks,
		dispatcher: dispatcher,
		validator:  validator.NewAnalyzeValidator(),
		log:        log,
		now:        time.Now,
	}
}

func (s *taskService) Submit(ctx context.Context, req *model.AnalyzeRequest) (*model.AnalysisTask, error) {
	req.CompanyName = sanitizer.SanitizeName(req.CompanyName)

	if err := s.validator.Validate(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			if validationErrs.Missing("company_name") {
				return nil, apperrors.InvalidInput("Company name is required.")
			}
			details := make(map[string]any, len(validationErrs))
			for _, ve := range validationErrs {
				details[ve.Field] = ve.Message
			}
			return nil, apperrors.Validation("Invalid analysis request", details)
		}
		return nil, apperrors.InvalidInput(err.Error())
	}

	task := &model.AnalysisTask{
		TaskID:      uuid.New().String(),
		CompanyID:   identity.Canonical(req.CompanyName),
		CompanyName: req.CompanyName,
		Keywords:    SplitKeywords(req.Keywords),
		Status:      model.TaskPending,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.log.Warn("Failed to record analysis task, dispatching anyway",
			"task_id", task.TaskID,
			"company_id", task.CompanyID,
			"error", err,
		)
	}

	if err := s.dispatcher.Dispatch(ctx, task); err != nil {
		s.log.Error("Failed to dispatch analysis task", "task_id", task.TaskID, "error", err)
		return nil, apperrors.Unavailable("analysis dispatcher", err)
	}

	s.log.Info("Analysis task submitted", "task_id", task.TaskID, "company_id", task.CompanyID)
	return task, nil
}

func (s *taskService) Status(ctx context.Context, companyID string) model.TaskStatus {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return model.TaskPending
	}

	task, err := s.tasks.Latest(ctx, companyID)
	if err == nil {
		return task.Status
	}
	if !errors.Is(err, analysiserrors.ErrTaskNotFound) {
		s.log.Debug("Failed to read analysis task", "company_id", companyID, "error", err)
	}

	// Companies analyzed before task tracking only have results.
	done, err := s.tasks.HasResults(ctx, companyID)
	if err != nil {
		s.log.Debug("Failed to check analysis results", "company_id", companyID, "error", err)
		return model.TaskPending
	}
	if done {
		return model.TaskComplete
	}
	return model.TaskPending
}

// SplitKeywords parses a comma separated keyword list.
func SplitKeywords(raw string) []string {
	return sanitizer.SanitizeSlice(strings.Split(raw, ","), sanitizer.TrimAndNormalize)
}
