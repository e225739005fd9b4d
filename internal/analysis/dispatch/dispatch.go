// Package dispatch hands submitted analysis tasks to an executor, either in
// process or through the analysis request topic.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"brandpulse/pkg/kafka"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"
)

const (
	EventAnalysisRequested = "analysis.requested"
	SchemaVersion          = "1"
	EventSource            = "brandpulse-api"
)

// AnalysisRequested is the payload published for every submitted task.
type AnalysisRequested struct {
	TaskID      string    `json:"task_id"`
	CompanyID   string    `json:"company_id"`
	CompanyName string    `json:"company_name"`
	Keywords    []string  `json:"keywords"`
	RequestedAt time.Time `json:"requested_at"`
}

func (e AnalysisRequested) Task() *model.AnalysisTask {
	return &model.AnalysisTask{
		TaskID:      e.TaskID,
		CompanyID:   e.CompanyID,
		CompanyName: e.CompanyName,
		Keywords:    e.Keywords,
		Status:      model.TaskPending,
		CreatedAt:   e.RequestedAt,
	}
}

type Executor interface {
	Execute(ctx context.Context, task *model.AnalysisTask) error
}

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// LocalDispatcher runs each task on its own goroutine, detached from the
// request that submitted it and bounded by timeout.
type LocalDispatcher struct {
	executor Executor
	timeout  time.Duration
	log      *logger.Logger
	wg       sync.WaitGroup
}

func NewLocalDispatcher(executor Executor, timeout time.Duration, log *logger.Logger) *LocalDispatcher {
	return &LocalDispatcher{
		executor: executor,
		timeout:  timeout,
		log:      log,
	}
}

func (d *LocalDispatcher) Dispatch(ctx context.Context, task *model.AnalysisTask) error {
	runCtx := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("Analysis panicked", "task_id", task.TaskID, "panic", r)
			}
		}()

		ctx := runCtx
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(runCtx, d.timeout)
			defer cancel()
		}

		if err := d.executor.Execute(ctx, task); err != nil {
			d.log.Warn("Background analysis failed", "task_id", task.TaskID, "error", err)
		}
	}()
	return nil
}

// Wait blocks until every dispatched task returned or ctx is done.
func (d *LocalDispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// KafkaDispatcher publishes tasks for a worker process to execute.
type KafkaDispatcher struct {
	publisher Publisher
	log       *logger.Logger
}

func NewKafkaDispatcher(publisher Publisher, log *logger.Logger) *KafkaDispatcher {
	return &KafkaDispatcher{
		publisher: publisher,
		log:       log,
	}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, task *model.AnalysisTask) error {
	msg, err := NewRequestMessage(task)
	if err != nil {
		return err
	}
	if err := d.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish analysis request: %w", err)
	}

	d.log.Debug("Analysis request published", "task_id", task.TaskID, "company_id", task.CompanyID)
	return nil
}

func NewRequestMessage(task *model.AnalysisTask) (kafka.Message, error) {
	return kafka.NewMessage().
		WithKey(task.CompanyID).
		WithValue(AnalysisRequested{
			TaskID:      task.TaskID,
			CompanyID:   task.CompanyID,
			CompanyName: task.CompanyName,
			Keywords:    task.Keywords,
			RequestedAt: task.CreatedAt,
		}).
		WithEventID(task.TaskID).
		WithEventType(EventAnalysisRequested).
		WithCorrelationID(task.TaskID).
		WithSchemaVersion(SchemaVersion).
		WithSource(EventSource).
		Build()
}

// Worker executes analysis requests consumed from the topic.
type Worker struct {
	executor Executor
	log      *logger.Logger
}

func NewWorker(executor Executor, log *logger.Logger) *Worker {
	return &Worker{
		executor: executor,
		log:      log,
	}
}

// Handle is a kafka.MessageHandler. Malformed requests are dropped; a failed
// run is handed back for retry only when its error is transient.
func (w *Worker) Handle(ctx context.Context, msg kafka.Message) error {
	if eventType := msg.GetEventType(); eventType != "" && eventType != EventAnalysisRequested {
		w.log.Debug("Skipping unrelated event", "event_type", eventType)
		return nil
	}

	var event AnalysisRequested
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}
	if strings.TrimSpace(event.CompanyName) == "" {
		return kafka.NewPermanentError("analysis request without company name", nil)
	}

	if err := w.executor.Execute(ctx, event.Task()); err != nil {
		w.log.Warn("Analysis request failed", "task_id", event.TaskID, "error", err)
		if kafka.ClassifyError(err) == kafka.ErrorTypeTransient {
			return err
		}
	}
	return nil
}
