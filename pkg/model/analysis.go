package model

import "time"

type TaskStatus string

const (
	TaskPending  TaskStatus = "pending"
	TaskRunning  TaskStatus = "running"
	TaskComplete TaskStatus = "complete"
	TaskFailed   TaskStatus = "failed"
)

func (s TaskStatus) Terminal() bool {
	return s == TaskComplete || s == TaskFailed
}

type AnalysisTask struct {
	TaskID      string     `json:"task_id" bson:"task_id"`
	CompanyID   string     `json:"company_id" bson:"company_id"`
	CompanyName string     `json:"company_name" bson:"company_name"`
	Keywords    []string   `json:"keywords" bson:"keywords,omitempty"`
	Status      TaskStatus `json:"status" bson:"status"`
	Error       string     `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" bson:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
}

type AnalyzeRequest struct {
	CompanyName string `json:"company_name" validate:"required,min=1,max=200"`
	// Keywords is a comma separated list.
	Keywords string `json:"keywords" validate:"omitempty,max=2000"`
}
