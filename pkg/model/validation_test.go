package model

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestAnalyzeRequest_Validation(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name        string
		req         AnalyzeRequest
		expectValid bool
	}{
		{name: "name only", req: AnalyzeRequest{CompanyName: "Tesla Inc"}, expectValid: true},
		{name: "name and keywords", req: AnalyzeRequest{CompanyName: "Tesla", Keywords: "tesla, elon musk"}, expectValid: true},
		{name: "missing name", req: AnalyzeRequest{Keywords: "tesla"}, expectValid: false},
		{name: "name too long", req: AnalyzeRequest{CompanyName: string(make([]byte, 201))}, expectValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(&tt.req)
			if tt.expectValid && err != nil {
				t.Errorf("expected valid, got error: %v", err)
			}
			if !tt.expectValid && err == nil {
				t.Error("expected validation error, got none")
			}
		})
	}
}

func TestCompany_Validation(t *testing.T) {
	v := validator.New()

	if err := v.Struct(&Company{CompanyID: "acme_co", Name: "Acme Co"}); err != nil {
		t.Errorf("expected valid company, got %v", err)
	}
	if err := v.Struct(&Company{Name: "Acme Co"}); err == nil {
		t.Error("expected error for missing company_id")
	}
	if err := v.Struct(&Company{CompanyID: "acme_co", Keywords: []string{"acme", ""}}); err == nil {
		t.Error("expected error for empty keyword")
	}
}

func TestTaskStatus_Terminal(t *testing.T) {
	for status, want := range map[TaskStatus]bool{
		TaskPending:  false,
		TaskRunning:  false,
		TaskComplete: true,
		TaskFailed:   true,
	} {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestSentimentCounts_Total(t *testing.T) {
	c := SentimentCounts{Positive: 3, Neutral: 2, Negative: 1}
	if c.Total() != 6 {
		t.Errorf("expected total 6, got %d", c.Total())
	}
}
