package model

import "time"

type CompanyEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Company is the authoritative directory record.
type Company struct {
	CompanyID     string     `json:"company_id" bson:"company_id" validate:"required,min=1,max=200"`
	Name          string     `json:"Name" bson:"Name" validate:"omitempty,max=200"`
	Keywords      []string   `json:"keywords,omitempty" bson:"keywords,omitempty" validate:"omitempty,max=50,dive,required"`
	LastAnalysis  *time.Time `json:"last_analysis,omitempty" bson:"last_analysis,omitempty"`
	AnalysisCount int        `json:"analysis_count,omitempty" bson:"analysis_count,omitempty" validate:"omitempty,min=0"`
}

type CompanyProfile struct {
	CompanyID string `json:"company_id" bson:"company_id"`
	Name      string `json:"Name" bson:"Name"`
	Summary   string `json:"Summary" bson:"Summary"`
	URL       string `json:"URL" bson:"URL"`
}
