package dto

import (
	"time"

	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
)

type StatsResponse struct {
	repository.Counts
	Revenue  float64 `json:"revenue"`
	Currency string  `json:"currency"`
}

type AnalyticsResponse struct {
	Since      time.Time                  `json:"since"`
	Monthly    []repository.MonthlyPoint  `json:"monthly"`
	ByCategory []repository.CategoryPoint `json:"byCategory"`
}

type PolicyRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

type SettingRequest struct {
	Value  string `json:"value"`
	Type   string `json:"type" validate:"omitempty,oneof=string bool int json"`
	Secret *bool  `json:"secret"`
}

type SettingResponse struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Type      string    `json:"type"`
	Secret    bool      `json:"secret"`
	UpdatedAt time.Time `json:"updatedAt"`
}
