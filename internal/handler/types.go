package handler

import (
	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
)

type ReinforcementRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
	DateAdded   string `json:"dateAdded,omitempty"`
}

func (r ReinforcementRequest) toModel() models.Reinforcement {
	return models.Reinforcement{
		DateAdded:   r.DateAdded,
		Category:    r.Category,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
		Notes:       r.Notes,
	}
}

type RefreshBody struct {
	Reason string `json:"reason"`
}

type RefreshResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Reason    string `json:"reason"`
	Queued    bool   `json:"queued"`
	Via       string `json:"via"`
}

type ChatRequest struct {
	Question string `json:"question"`
}

type SearchResponse struct {
	Query   string            `json:"query"`
	Results []models.Document `json:"results"`
}

type APIResponse struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
