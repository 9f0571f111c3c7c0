// FILE: internal/dto/chat_dto.go
package dto

import "time"

type ChatTurn struct {
	Role string `json:"role" validate:"required,oneof=user assistant"`
	Text string `json:"text" validate:"required"`
}

// ChatRequest is the stateless chat surface: the caller owns the history
// and replays it on every call.
type ChatRequest struct {
	Message string     `json:"message" validate:"required"`
	History []ChatTurn `json:"history" validate:"dive"`
}

type ChatResponse struct {
	Text    string     `json:"text"`
	History []ChatTurn `json:"history"`
}

type SessionSummaryResponse struct {
	Id        string    `json:"id"`
	TurnCount int       `json:"turn_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SessionHistoryResponse struct {
	Id        string     `json:"id"`
	Turns     []ChatTurn `json:"turns"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
