package request

import "encoding/json"

// RegisterRequest is the request body for student self-registration
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"fullName" validate:"notblank"`
	SchoolClass string `json:"schoolClass"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ScanRequest reports one sorted piece of trash
type ScanRequest struct {
	Category string `json:"category"`
}

// ScoreRequest reports the result of a finished mini-game
type ScoreRequest struct {
	Score    *int   `json:"score" validate:"required,min=0,max_score"`
	GameType string `json:"gameType" validate:"required,game_variant"`
}

// ChooseItemRequest is the request body for picking a companion
type ChooseItemRequest struct {
	Type        string `json:"type" validate:"required,item_type"`
	Name        string `json:"name" validate:"notblank,max=40"`
	Personality string `json:"personality" validate:"notblank,max=40"`
}

// SetStatusRequest is the request body for approving or rejecting an account
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active rejected"`
}

// UpdateContentRequest replaces the value stored under a CMS key
type UpdateContentRequest struct {
	Key   string          `json:"key" validate:"notblank"`
	Value json.RawMessage `json:"value" validate:"required"`
}
