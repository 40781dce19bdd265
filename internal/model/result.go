package model

import "time"

// Answer is one entry of the exam-taker's answer sheet.
type Answer struct {
	QuestionID     int     `json:"questionId"`
	SelectedOption *string `json:"selectedOption"`
}

// SubmitRequest is the payload posted when an exam session finishes.
type SubmitRequest struct {
	UserName string   `json:"userName" binding:"required,max=200"`
	Email    string   `json:"email" binding:"required,email,max=254"`
	Answers  []Answer `json:"answers" binding:"required"`
	Warnings []string `json:"warnings,omitempty" binding:"omitempty,max=100,dive,max=500"`
}

// GradedAnswer is the per-question breakdown stored with a result.
type GradedAnswer struct {
	QuestionID     int      `json:"questionId"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	SelectedOption *string  `json:"selectedOption"`
	CorrectOption  string   `json:"correctOption"`
	IsCorrect      bool     `json:"isCorrect"`
}

// SubmitResult is returned to the exam-taker after scoring.
type SubmitResult struct {
	Message    string         `json:"message"`
	Correct    int            `json:"correct"`
	Total      int            `json:"total"`
	Percentage float64        `json:"percentage"`
	Answers    []GradedAnswer `json:"answers,omitempty"`
}

// ResultRecord is one persisted attempt. Records are append-only.
type ResultRecord struct {
	ID          int            `json:"id"`
	UserName    string         `json:"userName"`
	Email       string         `json:"email"`
	Correct     int            `json:"correct"`
	Total       int            `json:"total"`
	Percentage  float64        `json:"percentage"`
	SubmittedAt time.Time      `json:"submittedAt"`
	Warnings    []string       `json:"warnings"`
	Answers     []GradedAnswer `json:"answers"`
}
