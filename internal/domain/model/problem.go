package model

import (
	"time"
)

type ProblemDifficulty string

const (
	DifficultyEasy   ProblemDifficulty = "EASY"
	DifficultyMedium ProblemDifficulty = "MEDIUM"
	DifficultyHard   ProblemDifficulty = "HARD"
)

func (d ProblemDifficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Problem struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Slug           string            `json:"slug"`
	Description    string            `json:"description"`
	Difficulty     ProblemDifficulty `json:"difficulty"`
	Tags           []string          `json:"tags"`
	StarterCode    string            `json:"starter_code"`
	FunctionName   string            `json:"function_name"`
	InputVariables string            `json:"input_variables"`
	OutputVariable string            `json:"output_variable"`
	Hints          []string          `json:"hints"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	TestCases      []TestCase        `json:"test_cases,omitempty"`
}

type TestCase struct {
	ID             string    `json:"id"`
	ProblemID      string    `json:"problem_id"`
	Input          string    `json:"input"`
	ExpectedOutput string    `json:"expected_output"`
	IsHidden       bool      `json:"is_hidden"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
}

// TestCaseMeta is the lightweight view embedded in problem listings.
type TestCaseMeta struct {
	ID       string `json:"id"`
	IsHidden bool   `json:"is_hidden"`
}

// ProblemSummary is a list item: full scalar fields plus test-case
// visibility metadata instead of the test cases themselves.
type ProblemSummary struct {
	Problem
	TestCaseMeta []TestCaseMeta `json:"test_cases"`
}
