package service

import (
	"context"
	"strings"

	"codeprep/internal/common"
	"codeprep/internal/domain/model"
	"codeprep/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ProblemService struct {
	problemRepo repository.ProblemRepository
}

func NewProblemService(problemRepo repository.ProblemRepository) *ProblemService {
	return &ProblemService{problemRepo: problemRepo}
}

type TestCaseInput struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	IsHidden bool   `json:"is_hidden"`
}

type ProblemRequest struct {
	Title          string                  `json:"title"`
	Description    string                  `json:"description"`
	Difficulty     model.ProblemDifficulty `json:"difficulty"`
	Tags           string                  `json:"tags"` // comma-separated free text
	StarterCode    string                  `json:"starter_code"`
	FunctionName   string                  `json:"function_name"`
	InputVariables string                  `json:"input_variables"`
	OutputVariable string                  `json:"output_variable"`
	Hints          []string                `json:"hints"`
	TestCases      []TestCaseInput         `json:"test_cases"`
}

type BatchDeleteResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NormalizeTags splits a comma-separated tag string into a trimmed,
// empty-filtered, de-duplicated list. Order of first occurrence wins.
func NormalizeTags(tags string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func (s *ProblemService) validate(req ProblemRequest) error {
	if req.Title == "" || req.Description == "" || req.Difficulty == "" ||
		req.StarterCode == "" || req.FunctionName == "" ||
		req.InputVariables == "" || req.OutputVariable == "" {
		return common.Errorf("missing required fields: %w", common.ErrValidation)
	}
	if !req.Difficulty.Valid() {
		return common.Errorf("invalid difficulty %q: %w", req.Difficulty, common.ErrValidation)
	}
	return nil
}

func (s *ProblemService) build(id string, req ProblemRequest) *model.Problem {
	hints := req.Hints
	if hints == nil {
		hints = []string{}
	}
	p := &model.Problem{
		ID:             id,
		Title:          req.Title,
		Slug:           slug.Make(req.Title),
		Description:    req.Description,
		Difficulty:     req.Difficulty,
		Tags:           NormalizeTags(req.Tags),
		StarterCode:    req.StarterCode,
		FunctionName:   req.FunctionName,
		InputVariables: req.InputVariables,
		OutputVariable: req.OutputVariable,
		Hints:          hints,
		TestCases:      make([]model.TestCase, 0, len(req.TestCases)),
	}
	for _, tc := range req.TestCases {
		p.TestCases = append(p.TestCases, model.TestCase{
			ID:             uuid.NewString(),
			ProblemID:      id,
			Input:          tc.Input,
			ExpectedOutput: tc.Output,
			IsHidden:       tc.IsHidden,
		})
	}
	return p
}

func (s *ProblemService) Create(ctx context.Context, req ProblemRequest) (*model.Problem, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	problem := s.build(uuid.NewString(), req)
	if err := s.problemRepo.Create(ctx, problem); err != nil {
		return nil, err
	}
	return s.problemRepo.FindByID(ctx, problem.ID)
}

// Update replaces every scalar field and recreates the test-case set
// from the submitted one. Previously issued test-case ids are gone
// after this call.
func (s *ProblemService) Update(ctx context.Context, id string, req ProblemRequest) (*model.Problem, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	problem := s.build(id, req)
	if err := s.problemRepo.Update(ctx, problem); err != nil {
		return nil, err
	}
	return s.problemRepo.FindByID(ctx, id)
}

func (s *ProblemService) Get(ctx context.Context, id string) (*model.Problem, error) {
	return s.problemRepo.FindByID(ctx, id)
}

func (s *ProblemService) Delete(ctx context.Context, id string) error {
	return s.problemRepo.Delete(ctx, id)
}

// BatchDelete deletes each id independently and reports per-item
// outcomes; one failure does not stop the rest.
func (s *ProblemService) BatchDelete(ctx context.Context, ids []string) []BatchDeleteResult {
	results := make([]BatchDeleteResult, 0, len(ids))
	for _, id := range ids {
		res := BatchDeleteResult{ID: id, Success: true}
		if err := s.problemRepo.Delete(ctx, id); err != nil {
			res.Success = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

func (s *ProblemService) List(ctx context.Context, page, limit int, difficulty, search string) ([]model.ProblemSummary, int, error) {
	filter := repository.ProblemListFilter{Search: search}
	if difficulty != "" && difficulty != "ALL" {
		d := model.ProblemDifficulty(difficulty)
		if !d.Valid() {
			return nil, 0, common.Errorf("invalid difficulty %q: %w", difficulty, common.ErrBadRequest)
		}
		filter.Difficulty = d
	}
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return s.problemRepo.List(ctx, limit, offset, filter)
}
