package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"codeprep/internal/common"
	"codeprep/internal/domain/model"
	"codeprep/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProblemRepo struct {
	problems map[string]*model.Problem
	order    []string
}

func newFakeProblemRepo() *fakeProblemRepo {
	return &fakeProblemRepo{problems: map[string]*model.Problem{}}
}

func cloneProblem(p *model.Problem) *model.Problem {
	c := *p
	c.Tags = append([]string{}, p.Tags...)
	c.Hints = append([]string{}, p.Hints...)
	c.TestCases = append([]model.TestCase{}, p.TestCases...)
	return &c
}

func (r *fakeProblemRepo) Create(ctx context.Context, p *model.Problem) error {
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.problems[p.ID] = cloneProblem(p)
	r.order = append(r.order, p.ID)
	return nil
}

func (r *fakeProblemRepo) Update(ctx context.Context, p *model.Problem) error {
	existing, ok := r.problems[p.ID]
	if !ok {
		return common.ErrNotFound
	}
	c := cloneProblem(p)
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	r.problems[p.ID] = c
	return nil
}

func (r *fakeProblemRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.problems[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.problems, id)
	return nil
}

func (r *fakeProblemRepo) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	p, ok := r.problems[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneProblem(p), nil
}

func (r *fakeProblemRepo) List(ctx context.Context, limit, offset int, filter repository.ProblemListFilter) ([]model.ProblemSummary, int, error) {
	matched := []*model.Problem{}
	for _, id := range r.order {
		p, ok := r.problems[id]
		if !ok {
			continue
		}
		if filter.Difficulty != "" && p.Difficulty != filter.Difficulty {
			continue
		}
		if filter.Search != "" {
			titleHit := strings.Contains(strings.ToLower(p.Title), strings.ToLower(filter.Search))
			tagHit := false
			for _, tag := range p.Tags {
				if strings.EqualFold(tag, filter.Search) {
					tagHit = true
				}
			}
			if !titleHit && !tagHit {
				continue
			}
		}
		matched = append(matched, p)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if offset >= total {
		return []model.ProblemSummary{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := []model.ProblemSummary{}
	for _, p := range matched[offset:end] {
		s := model.ProblemSummary{Problem: *cloneProblem(p)}
		for _, tc := range p.TestCases {
			s.TestCaseMeta = append(s.TestCaseMeta, model.TestCaseMeta{ID: tc.ID, IsHidden: tc.IsHidden})
		}
		s.TestCases = nil
		out = append(out, s)
	}
	return out, total, nil
}

func validProblemRequest() ProblemRequest {
	return ProblemRequest{
		Title:          "Two Sum",
		Description:    "Find two numbers that add up to target.",
		Difficulty:     model.DifficultyEasy,
		Tags:           "Array, Hash Table",
		StarterCode:    "func twoSum(nums []int, target int) []int {}",
		FunctionName:   "twoSum",
		InputVariables: "nums: int[], target: int",
		OutputVariable: "int[]",
		Hints:          []string{"Try a map."},
		TestCases: []TestCaseInput{
			{Input: "[2,7,11,15], 9", Output: "[0,1]", IsHidden: false},
			{Input: "[3,2,4], 6", Output: "[1,2]", IsHidden: true},
		},
	}
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"Array", "Tree"}, NormalizeTags(" Array ,  Tree,, ,Array"))
	assert.Equal(t, []string{}, NormalizeTags(""))
	assert.Equal(t, []string{}, NormalizeTags(" , ,"))
}

func TestCreateProblem_NormalizesTags(t *testing.T) {
	svc := NewProblemService(newFakeProblemRepo())

	req := validProblemRequest()
	req.Tags = " Array,Array , ,Hash Table,"

	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Array", "Hash Table"}, created.Tags)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "two-sum", created.Slug)
}

func TestCreateProblem_PreservesTagSubmissionOrder(t *testing.T) {
	svc := NewProblemService(newFakeProblemRepo())

	// Non-alphabetical on purpose: the round trip through the
	// repository must not reorder tags.
	req := validProblemRequest()
	req.Tags = "linked-list, array, hash-table"

	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"linked-list", "array", "hash-table"}, created.Tags)

	fetched, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"linked-list", "array", "hash-table"}, fetched.Tags)
}

func TestCreateProblem_MissingFields(t *testing.T) {
	svc := NewProblemService(newFakeProblemRepo())

	for _, mutate := range []func(*ProblemRequest){
		func(r *ProblemRequest) { r.Title = "" },
		func(r *ProblemRequest) { r.Description = "" },
		func(r *ProblemRequest) { r.Difficulty = "" },
		func(r *ProblemRequest) { r.StarterCode = "" },
		func(r *ProblemRequest) { r.FunctionName = "" },
		func(r *ProblemRequest) { r.InputVariables = "" },
		func(r *ProblemRequest) { r.OutputVariable = "" },
	} {
		req := validProblemRequest()
		mutate(&req)
		_, err := svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, common.ErrValidation)
	}
}

func TestCreateProblem_InvalidDifficulty(t *testing.T) {
	svc := NewProblemService(newFakeProblemRepo())

	req := validProblemRequest()
	req.Difficulty = "IMPOSSIBLE"
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCreateProblem_HiddenFlagRoundTrip(t *testing.T) {
	svc := NewProblemService(newFakeProblemRepo())

	created, err := svc.Create(context.Background(), validProblemRequest())
	require.NoError(t, err)

	fetched, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, fetched.TestCases, 2)
	assert.False(t, fetched.TestCases[0].IsHidden)
	assert.True(t, fetched.TestCases[1].IsHidden)
}

func TestUpdateProblem_ReplacesTestCases(t *testing.T) {
	svc := NewProblemService(newFakeProblemRepo())

	created, err := svc.Create(context.Background(), validProblemRequest())
	require.NoError(t, err)
	oldIDs := map[string]bool{}
	for _, tc := range created.TestCases {
		oldIDs[tc.ID] = true
	}

	req := validProblemRequest()
	req.TestCases = []TestCaseInput{
		{Input: "[1,1], 2", Output: "[0,1]", IsHidden: true},
	}
	updated, err := svc.Update(context.Background(), created.ID, req)
	require.NoError(t, err)

	require.Len(t, updated.TestCases, 1)
	assert.False(t, oldIDs[updated.TestCases[0].ID], "old test-case ids must not survive an update")
	assert.True(t, updated.TestCases[0].IsHidden)
}

func TestUpdateProblem_NotFound(t *testing.T) {
	svc := NewProblemService(newFakeProblemRepo())

	_, err := svc.Update(context.Background(), "missing", validProblemRequest())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteProblem_RemovesTestCases(t *testing.T) {
	repo := newFakeProblemRepo()
	svc := NewProblemService(repo)

	created, err := svc.Create(context.Background(), validProblemRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	for _, p := range repo.problems {
		for _, tc := range p.TestCases {
			assert.NotEqual(t, created.ID, tc.ProblemID)
		}
	}
}

func TestBatchDelete_PerItemOutcomes(t *testing.T) {
	svc := NewProblemService(newFakeProblemRepo())

	created, err := svc.Create(context.Background(), validProblemRequest())
	require.NoError(t, err)

	results := svc.BatchDelete(context.Background(), []string{created.ID, "missing"})
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)
}

func TestListProblems_InvalidDifficulty(t *testing.T) {
	svc := NewProblemService(newFakeProblemRepo())

	_, _, err := svc.List(context.Background(), 1, 10, "BRUTAL", "")
	assert.True(t, errors.Is(err, common.ErrBadRequest))
}

func TestListProblems_PastTheEndPageIsEmpty(t *testing.T) {
	svc := NewProblemService(newFakeProblemRepo())

	_, err := svc.Create(context.Background(), validProblemRequest())
	require.NoError(t, err)

	items, total, err := svc.List(context.Background(), 5, 10, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Empty(t, items)
}
