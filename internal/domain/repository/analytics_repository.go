package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"codeprep/internal/domain/model"
)

type AnalyticsRepository interface {
	// Snapshot runs the dashboard aggregates in one batched read.
	Snapshot(ctx context.Context, weekStart, monthStart time.Time) (*model.Analytics, error)
}

type pgAnalyticsRepository struct {
	db *sql.DB
}

func NewPgAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &pgAnalyticsRepository{db: db}
}

func (r *pgAnalyticsRepository) Snapshot(ctx context.Context, weekStart, monthStart time.Time) (*model.Analytics, error) {
	a := &model.Analytics{
		Difficulty: map[model.ProblemDifficulty]int{
			model.DifficultyEasy:   0,
			model.DifficultyMedium: 0,
			model.DifficultyHard:   0,
		},
		PopularTags: []model.TagCount{},
	}

	countsQuery := `SELECT
	    (SELECT COUNT(*) FROM problems),
	    (SELECT COUNT(*) FROM users),
	    (SELECT COUNT(*) FROM test_cases),
	    (SELECT COUNT(*) FROM problems WHERE created_at >= $1),
	    (SELECT COUNT(*) FROM problems WHERE created_at >= $2)`
	err := r.db.QueryRowContext(ctx, countsQuery, weekStart, monthStart).Scan(
		&a.Overview.TotalProblems, &a.Overview.TotalUsers, &a.Overview.TotalTestCases,
		&a.Trends.ProblemsThisWeek, &a.Trends.ProblemsThisMonth,
	)
	if err != nil {
		return nil, fmt.Errorf("pgAnalyticsRepository.Snapshot counts: %w", err)
	}
	a.Overview.WeeklyGrowth = a.Trends.ProblemsThisWeek
	a.Overview.MonthlyGrowth = a.Trends.ProblemsThisMonth

	rows, err := r.db.QueryContext(ctx,
		`SELECT difficulty, COUNT(*) FROM problems GROUP BY difficulty`)
	if err != nil {
		return nil, fmt.Errorf("pgAnalyticsRepository.Snapshot difficulty: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d model.ProblemDifficulty
		var n int
		if err := rows.Scan(&d, &n); err != nil {
			return nil, fmt.Errorf("pgAnalyticsRepository.Snapshot difficulty scan: %w", err)
		}
		a.Difficulty[d] = n
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgAnalyticsRepository.Snapshot difficulty rows.Err: %w", err)
	}

	if a.Recent.Problems, err = r.recentProblems(ctx); err != nil {
		return nil, err
	}
	if a.Recent.Users, err = r.recentUsers(ctx); err != nil {
		return nil, err
	}
	if a.PopularTags, err = r.popularTags(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *pgAnalyticsRepository) recentProblems(ctx context.Context) ([]model.RecentProblem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, difficulty, created_at FROM problems ORDER BY created_at DESC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("pgAnalyticsRepository.recentProblems: %w", err)
	}
	defer rows.Close()

	out := []model.RecentProblem{}
	for rows.Next() {
		var p model.RecentProblem
		if err := rows.Scan(&p.ID, &p.Title, &p.Difficulty, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgAnalyticsRepository.recentProblems scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *pgAnalyticsRepository) recentUsers(ctx context.Context) ([]model.RecentUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, email, created_at FROM users ORDER BY created_at DESC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("pgAnalyticsRepository.recentUsers: %w", err)
	}
	defer rows.Close()

	out := []model.RecentUser{}
	for rows.Next() {
		var u model.RecentUser
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgAnalyticsRepository.recentUsers scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *pgAnalyticsRepository) popularTags(ctx context.Context) ([]model.TagCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag, COUNT(*) AS n FROM problem_tags GROUP BY tag ORDER BY n DESC, tag ASC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("pgAnalyticsRepository.popularTags: %w", err)
	}
	defer rows.Close()

	out := []model.TagCount{}
	for rows.Next() {
		var tc model.TagCount
		if err := rows.Scan(&tc.Name, &tc.Count); err != nil {
			return nil, fmt.Errorf("pgAnalyticsRepository.popularTags scan: %w", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}
