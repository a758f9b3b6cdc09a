package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"codeprep/internal/common"
	"codeprep/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProblemListFilter struct {
	Difficulty model.ProblemDifficulty // empty = all
	Search     string                  // case-insensitive title substring or exact tag
}

// ProblemRepository owns the transaction boundaries for multi-row
// writes so that a problem and its children always change together.
type ProblemRepository interface {
	Create(ctx context.Context, problem *model.Problem) error
	// Update replaces all scalar fields, tags and hints, and recreates
	// the test-case set from problem.TestCases. Old test-case ids do
	// not survive.
	Update(ctx context.Context, problem *model.Problem) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Problem, error)
	List(ctx context.Context, limit, offset int, filter ProblemListFilter) ([]model.ProblemSummary, int, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

func (r *pgProblemRepository) Create(ctx context.Context, p *model.Problem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Create begin: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO problems (id, title, slug, description, difficulty, starter_code, function_name, input_variables, output_variable)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = tx.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.Difficulty,
		p.StarterCode, p.FunctionName, p.InputVariables, p.OutputVariable)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // slug uniqueness
			return fmt.Errorf("problem with this title already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.Create: %w", err)
	}

	if err := r.insertChildren(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgProblemRepository.Create commit: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) Update(ctx context.Context, p *model.Problem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Update begin: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE problems SET
	            title = $1, slug = $2, description = $3, difficulty = $4,
	            starter_code = $5, function_name = $6, input_variables = $7,
	            output_variable = $8, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $9`
	res, err := tx.ExecContext(ctx, query, p.Title, p.Slug, p.Description, p.Difficulty,
		p.StarterCode, p.FunctionName, p.InputVariables, p.OutputVariable, p.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("problem with this title already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}

	// Full replace of children: wipe and recreate from the submitted set.
	for _, table := range []string{"problem_tags", "problem_hints", "test_cases"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE problem_id = $1`, p.ID); err != nil {
			return fmt.Errorf("pgProblemRepository.Update clear %s: %w", table, err)
		}
	}
	if err := r.insertChildren(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgProblemRepository.Update commit: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) insertChildren(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	for i, tag := range p.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO problem_tags (problem_id, sort_order, tag) VALUES ($1, $2, $3)`,
			p.ID, i+1, tag); err != nil {
			return fmt.Errorf("pgProblemRepository insert tag %q: %w", tag, err)
		}
	}
	for i, hint := range p.Hints {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO problem_hints (problem_id, sort_order, hint) VALUES ($1, $2, $3)`,
			p.ID, i+1, hint); err != nil {
			return fmt.Errorf("pgProblemRepository insert hint: %w", err)
		}
	}
	if len(p.TestCases) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO test_cases (id, problem_id, input, expected_output, is_hidden, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("pgProblemRepository insert test cases prepare: %w", err)
	}
	defer stmt.Close()
	for i := range p.TestCases {
		tc := &p.TestCases[i]
		tc.ProblemID = p.ID
		tc.SortOrder = i + 1
		if _, err := stmt.ExecContext(ctx, tc.ID, p.ID, tc.Input, tc.ExpectedOutput, tc.IsHidden, tc.SortOrder); err != nil {
			return fmt.Errorf("pgProblemRepository insert test case %s: %w", tc.ID, err)
		}
	}
	return nil
}

func (r *pgProblemRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Delete begin: %w", err)
	}
	defer tx.Rollback()

	// Children first, then the problem row.
	for _, table := range []string{"test_cases", "problem_hints", "problem_tags"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE problem_id = $1`, id); err != nil {
			return fmt.Errorf("pgProblemRepository.Delete clear %s: %w", table, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM problems WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgProblemRepository.Delete commit: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	query := `SELECT id, title, slug, description, difficulty, starter_code, function_name,
	                 input_variables, output_variable, created_at, updated_at
	          FROM problems WHERE id = $1`
	p := &model.Problem{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.Difficulty, &p.StarterCode,
		&p.FunctionName, &p.InputVariables, &p.OutputVariable, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindByID: %w", err)
	}

	if p.Tags, err = r.tagsByProblemID(ctx, id); err != nil {
		return nil, err
	}
	if p.Hints, err = r.hintsByProblemID(ctx, id); err != nil {
		return nil, err
	}
	if p.TestCases, err = r.testCasesByProblemID(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProblemRepository) List(ctx context.Context, limit, offset int, filter ProblemListFilter) ([]model.ProblemSummary, int, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if filter.Difficulty != "" {
		conditions = append(conditions, fmt.Sprintf("p.difficulty = $%d", argID))
		args = append(args, filter.Difficulty)
		argID++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(p.title ILIKE $%d OR EXISTS (SELECT 1 FROM problem_tags pt WHERE pt.problem_id = p.id AND LOWER(pt.tag) = LOWER($%d)))",
			argID, argID+1))
		args = append(args, "%"+filter.Search+"%", filter.Search)
		argID += 2
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM problems p`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.List count: %w", err)
	}

	query := fmt.Sprintf(`SELECT p.id, p.title, p.slug, p.description, p.difficulty, p.starter_code,
	                             p.function_name, p.input_variables, p.output_variable, p.created_at, p.updated_at
	                      FROM problems p`+whereClause+
		` ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`, argID, argID+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.List query: %w", err)
	}
	defer rows.Close()

	summaries := []model.ProblemSummary{}
	for rows.Next() {
		var s model.ProblemSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Slug, &s.Description, &s.Difficulty, &s.StarterCode,
			&s.FunctionName, &s.InputVariables, &s.OutputVariable, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("pgProblemRepository.List scan: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.List rows.Err: %w", err)
	}

	for i := range summaries {
		if summaries[i].Tags, err = r.tagsByProblemID(ctx, summaries[i].ID); err != nil {
			return nil, 0, err
		}
		if summaries[i].TestCaseMeta, err = r.testCaseMetaByProblemID(ctx, summaries[i].ID); err != nil {
			return nil, 0, err
		}
	}
	return summaries, total, nil
}

// Tags come back in submission order, not alphabetically.
func (r *pgProblemRepository) tagsByProblemID(ctx context.Context, problemID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag FROM problem_tags WHERE problem_id = $1 ORDER BY sort_order ASC`, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.tagsByProblemID: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.tagsByProblemID scan: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (r *pgProblemRepository) hintsByProblemID(ctx context.Context, problemID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT hint FROM problem_hints WHERE problem_id = $1 ORDER BY sort_order ASC`, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.hintsByProblemID: %w", err)
	}
	defer rows.Close()

	hints := []string{}
	for rows.Next() {
		var hint string
		if err := rows.Scan(&hint); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.hintsByProblemID scan: %w", err)
		}
		hints = append(hints, hint)
	}
	return hints, rows.Err()
}

func (r *pgProblemRepository) testCasesByProblemID(ctx context.Context, problemID string) ([]model.TestCase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, problem_id, input, expected_output, is_hidden, sort_order, created_at
		 FROM test_cases WHERE problem_id = $1 ORDER BY sort_order ASC`, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.testCasesByProblemID: %w", err)
	}
	defer rows.Close()

	cases := []model.TestCase{}
	for rows.Next() {
		var tc model.TestCase
		if err := rows.Scan(&tc.ID, &tc.ProblemID, &tc.Input, &tc.ExpectedOutput,
			&tc.IsHidden, &tc.SortOrder, &tc.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.testCasesByProblemID scan: %w", err)
		}
		cases = append(cases, tc)
	}
	return cases, rows.Err()
}

func (r *pgProblemRepository) testCaseMetaByProblemID(ctx context.Context, problemID string) ([]model.TestCaseMeta, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, is_hidden FROM test_cases WHERE problem_id = $1 ORDER BY sort_order ASC`, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.testCaseMetaByProblemID: %w", err)
	}
	defer rows.Close()

	meta := []model.TestCaseMeta{}
	for rows.Next() {
		var m model.TestCaseMeta
		if err := rows.Scan(&m.ID, &m.IsHidden); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.testCaseMetaByProblemID scan: %w", err)
		}
		meta = append(meta, m)
	}
	return meta, rows.Err()
}
