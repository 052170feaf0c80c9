package repository

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"erp-injector/internal/models"
)

// RunRepository persists injection runs and their per-line results. The
// pipeline itself never touches this; the worker writes the terminal
// summary here after a run completes.
type RunRepository struct {
	db *sqlx.DB
}

func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) CreateRun(run *models.InjectionRun) error {
	query := `INSERT INTO injection_runs
		(run_code, kind, status, total_lines, started_at, finished_at, created_at, updated_at)
		VALUES (:run_code, :kind, :status, :total_lines, NOW(), NOW(), NOW(), NOW())`

	result, err := r.db.NamedExec(query, run)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	run.ID = int(id)
	return nil
}

func (r *RunRepository) GetRunByID(id int) (*models.InjectionRun, error) {
	var run models.InjectionRun
	if err := r.db.Get(&run, `SELECT * FROM injection_runs WHERE id = ?`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %d not found", id)
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

func (r *RunRepository) GetRuns(limit, offset int) ([]models.InjectionRun, int, error) {
	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM injection_runs`); err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}

	runs := []models.InjectionRun{}
	query := `SELECT * FROM injection_runs ORDER BY id DESC LIMIT ? OFFSET ?`
	if err := r.db.Select(&runs, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list runs: %w", err)
	}
	return runs, total, nil
}

func (r *RunRepository) UpdateRunStatus(id int, status string) error {
	_, err := r.db.Exec(`UPDATE injection_runs SET status = ?, updated_at = NOW() WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update run status: %w", err)
	}
	return nil
}

func (r *RunRepository) MarkRunFailed(id int, message string) error {
	_, err := r.db.Exec(
		`UPDATE injection_runs SET status = ?, error_message = ?, finished_at = NOW(), updated_at = NOW() WHERE id = ?`,
		models.RunStatusFailed, message, id,
	)
	if err != nil {
		return fmt.Errorf("mark run failed: %w", err)
	}
	return nil
}

// SaveSummary writes the terminal summary of a run: counters on the run row
// plus one result row per injected line.
func (r *RunRepository) SaveSummary(runID int, summary *models.InjectionSummary) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`UPDATE injection_runs SET
			status = ?,
			total_groups = ?,
			successful_injections = ?,
			failed_injections = ?,
			duplicates_filtered = ?,
			business_errors = ?,
			started_at = ?,
			finished_at = ?,
			updated_at = NOW()
		WHERE id = ?`,
		models.RunStatusCompleted,
		summary.TotalGroups,
		summary.SuccessfulInjections,
		summary.FailedInjections,
		summary.DuplicatesFiltered,
		summary.BusinessErrors,
		summary.StartedAt,
		summary.FinishedAt,
		runID,
	)
	if err != nil {
		return fmt.Errorf("update run counters: %w", err)
	}

	if len(summary.LineResults) > 0 {
		rows := make([]models.StoredLineResult, 0, len(summary.LineResults))
		for _, lr := range summary.LineResults {
			rows = append(rows, models.StoredLineResult{
				RunID:        runID,
				ArticleCode:  lr.ArticleCode,
				GroupKey:     lr.GroupKey,
				Success:      lr.Success,
				Status:       string(lr.Status),
				ErrorMessage: lr.ErrorMessage,
				HeaderID:     lr.HeaderID,
				RawRequest:   lr.RawRequest,
				RawResponse:  lr.RawResponse,
				CreatedAt:    lr.Timestamp,
			})
		}

		query := `INSERT INTO injection_results
			(run_id, article_code, group_key, success, status, error_message, header_id, raw_request, raw_response, created_at)
			VALUES (:run_id, :article_code, :group_key, :success, :status, :error_message, :header_id, :raw_request, :raw_response, :created_at)`
		if _, err := tx.NamedExec(query, rows); err != nil {
			return fmt.Errorf("insert line results: %w", err)
		}
	}

	return tx.Commit()
}

func (r *RunRepository) GetResultsByRun(runID int) ([]models.StoredLineResult, error) {
	results := []models.StoredLineResult{}
	query := `SELECT * FROM injection_results WHERE run_id = ? ORDER BY id ASC`
	if err := r.db.Select(&results, query, runID); err != nil {
		return nil, fmt.Errorf("get run results: %w", err)
	}
	return results, nil
}
