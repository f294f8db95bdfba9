package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"resume-forge/internal/models"

	"github.com/jackc/pgx/v5"
)

const resumeColumns = `
	id,
	owner_id,
	title,
	filename,
	source_format,
	original_text,
	enhanced_text,
	target_role,
	target_industry,
	status,
	analysis,
	job_matches,
	versions,
	created_at,
	updated_at
`

func scanResume(row pgx.Row) (*models.Resume, error) {
	var (
		r          models.Resume
		status     string
		analysis   []byte
		jobMatches []byte
		versions   []byte
	)

	err := row.Scan(
		&r.ID,
		&r.OwnerID,
		&r.Title,
		&r.Filename,
		&r.SourceFormat,
		&r.OriginalText,
		&r.EnhancedText,
		&r.TargetRole,
		&r.TargetIndustry,
		&status,
		&analysis,
		&jobMatches,
		&versions,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	r.Status, err = models.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	if analysis != nil {
		r.Analysis = &models.Analysis{}
		if err := json.Unmarshal(analysis, r.Analysis); err != nil {
			return nil, fmt.Errorf("failed to decode analysis column: %w", err)
		}
	}
	if err := json.Unmarshal(jobMatches, &r.JobMatches); err != nil {
		return nil, fmt.Errorf("failed to decode job_matches column: %w", err)
	}
	if err := json.Unmarshal(versions, &r.Versions); err != nil {
		return nil, fmt.Errorf("failed to decode versions column: %w", err)
	}
	if r.JobMatches == nil {
		r.JobMatches = []models.JobMatch{}
	}
	if r.Versions == nil {
		r.Versions = []models.Version{}
	}

	return &r, nil
}

type CreateResumeParams struct {
	ID           string
	OwnerID      int64
	Title        string
	Filename     string
	SourceFormat models.SourceFormat
	OriginalText string
}

func (q *Queries) CreateResume(ctx context.Context, arg CreateResumeParams) (*models.Resume, error) {
	query := `
		INSERT INTO resumes (id, owner_id, title, filename, source_format, original_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + resumeColumns

	row := q.db.QueryRow(ctx, query,
		arg.ID, arg.OwnerID, arg.Title, arg.Filename, string(arg.SourceFormat), arg.OriginalText)

	resume, err := scanResume(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateFilename
		}
		return nil, err
	}
	return resume, nil
}

// GetResumeForOwner scopes the lookup to the owner: a record belonging to
// another user is indistinguishable from a missing one. Returns nil, nil when
// not found.
func (q *Queries) GetResumeForOwner(ctx context.Context, id string, ownerID int64) (*models.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1 AND owner_id = $2`
	return scanResume(q.db.QueryRow(ctx, query, id, ownerID))
}

func (q *Queries) ListResumes(ctx context.Context, ownerID int64, limit, offset int) ([]models.Resume, error) {
	query := `
		SELECT ` + resumeColumns + `
		FROM resumes
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := q.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resumes []models.Resume
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, *r)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if resumes == nil {
		return []models.Resume{}, nil
	}
	return resumes, nil
}

func (q *Queries) ResumeExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM resumes WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (q *Queries) CountResumes(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM resumes WHERE owner_id = $1`, ownerID).Scan(&count)
	return count, err
}

func (q *Queries) UpdateResumeTitle(ctx context.Context, id string, ownerID int64, title string) (*models.Resume, error) {
	query := `
		UPDATE resumes
		SET title = $3, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + resumeColumns
	return scanResume(q.db.QueryRow(ctx, query, id, ownerID, title))
}

func (q *Queries) DeleteResume(ctx context.Context, id string, ownerID int64) (bool, error) {
	res, err := q.db.Exec(ctx, `DELETE FROM resumes WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// SetResumeStatus writes the status field alone. Transition validation
// happens in the generation layer before this is called.
func (q *Queries) SetResumeStatus(ctx context.Context, id string, status models.Status) error {
	query := `UPDATE resumes SET status = $2, updated_at = now() WHERE id = $1`
	res, err := q.db.Exec(ctx, query, id, string(status))
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrResumeNotFound
	}
	return nil
}

// SaveAnalysis overwrites the embedded analysis result and advances status in
// the same write, so a reader never sees the new analysis with the old state.
func (q *Queries) SaveAnalysis(ctx context.Context, id string, analysis *models.Analysis, status models.Status) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `UPDATE resumes SET analysis = $2, status = $3, updated_at = now() WHERE id = $1`
	res, err := q.db.Exec(ctx, query, id, payload, string(status))
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrResumeNotFound
	}
	return nil
}

type SaveEnhancementParams struct {
	EnhancedText   string
	TargetRole     string
	TargetIndustry string
	Version        models.Version
}

// SaveEnhancement persists the enhanced text, records the target role and
// industry, appends a named content version and moves the record to
// enhanced. The versions list only ever grows.
func (q *Queries) SaveEnhancement(ctx context.Context, id string, arg SaveEnhancementParams) error {
	versionPayload, err := json.Marshal(arg.Version)
	if err != nil {
		return fmt.Errorf("failed to marshal version: %w", err)
	}

	query := `
		UPDATE resumes
		SET enhanced_text   = $2,
		    target_role     = $3,
		    target_industry = $4,
		    versions        = versions || $5::jsonb,
		    status          = $6,
		    updated_at      = now()
		WHERE id = $1
	`
	res, err := q.db.Exec(ctx, query, id,
		arg.EnhancedText, arg.TargetRole, arg.TargetIndustry, versionPayload, string(models.StatusEnhanced))
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrResumeNotFound
	}
	return nil
}

// AppendJobMatch strictly appends one entry to the job-match list and leaves
// status untouched.
func (q *Queries) AppendJobMatch(ctx context.Context, id string, match models.JobMatch) error {
	payload, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("failed to marshal job match: %w", err)
	}

	query := `UPDATE resumes SET job_matches = job_matches || $2::jsonb, updated_at = now() WHERE id = $1`
	res, err := q.db.Exec(ctx, query, id, payload)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrResumeNotFound
	}
	return nil
}
