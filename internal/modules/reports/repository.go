package reports

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository stores report summaries in the append-only reports database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new report repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "reports").Logger(),
	}
}

// Insert archives one summary and fills in its generated ID.
func (r *Repository) Insert(report *Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	_, err := r.db.Exec(`
		INSERT INTO reports (id, report_date, title, source_url, summary_ko, summary_en, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, report.ID, report.ReportDate, report.Title, report.SourceURL,
		report.SummaryKo, report.SummaryEn, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	r.log.Info().
		Str("id", report.ID).
		Str("date", report.ReportDate).
		Str("title", report.Title).
		Msg("Report archived")
	return nil
}

// List returns the most recent reports, newest first.
func (r *Repository) List(limit int) ([]Report, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`
		SELECT id, report_date, title, source_url, summary_ko, summary_en, created_at
		FROM reports
		ORDER BY report_date DESC, created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var report Report
		if err := rows.Scan(&report.ID, &report.ReportDate, &report.Title, &report.SourceURL,
			&report.SummaryKo, &report.SummaryEn, &report.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// LatestDate returns the newest archived report date, or nil when the
// archive is empty.
func (r *Repository) LatestDate() (*string, error) {
	var date string
	err := r.db.QueryRow(`SELECT report_date FROM reports ORDER BY report_date DESC LIMIT 1`).Scan(&date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report date: %w", err)
	}
	return &date, nil
}

// ForDate returns every report archived for one date.
func (r *Repository) ForDate(date string) ([]Report, error) {
	rows, err := r.db.Query(`
		SELECT id, report_date, title, source_url, summary_ko, summary_en, created_at
		FROM reports
		WHERE report_date = ?
		ORDER BY created_at
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports for %s: %w", date, err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var report Report
		if err := rows.Scan(&report.ID, &report.ReportDate, &report.Title, &report.SourceURL,
			&report.SummaryKo, &report.SummaryEn, &report.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// HasSource reports whether a source URL is already archived. The pipeline
// uses this to skip reports it summarized on an earlier run.
func (r *Repository) HasSource(sourceURL string) (bool, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM reports WHERE source_url = ?`, sourceURL).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check report source: %w", err)
	}
	return count > 0, nil
}
