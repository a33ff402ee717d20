// Package reports implements the daily market-report digest: discover
// published PDF reports, extract their text, summarize them, archive the
// summaries, and email the digest to subscribers.
package reports

// Report is one archived report summary.
type Report struct {
	ID         string `json:"id"`
	ReportDate string `json:"report_date"` // YYYY-MM-DD
	Title      string `json:"title"`
	SourceURL  string `json:"source_url"`
	SummaryKo  string `json:"summary_ko"`
	SummaryEn  string `json:"summary_en"`
	CreatedAt  int64  `json:"created_at"`
}

// RunReport aggregates one pipeline run.
type RunReport struct {
	Searched   int      `json:"searched"`
	Skipped    int      `json:"skipped"` // already archived or unreadable
	Summarized int      `json:"summarized"`
	Emailed    int      `json:"emailed"` // recipients reached, 0 when mail is off
	Failed     []string `json:"failed,omitempty"`
}
