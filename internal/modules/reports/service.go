package reports

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/clients/websearch"
	"github.com/aristath/compass/internal/config"
	"github.com/aristath/compass/internal/mailer"
)

// Prompts handed to the summarizer. The report text follows as the user
// content; the instruction pins language and shape.
const (
	promptKo = "다음 증권사 시황 리포트를 한국어로 요약해 주세요. 핵심 시장 동향, 주요 지수 움직임, 투자 시사점을 중심으로 5문장 이내로 정리합니다."
	promptEn = "Summarize the following securities market report in English. Cover the key market trends, major index moves, and investment implications in at most five sentences."
)

// Searcher finds published report PDFs. Implemented by the websearch client.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]websearch.Result, error)
}

// Summarizer condenses report text. Implemented by the gemini client.
type Summarizer interface {
	Summarize(ctx context.Context, instruction, text string) (string, error)
}

// RecipientSource lists digest recipients. Implemented by the subscriber
// service.
type RecipientSource interface {
	Recipients() ([]string, error)
}

// Sender delivers the digest email. Implemented by the mailer.
type Sender interface {
	Enabled() bool
	SendBatched(recipients []string, msg mailer.Message) error
}

// Service runs the report pipeline: search, fetch, extract, summarize,
// archive, email.
type Service struct {
	search      Searcher
	summarizer  Summarizer
	repo        *Repository
	subscribers RecipientSource
	sender      Sender
	httpClient  *http.Client
	cfg         config.ReportConfig
	log         zerolog.Logger
}

// NewService creates the report service.
func NewService(
	search Searcher,
	summarizer Summarizer,
	repo *Repository,
	subscribers RecipientSource,
	sender Sender,
	cfg config.ReportConfig,
	log zerolog.Logger,
) *Service {
	return &Service{
		search:      search,
		summarizer:  summarizer,
		repo:        repo,
		subscribers: subscribers,
		sender:      sender,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		cfg:         cfg,
		log:         log.With().Str("component", "reports").Logger(),
	}
}

// Run executes the full pipeline for today. Individual report failures are
// recorded and skipped; the run only fails outright when discovery itself
// is broken.
func (s *Service) Run(ctx context.Context) (*RunReport, error) {
	date := time.Now().UTC().Format("2006-01-02")
	run := &RunReport{}

	var fresh []Report
	for _, query := range s.cfg.Queries {
		results, err := s.search.Search(ctx, query, s.cfg.MaxResults)
		if err != nil {
			return nil, fmt.Errorf("report search %q failed: %w", query, err)
		}
		run.Searched += len(results)

		for _, result := range results {
			report, err := s.processResult(ctx, date, result)
			if err != nil {
				run.Skipped++
				run.Failed = append(run.Failed, fmt.Sprintf("%s: %v", result.Link, err))
				s.log.Warn().Err(err).Str("url", result.Link).Msg("Report skipped")
				continue
			}
			if report == nil {
				run.Skipped++ // already archived
				continue
			}
			run.Summarized++
			fresh = append(fresh, *report)
		}
	}

	if len(fresh) > 0 {
		emailed, err := s.sendDigest(date, fresh)
		if err != nil {
			run.Failed = append(run.Failed, fmt.Sprintf("digest: %v", err))
			s.log.Error().Err(err).Msg("Digest delivery failed")
		}
		run.Emailed = emailed
	}

	s.log.Info().
		Int("searched", run.Searched).
		Int("summarized", run.Summarized).
		Int("skipped", run.Skipped).
		Int("emailed", run.Emailed).
		Msg("Report run finished")
	return run, nil
}

// processResult runs one search hit through fetch, extract, summarize and
// archive. Returns (nil, nil) for URLs archived on an earlier run.
func (s *Service) processResult(ctx context.Context, date string, result websearch.Result) (*Report, error) {
	seen, err := s.repo.HasSource(result.Link)
	if err != nil {
		return nil, err
	}
	if seen {
		return nil, nil
	}

	data, err := s.fetchPDF(ctx, result.Link)
	if err != nil {
		return nil, err
	}

	text, err := extractText(data)
	if err != nil {
		return nil, err
	}
	text = truncateText(text, s.cfg.PromptCharLimit)

	summaryKo, err := s.summarizer.Summarize(ctx, promptKo, text)
	if err != nil {
		return nil, fmt.Errorf("korean summary failed: %w", err)
	}
	summaryEn, err := s.summarizer.Summarize(ctx, promptEn, text)
	if err != nil {
		return nil, fmt.Errorf("english summary failed: %w", err)
	}

	report := &Report{
		ReportDate: date,
		Title:      strings.TrimSpace(result.Title),
		SourceURL:  result.Link,
		SummaryKo:  summaryKo,
		SummaryEn:  summaryEn,
		CreatedAt:  time.Now().Unix(),
	}
	if report.Title == "" {
		report.Title = result.Link
	}
	if err := s.repo.Insert(report); err != nil {
		return nil, err
	}
	return report, nil
}

// fetchPDF downloads one report, enforcing the size cap during the read so
// an unbounded Content-Length cannot exhaust memory.
func (s *Service) fetchPDF(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("report fetch returned status %d", resp.StatusCode)
	}
	if resp.ContentLength > s.cfg.MaxPDFBytes {
		return nil, fmt.Errorf("report is %d bytes, cap is %d", resp.ContentLength, s.cfg.MaxPDFBytes)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxPDFBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read report body: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxPDFBytes {
		return nil, fmt.Errorf("report exceeds the %d byte cap", s.cfg.MaxPDFBytes)
	}
	return data, nil
}

// sendDigest emails the day's fresh summaries to every confirmed
// subscriber. With mail disabled the archive still happened, so this is a
// quiet no-op.
func (s *Service) sendDigest(date string, fresh []Report) (int, error) {
	if s.sender == nil || !s.sender.Enabled() {
		return 0, nil
	}

	recipients, err := s.subscribers.Recipients()
	if err != nil {
		return 0, fmt.Errorf("failed to load recipients: %w", err)
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	msg := mailer.Message{
		Subject:  fmt.Sprintf("Market report digest for %s", date),
		TextBody: digestText(date, fresh),
		HTMLBody: digestHTML(date, fresh),
	}
	if err := s.sender.SendBatched(recipients, msg); err != nil {
		return 0, err
	}
	return len(recipients), nil
}
