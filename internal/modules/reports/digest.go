package reports

import (
	"fmt"
	"html"
	"strings"
)

// digestText renders the plain-text digest body.
func digestText(date string, reports []Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Market report digest for %s\n\n", date)

	for i, report := range reports {
		fmt.Fprintf(&b, "%d. %s\n", i+1, report.Title)
		fmt.Fprintf(&b, "   %s\n\n", report.SourceURL)
		if report.SummaryKo != "" {
			fmt.Fprintf(&b, "   [KO] %s\n\n", report.SummaryKo)
		}
		if report.SummaryEn != "" {
			fmt.Fprintf(&b, "   [EN] %s\n\n", report.SummaryEn)
		}
	}

	b.WriteString("You are receiving this because you subscribed to the daily digest.\n")
	return b.String()
}

// digestHTML renders the HTML digest body. Summaries come from an LLM fed
// with arbitrary PDF text, so everything is escaped.
func digestHTML(date string, reports []Report) string {
	var b strings.Builder
	b.WriteString("<html><body style=\"font-family: sans-serif; max-width: 640px;\">")
	fmt.Fprintf(&b, "<h2>Market report digest for %s</h2>", html.EscapeString(date))

	for _, report := range reports {
		b.WriteString("<div style=\"margin-bottom: 24px;\">")
		fmt.Fprintf(&b, "<h3 style=\"margin-bottom: 4px;\"><a href=\"%s\">%s</a></h3>",
			html.EscapeString(report.SourceURL), html.EscapeString(report.Title))
		if report.SummaryKo != "" {
			fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(report.SummaryKo))
		}
		if report.SummaryEn != "" {
			fmt.Fprintf(&b, "<p style=\"color: #555;\">%s</p>", html.EscapeString(report.SummaryEn))
		}
		b.WriteString("</div>")
	}

	b.WriteString("<hr><p style=\"font-size: 12px; color: #999;\">You are receiving this because you subscribed to the daily digest.</p>")
	b.WriteString("</body></html>")
	return b.String()
}
