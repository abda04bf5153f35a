// Package observability provides formatted output for the cvfeed commands.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cvfeed/internal/schemas"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted command output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad fits line to the inner box width, counting runes.
func pad(line string) string {
	inner := boxWidth - 4
	if utf8.RuneCountInString(line) > inner {
		runes := []rune(line)
		return string(runes[:inner-3]) + "..."
	}
	return line + strings.Repeat(" ", inner-utf8.RuneCountInString(line))
}

// PrintCard outputs the card the notifier would send for a candidate.
func (p *Printer) PrintCard(id int64, card string) {
	p.printBox(fmt.Sprintf("CARD PREVIEW #%d", id), strings.TrimSuffix(card, "\n"))
}

// RecordFailure is one stored document that failed schema validation.
type RecordFailure struct {
	ID     int64
	Errors []schemas.FieldError
}

// PrintValidationReport summarizes a validate-records run.
func (p *Printer) PrintValidationReport(checked int, failures []RecordFailure) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Checked:  %d\n", checked))
	sb.WriteString(fmt.Sprintf("Valid:    %d\n", checked-len(failures)))
	sb.WriteString(fmt.Sprintf("Invalid:  %d\n", len(failures)))

	if len(failures) > 0 {
		sb.WriteString("\n")
		count := min(len(failures), maxItemsToShow)
		for i := 0; i < count; i++ {
			f := failures[i]
			sb.WriteString(fmt.Sprintf("#%d\n", f.ID))
			for _, fe := range f.Errors {
				sb.WriteString(fmt.Sprintf("  • %s: %s\n", fe.Field, fe.Message))
			}
		}
		if len(failures) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more records\n", len(failures)-maxItemsToShow))
		}
	}

	p.printBox("RECORD VALIDATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDedupeSummary reports how many duplicate records were removed.
func (p *Printer) PrintDedupeSummary(removed int64) {
	content := "No duplicate candidates found"
	if removed > 0 {
		content = fmt.Sprintf("Removed %d duplicate candidate record(s)", removed)
	}
	p.printBox("DEDUPLICATE BY FULL NAME", content)
}

// PrintSendSummary reports a one-shot send.
func (p *Printer) PrintSendSummary(sent, failed int, failedIDs []int64) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Sent:    %d\n", sent))
	sb.WriteString(fmt.Sprintf("Failed:  %d", failed))
	if len(failedIDs) > 0 {
		ids := make([]string, 0, len(failedIDs))
		for _, id := range failedIDs {
			ids = append(ids, fmt.Sprintf("%d", id))
		}
		sb.WriteString(fmt.Sprintf("\nFailed ids: %s", strings.Join(ids, ", ")))
	}
	p.printBox("SEND FIRST CANDIDATES", sb.String())
}

// PrintIndexes lists the index statements applied.
func (p *Printer) PrintIndexes(statements []string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Applied %d statement(s):\n", len(statements)))
	for _, stmt := range statements {
		sb.WriteString(fmt.Sprintf("  • %s\n", strings.Join(strings.Fields(stmt), " ")))
	}
	p.printBox("CREATE INDEXES", strings.TrimSuffix(sb.String(), "\n"))
}
