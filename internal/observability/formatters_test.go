package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/cvfeed/internal/schemas"
)

func TestPrintCard(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCard(42, "👤 *Ada* – Engineer\n📍 London | *Senior*\n")
	output := buf.String()

	assert.Contains(t, output, "CARD PREVIEW #42")
	assert.Contains(t, output, "👤 *Ada* – Engineer")
	assert.Contains(t, output, "📍 London | *Senior*")
}

func TestPrintBox_LinesHaveEqualWidth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", "short\n"+strings.Repeat("é", 200))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	for _, line := range lines {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintValidationReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidationReport(3, []RecordFailure{
		{ID: 7, Errors: []schemas.FieldError{{Field: "candidate.fullName", Message: "String length must be greater than or equal to 1"}}},
	})
	output := buf.String()

	assert.Contains(t, output, "RECORD VALIDATION")
	assert.Contains(t, output, "Checked:  3")
	assert.Contains(t, output, "Valid:    2")
	assert.Contains(t, output, "Invalid:  1")
	assert.Contains(t, output, "#7")
	assert.Contains(t, output, "candidate.fullName")
}

func TestPrintValidationReport_ManyFailures(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	failures := make([]RecordFailure, 0, 15)
	for i := 1; i <= 15; i++ {
		failures = append(failures, RecordFailure{ID: int64(i)})
	}
	p.PrintValidationReport(15, failures)

	assert.Contains(t, buf.String(), "... and 5 more records")
	assert.NotContains(t, buf.String(), fmt.Sprintf("#%d ", 11))
}

func TestPrintDedupeSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDedupeSummary(0)
	assert.Contains(t, buf.String(), "No duplicate candidates found")

	buf.Reset()
	p.PrintDedupeSummary(4)
	assert.Contains(t, buf.String(), "Removed 4 duplicate candidate record(s)")
}

func TestPrintSendSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSendSummary(8, 2, []int64{3, 9})
	output := buf.String()

	assert.Contains(t, output, "Sent:    8")
	assert.Contains(t, output, "Failed:  2")
	assert.Contains(t, output, "Failed ids: 3, 9")
}

func TestPrintIndexes(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintIndexes([]string{"CREATE EXTENSION IF NOT EXISTS pg_trgm", "CREATE INDEX IF NOT EXISTS\n\tidx ON t (id)"})
	output := buf.String()

	assert.Contains(t, output, "Applied 2 statement(s)")
	assert.Contains(t, output, "CREATE INDEX IF NOT EXISTS idx ON t (id)")
}
