// Package ingest parses question batches out of the CSV format used by the
// admin upload and the import command.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"screening-quiz-service/internal/domain"
)

// Report is the outcome of parsing one CSV document. Rows missing a field or
// carrying an invalid answer label are skipped and counted rather than
// aborting the whole import.
type Report struct {
	Questions []domain.Question
	Skipped   int
}

var requiredColumns = []string{"question", "optiona", "optionb", "optionc", "optiond", "correctanswer"}

// Parse reads the whole document. The header row is mandatory:
// question,optionA,optionB,optionC,optionD,correctAnswer (case-insensitive).
// Zero usable rows yields domain.ErrEmptyImport.
func Parse(r io.Reader) (Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Report{}, domain.ErrEmptyImport
		}
		return Report{}, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\uFEFF")
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return Report{}, fmt.Errorf("csv header: missing column %q", name)
		}
	}

	report := Report{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Malformed row: skip it, keep importing.
			report.Skipped++
			continue
		}

		question, ok := questionFromRecord(record, columns)
		if !ok {
			report.Skipped++
			continue
		}
		report.Questions = append(report.Questions, question)
	}

	if len(report.Questions) == 0 {
		return report, domain.ErrEmptyImport
	}
	return report, nil
}

func questionFromRecord(record []string, columns map[string]int) (domain.Question, bool) {
	field := func(name string) string {
		idx := columns[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	correct, ok := domain.ParseChoice(field("correctanswer"))
	if !ok {
		return domain.Question{}, false
	}
	q := domain.Question{
		Text:    field("question"),
		OptionA: field("optiona"),
		OptionB: field("optionb"),
		OptionC: field("optionc"),
		OptionD: field("optiond"),
		Correct: correct,
	}
	if !q.Usable() {
		return domain.Question{}, false
	}
	return q, true
}
