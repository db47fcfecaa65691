package bank

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/example/adaptedmind/pkg/models"
)

// ImportConfig defines which spreadsheet column holds which question field
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	SubjectColumn     string
	QuestionColumn    string
	OptionColumns     [models.OptionCount]string
	CorrectColumn     string // A-D or 1-4
	ExplanationColumn string
	DifficultyColumn  string
	TopicColumn       string
	SheetName         string // Name of the sheet to import (Excel only)
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default column layout:
// subject | question | option A-D | correct | explanation | difficulty | topic
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SubjectColumn:     "A",
		QuestionColumn:    "B",
		OptionColumns:     [models.OptionCount]string{"C", "D", "E", "F"},
		CorrectColumn:     "G",
		ExplanationColumn: "H",
		DifficultyColumn:  "I",
		TopicColumn:       "J",
		SheetName:         "Sheet1",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	Questions      map[string][]models.Question // subject display name -> questions
	TotalProcessed int
	Imported       int
	Skipped        int
	Errors         []string
}

// Import reads questions from an Excel or CSV file. Rows that do not form a
// valid question are skipped and reported in Errors.
func Import(config ImportConfig) (*ImportResult, error) {
	var (
		rows [][]string
		err  error
	)
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	cols, err := resolveColumns(config)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Questions: make(map[string][]models.Question),
		Errors:    make([]string, 0),
	}
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 || isBlank(row) {
			continue
		}
		result.TotalProcessed++

		subject, q, err := parseRow(row, cols)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Questions[subject] = append(result.Questions[subject], q)
		result.Imported++
	}
	return result, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// columnIndexes holds 0-based positions for every configured column.
type columnIndexes struct {
	subject     int
	question    int
	options     [models.OptionCount]int
	correct     int
	explanation int
	difficulty  int
	topic       int
}

func resolveColumns(config ImportConfig) (columnIndexes, error) {
	var cols columnIndexes
	var err error

	index := func(name string) int {
		if err != nil || name == "" {
			return -1
		}
		n, convErr := excelize.ColumnNameToNumber(name)
		if convErr != nil {
			err = fmt.Errorf("invalid column %q: %w", name, convErr)
			return -1
		}
		return n - 1
	}

	cols.subject = index(config.SubjectColumn)
	cols.question = index(config.QuestionColumn)
	for i, name := range config.OptionColumns {
		cols.options[i] = index(name)
	}
	cols.correct = index(config.CorrectColumn)
	cols.explanation = index(config.ExplanationColumn)
	cols.difficulty = index(config.DifficultyColumn)
	cols.topic = index(config.TopicColumn)
	return cols, err
}

func parseRow(row []string, cols columnIndexes) (string, models.Question, error) {
	subject := cell(row, cols.subject)
	if subject == "" {
		return "", models.Question{}, fmt.Errorf("missing subject")
	}

	q := models.Question{
		ID:          uuid.NewString(),
		Question:    cell(row, cols.question),
		Options:     make([]string, 0, models.OptionCount),
		Explanation: cell(row, cols.explanation),
		Topic:       cell(row, cols.topic),
	}
	for _, idx := range cols.options {
		q.Options = append(q.Options, cell(row, idx))
	}

	correct, err := parseCorrect(cell(row, cols.correct))
	if err != nil {
		return "", models.Question{}, err
	}
	q.Correct = correct

	if raw := cell(row, cols.difficulty); raw != "" {
		d, ok := models.ParseDifficulty(raw)
		if !ok || !d.IsConcrete() {
			return "", models.Question{}, fmt.Errorf("unknown difficulty %q", raw)
		}
		q.Difficulty = d
	}

	if err := q.Validate(); err != nil {
		return "", models.Question{}, err
	}
	return subject, q, nil
}

// parseCorrect accepts an option letter (A-D) or a 1-based number (1-4).
func parseCorrect(raw string) (int, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if len(raw) == 1 && raw[0] >= 'A' && raw[0] < 'A'+models.OptionCount {
		return int(raw[0] - 'A'), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > models.OptionCount {
		return 0, fmt.Errorf("invalid correct answer %q", raw)
	}
	return n - 1, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
