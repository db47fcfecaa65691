package bank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/adaptedmind/pkg/models"
)

var header = []interface{}{"Subject", "Question", "A", "B", "C", "D", "Correct", "Explanation", "Difficulty", "Topic"}

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &row))
	}

	path := filepath.Join(t.TempDir(), "bank.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImport_Excel(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		header,
		{"Networks", "Which layer does TCP live on?", "Link", "Network", "Transport", "Session", "C", "TCP is a transport protocol.", "easy", "OSI"},
		{"Networks", "Default HTTPS port?", "80", "443", "8080", "22", "2", "", "medium", ""},
		{"Networks", "Broken row", "only", "two"},
		{"", "No subject", "a", "b", "c", "d", "A"},
		{"Networks", "Bad difficulty", "a", "b", "c", "d", "A", "", "adaptive"},
	})

	config := DefaultImportConfig()
	config.FilePath = path

	result, err := Import(config)
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalProcessed)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 3, result.Skipped)
	assert.Len(t, result.Errors, 3)

	questions := result.Questions["Networks"]
	require.Len(t, questions, 2)

	assert.Equal(t, 2, questions[0].Correct)
	assert.Equal(t, models.DifficultyEasy, questions[0].Difficulty)
	assert.Equal(t, "OSI", questions[0].Topic)
	assert.NotEmpty(t, questions[0].ID)

	assert.Equal(t, 1, questions[1].Correct)
	assert.Equal(t, []string{"80", "443", "8080", "22"}, questions[1].Options)
}

func TestImport_CSV(t *testing.T) {
	content := "Subject,Question,A,B,C,D,Correct,Explanation,Difficulty,Topic\n" +
		"Databases,What does SQL stand for?,Structured Query Language,Simple Query List,Sequential Query Logic,Stored Query Language,a,,easy,Basics\n" +
		"\n" +
		"Databases,Bad correct,a,b,c,d,9,,,\n"

	path := filepath.Join(t.TempDir(), "bank.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config := DefaultImportConfig()
	config.FilePath = path

	result, err := Import(config)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalProcessed)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Questions["Databases"], 1)
	assert.Equal(t, 0, result.Questions["Databases"][0].Correct)
}

func TestImport_MergesIntoBank(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		header,
		{"Programming Fundamentals", "Extra question", "a", "b", "c", "d", "4"},
	})

	config := DefaultImportConfig()
	config.FilePath = path
	result, err := Import(config)
	require.NoError(t, err)

	b, err := Default()
	require.NoError(t, err)
	before, _ := b.Lookup("Programming Fundamentals")

	merged, err := b.Merge(result.Questions)
	require.NoError(t, err)
	after, _ := merged.Lookup("Programming Fundamentals")
	assert.Len(t, after, len(before)+1)
}

func TestImport_MissingFile(t *testing.T) {
	config := DefaultImportConfig()
	config.FilePath = filepath.Join(t.TempDir(), "missing.xlsx")

	_, err := Import(config)
	assert.Error(t, err)
}

func TestImport_InvalidColumn(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{header})

	config := DefaultImportConfig()
	config.FilePath = path
	config.TopicColumn = "1"

	_, err := Import(config)
	assert.Error(t, err)
}

func TestParseCorrect(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"A", 0, false},
		{"d", 3, false},
		{"1", 0, false},
		{"4", 3, false},
		{"E", 0, true},
		{"0", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseCorrect(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		assert.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
