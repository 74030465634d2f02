package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, []string{"id", "status"}, [][]string{
		{"run-1", "completed"},
		{"run-22", "failed"},
	})

	out := buf.String()
	lines := bytes.Split([]byte(out), []byte("\n"))
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "ID      STATUS", string(lines[0]))
	assert.Equal(t, "run-1   completed", string(lines[1]))
	assert.Equal(t, "run-22  failed", string(lines[2]))
}

func TestPrintTable_EmptyColumns(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, nil, [][]string{{"never"}})
	assert.Empty(t, buf.String())
}

func TestPrintTable_EmptyRows(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, []string{"id"}, nil)
	assert.Equal(t, "ID\n", buf.String())
}

func TestPrintTable_ColumnWidthFromCell(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, []string{"id"}, [][]string{{"a-very-long-value"}})

	out := buf.String()
	assert.Contains(t, out, "ID\n")
	assert.Contains(t, out, "a-very-long-value\n")
}

func TestPrintDetail(t *testing.T) {
	var buf bytes.Buffer
	PrintDetail(&buf, map[string]interface{}{
		"id":     "run-1",
		"status": "completed",
	})

	// Keys are sorted and padded to the longest key.
	assert.Equal(t, "id:      run-1\nstatus:  completed\n", buf.String())
}

func TestPrintDetail_NilValue(t *testing.T) {
	var buf bytes.Buffer
	PrintDetail(&buf, map[string]interface{}{"finished_at": nil})

	out := buf.String()
	assert.Contains(t, out, "finished_at:  -")
	assert.NotContains(t, out, "<nil>")
}

func TestPrintDetail_CompositeValues(t *testing.T) {
	var buf bytes.Buffer
	PrintDetail(&buf, map[string]interface{}{
		"labels": map[string]interface{}{"env": "prod"},
		"tags":   []string{"a", "b"},
	})

	out := buf.String()
	assert.Contains(t, out, `{"env":"prod"}`)
	assert.Contains(t, out, `["a","b"]`)
	assert.NotContains(t, out, "map[")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	err := PrintJSON(&buf, map[string]string{"status": "ok"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, buf.String())
	// Indented output.
	assert.Contains(t, buf.String(), "\n")
}
