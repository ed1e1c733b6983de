package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BufferIsNotTerminal(t *testing.T) {
	// Given: a plain buffer
	buf := &bytes.Buffer{}

	// When: creating a writer
	w := New(buf)

	// Then: color and icons are off
	assert.False(t, IsTerminal(buf))
	assert.False(t, w.useColor)
	assert.False(t, w.icons)
}

func TestWriter_StatusMessages_PlainIcons(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer)
		want  string
	}{
		{"success", func(w *Writer) { w.Success("corpus loaded") }, "[ok] corpus loaded\n"},
		{"warning", func(w *Writer) { w.Warningf("%d sources missing", 2) }, "[warn] 2 sources missing\n"},
		{"error", func(w *Writer) { w.Errorf("bad %s", "request") }, "[error] bad request\n"},
		{"custom icon", func(w *Writer) { w.Status("->", "next") }, "-> next\n"},
		{"no icon", func(w *Writer) { w.Status("", "indented") }, "   indented\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.write(New(buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_FancyIconsOnTerminal(t *testing.T) {
	// Given: a writer forced into terminal mode
	buf := &bytes.Buffer{}
	w := &Writer{out: buf, icons: true}

	// When: printing a success message
	w.Success("done")

	// Then: the emoji icon is used
	assert.Contains(t, buf.String(), "✅")
}

func TestWriter_Table_AlignsColumns(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Table([]string{"SOURCE", "NUMBER", "SCORE"}, [][]string{
		{"Sch2", "026", "0.675"},
		{"Sch2_ranges", "020-029", "0.475"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	col := strings.Index(lines[0], "NUMBER")
	assert.Equal(t, col, strings.Index(lines[1], "026"))
	assert.Equal(t, col, strings.Index(lines[2], "020-029"))
}

func TestWriter_Heading_BoldOnlyWithColor(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Heading("Hits")
	assert.Equal(t, "Hits\n", buf.String())

	buf.Reset()
	(&Writer{out: buf, useColor: true}).Heading("Hits")
	assert.Equal(t, ansiBold+"Hits"+ansiReset+"\n", buf.String())
}

func TestWriter_KeyValue(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).KeyValue("request_id", "abc")
	assert.Equal(t, "  request_id: abc\n", buf.String())
}

func TestWriter_Progress(t *testing.T) {
	// Given: a non-terminal writer
	buf := &bytes.Buffer{}
	w := New(buf)

	// When: reporting partial then complete progress
	w.Progress(1, 4, "Sch2")
	w.Progress(4, 4, "T1")

	// Then: only the final line is printed
	assert.Equal(t, "100% T1\n", buf.String())

	// And: zero totals print nothing
	buf.Reset()
	w.Progress(0, 0, "nothing")
	assert.Empty(t, buf.String())
}

func TestRenderProgressBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", 10), renderProgressBar(0, 0, 10))
	assert.Equal(t, strings.Repeat("█", 5)+strings.Repeat("░", 5), renderProgressBar(1, 2, 10))
	assert.Equal(t, strings.Repeat("█", 10), renderProgressBar(3, 2, 10))
}
