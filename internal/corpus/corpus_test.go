package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ddcquery/internal/errors"
	"github.com/Aman-CERP/ddcquery/internal/notation"
)

func strPtr(s string) *string { return &s }

// --- SourceTag ---

func TestSourceTag_RoundTrip(t *testing.T) {
	for _, tag := range AllSources() {
		got, ok := ParseSourceTag(tag.String())
		require.True(t, ok, tag.String())
		assert.Equal(t, tag, got)
	}
	_, ok := ParseSourceTag("Sch9")
	assert.False(t, ok)

	got, ok := ParseSourceTag(" sch2_RANGES ")
	require.True(t, ok)
	assert.Equal(t, SourceSch2Ranges, got)
}

func TestSourceTag_PriorityOrder(t *testing.T) {
	// Schedules, then range schedules, then manuals, then flowcharts, then tables.
	assert.Less(t, SourceSch3.Priority(), SourceSch2Ranges.Priority())
	assert.Less(t, SourceSch3Ranges.Priority(), SourceManSc.Priority())
	assert.Less(t, SourceManTB.Priority(), SourceManScFlow.Priority())
	assert.Less(t, SourceManTBFlow.Priority(), SourceT1.Priority())
	assert.Len(t, AllSources(), 13)
}

func TestSourceTag_Families(t *testing.T) {
	assert.True(t, SourceSch2.IsSchedule())
	assert.False(t, SourceSch2Ranges.IsSchedule())
	assert.True(t, SourceSch3Ranges.IsRangeSchedule())
	assert.True(t, SourceManTBFlow.IsManual())
	assert.True(t, SourceT3C.IsTable())
	assert.False(t, SourceManSc.IsTable())
}

func TestSourceTag_JSON(t *testing.T) {
	data, err := json.Marshal(Document{Number: "020", Heading: "Library science", Source: SourceManSc})
	require.NoError(t, err)
	assert.JSONEq(t, `{"number":"020","heading":"Library science","source":"ManSc"}`, string(data))

	var d Document
	require.NoError(t, json.Unmarshal([]byte(`{"number":"T1-09","source":"T1"}`), &d))
	assert.Equal(t, SourceT1, d.Source)
	assert.Error(t, json.Unmarshal([]byte(`{"source":"Nope"}`), &d))
}

// --- Corpus / Index ---

func TestNew_GroupsBySourcePreservingOrder(t *testing.T) {
	// Given: documents of two sources, interleaved
	c := New(
		Document{Number: "020", Heading: "Library and information sciences", Source: SourceSch2},
		Document{Number: "T1-09", Heading: "History", Source: SourceT1},
		Document{Number: "026", Heading: "Libraries devoted to specific subjects", Source: SourceSch2},
	)

	// Then: each source keeps insertion order
	idx, ok := c.Index(SourceSch2)
	require.True(t, ok)
	require.Equal(t, 2, idx.Len())
	assert.Equal(t, "020", idx.Doc(0).Number)
	assert.Equal(t, "026", idx.Doc(1).Number)

	// And: notations are pre-parsed
	assert.True(t, idx.Notation(1).Matches(notation.ParseNumber("026")))

	assert.Equal(t, []SourceTag{SourceSch2, SourceT1}, c.Sources())
	assert.Equal(t, map[SourceTag]int{SourceSch2: 2, SourceT1: 1}, c.Counts())
	assert.Equal(t, 3, c.Len())
}

func TestCorpus_AbsentSource(t *testing.T) {
	c := New()
	_, ok := c.Index(SourceManSc)
	assert.False(t, ok)

	c.Add(NewIndex(SourceManSc, nil))
	_, ok = c.Index(SourceManSc)
	assert.False(t, ok, "empty index counts as absent")

	var nilCorpus *Corpus
	_, ok = nilCorpus.Index(SourceSch2)
	assert.False(t, ok)
}

func TestCorpus_DocKey(t *testing.T) {
	c := New(Document{Number: "001-008", Heading: "Knowledge", Source: SourceSch2Ranges})

	d, ok := c.Doc(DocKey{Source: SourceSch2Ranges, Ord: 0})
	require.True(t, ok)
	assert.Equal(t, "001-008", d.Number)
	assert.Equal(t, SourceSch2Ranges, d.Source)

	_, ok = c.Doc(DocKey{Source: SourceSch2Ranges, Ord: 1})
	assert.False(t, ok)
}

func TestNewIndex_OverridesSource(t *testing.T) {
	idx := NewIndex(SourceT2, []Document{{Number: "T2-73", Source: SourceSch2}})
	assert.Equal(t, SourceT2, idx.Doc(0).Source)
	assert.Equal(t, SourceT2, idx.Source())
}

func TestDocument_Text(t *testing.T) {
	assert.Equal(t, "Heading", (&Document{Heading: "Heading"}).Text())
	assert.Equal(t, "Heading Body", (&Document{Heading: "Heading", Description: "Body"}).Text())
}

// --- LoadDir ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDir(t *testing.T) {
	// Given: a JSON schedule, a YAML table, a malformed manual and a record
	// without a notation
	dir := t.TempDir()
	writeFile(t, dir, "Sch2.json", `[
		{"number": "020", "heading": "Library and information sciences"},
		{"number": "026", "heading": "Libraries devoted to specific subjects"},
		{"number": "", "heading": "orphan"}
	]`)
	writeFile(t, dir, "T1.yaml", `
- number: T1--09
  heading: History, geographic treatment, biography
  table_id: T1
`)
	writeFile(t, dir, "ManSc.json", `{not json`)
	writeFile(t, dir, "README.md", "ignored")

	// When: loading
	c, report, err := LoadDir(dir)

	// Then: valid sources load and the broken one is reported
	require.NoError(t, err)
	assert.Equal(t, []SourceTag{SourceSch2, SourceT1}, c.Sources())
	assert.Equal(t, 2, report.Loaded[SourceSch2])
	assert.Equal(t, 1, report.SkippedDocs)
	require.Contains(t, report.Failed, SourceManSc)
	assert.Equal(t, errors.ErrCodeCorpusMalformed, errors.GetCode(report.Failed[SourceManSc]))
	assert.Equal(t, []SourceTag{SourceManSc}, report.FailedSources())

	idx, _ := c.Index(SourceT1)
	assert.Equal(t, "T1", idx.Doc(0).TableID)
	assert.Equal(t, "T1-09", idx.Notation(0).Whole.Canonical())
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	_, _, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetCode(err))
}

// --- SQLite ---

func TestSQLite_SaveThenLoad(t *testing.T) {
	// Given: a corpus saved to a database
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ddc.db")
	src := New(
		Document{Number: "020", Heading: "Library and information sciences", Source: SourceSch2},
		Document{Number: "026", Heading: "Libraries devoted to specific subjects", Description: "Special libraries", Source: SourceSch2},
		Document{Number: "001-008", Heading: "Knowledge", Source: SourceSch2Ranges},
	)
	require.NoError(t, SaveSQLite(ctx, path, src))

	// When: loading it back
	c, report, err := LoadSQLite(ctx, path)

	// Then: sources, order and fields survive
	require.NoError(t, err)
	assert.Equal(t, src.Counts(), c.Counts())
	assert.Equal(t, 2, report.Loaded[SourceSch2])
	idx, ok := c.Index(SourceSch2)
	require.True(t, ok)
	assert.Equal(t, "026", idx.Doc(1).Number)
	assert.Equal(t, "Special libraries", idx.Doc(1).Description)
}

func TestSQLite_SaveReplacesSource(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ddc.db")
	require.NoError(t, SaveSQLite(ctx, path, New(
		Document{Number: "020", Source: SourceSch2},
		Document{Number: "021", Source: SourceSch2},
	)))
	require.NoError(t, SaveSQLite(ctx, path, New(Document{Number: "030", Source: SourceSch2})))

	c, _, err := LoadSQLite(ctx, path)
	require.NoError(t, err)
	idx, _ := c.Index(SourceSch2)
	require.Equal(t, 1, idx.Len())
	assert.Equal(t, "030", idx.Doc(0).Number)
}

func TestSQLite_PathWithURISyntax(t *testing.T) {
	// Given: a database under a directory name holding '?' and '#'
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "ddc?v=1#main")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "ddc.db")

	// When: saving and loading through that path
	require.NoError(t, SaveSQLite(ctx, path, New(Document{Number: "020", Source: SourceSch2})))
	c, _, err := LoadSQLite(ctx, path)

	// Then: the file at the literal path is used
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, 1, c.Len())
}

func TestSQLite_CaseVariantSourcesKeepOrd(t *testing.T) {
	// Given: rows for one source stored under two spellings
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ddc.db")
	require.NoError(t, SaveSQLite(ctx, path, New(Document{Number: "020", Source: SourceSch2})))
	dsn, err := sqliteDSN(path, "rw")
	require.NoError(t, err)
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO documents(source, ord, number) VALUES
		('sch2', 1, '021'), ('SCH2', 2, '026')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// When: loading
	c, report, err := LoadSQLite(ctx, path)

	// Then: they form one source in ord order
	require.NoError(t, err)
	assert.Equal(t, 3, report.Loaded[SourceSch2])
	idx, ok := c.Index(SourceSch2)
	require.True(t, ok)
	assert.Equal(t, []string{"020", "021", "026"},
		[]string{idx.Doc(0).Number, idx.Doc(1).Number, idx.Doc(2).Number})

	// And: saving the source again replaces every spelling
	require.NoError(t, SaveSQLite(ctx, path, New(Document{Number: "030", Source: SourceSch2})))
	c, _, err = LoadSQLite(ctx, path)
	require.NoError(t, err)
	idx, _ = c.Index(SourceSch2)
	require.Equal(t, 1, idx.Len())
	assert.Equal(t, "030", idx.Doc(0).Number)
}

// --- Literature routing ---

func TestLiteratureTableFor(t *testing.T) {
	tests := []struct {
		name   string
		facets map[string]*string
		want   SourceTag
		wantOK bool
	}{
		{"individual author", map[string]*string{"form": strPtr("Poetry")}, SourceT3A, true},
		{"anthology", map[string]*string{"form": strPtr("anthology of short stories")}, SourceT3B, true},
		{"themes", map[string]*string{"subject": strPtr("themes of war"), "form": strPtr("fiction")}, SourceT3C, true},
		{"not literary", map[string]*string{"subject": strPtr("computer displays")}, 0, false},
		{"nil value", map[string]*string{"form": nil}, 0, false},
		{"no facets", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LiteratureTableFor(tt.facets)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLoadSQLite_MissingFile(t *testing.T) {
	_, _, err := LoadSQLite(context.Background(), filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, errors.GetCode(err))
}
