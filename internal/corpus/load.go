package corpus

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/ddcquery/internal/errors"
)

// fileExtensions are tried in order for each source; the first existing file
// wins.
var fileExtensions = []string{".json", ".yaml", ".yml"}

// fileDocument is the on-disk record. The source comes from the file name.
type fileDocument struct {
	Number      string `json:"number" yaml:"number"`
	Heading     string `json:"heading" yaml:"heading"`
	Description string `json:"description" yaml:"description"`
	TableID     string `json:"table_id" yaml:"table_id"`
}

// LoadReport summarizes a load. Sources that failed are recorded and skipped
// so one unreadable source never prevents the others from loading.
type LoadReport struct {
	Loaded      map[SourceTag]int
	Failed      map[SourceTag]error
	SkippedDocs int // records without a notation
}

func newLoadReport() *LoadReport {
	return &LoadReport{
		Loaded: make(map[SourceTag]int),
		Failed: make(map[SourceTag]error),
	}
}

// FailedSources returns the failed tags in priority order.
func (r *LoadReport) FailedSources() []SourceTag {
	tags := make([]SourceTag, 0, len(r.Failed))
	for tag := range r.Failed {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// LoadDir reads one file per source from dir, named after the source tag
// (Sch2.json, T1.yaml, ManSc_flow.yml, ...). Each file holds a list of
// documents. Missing files leave the source absent.
func LoadDir(dir string) (*Corpus, *LoadReport, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, errors.IOError("corpus directory not found", err).
			WithDetail("path", dir).
			WithSuggestion("set corpus.dir in .ddcquery.yaml or DDCQUERY_CORPUS_DIR")
	}
	if !info.IsDir() {
		return nil, nil, errors.IOError("corpus path is not a directory", nil).
			WithDetail("path", dir)
	}

	c := &Corpus{}
	report := newLoadReport()
	for _, tag := range AllSources() {
		path, ok := findSourceFile(dir, tag)
		if !ok {
			continue
		}
		docs, skipped, err := readSourceFile(path)
		if err != nil {
			report.Failed[tag] = err
			attrs := append([]any{"source", tag.String(), "path", path}, errors.LogAttrs(err)...)
			slog.Warn("corpus_source_failed", attrs...)
			continue
		}
		report.SkippedDocs += skipped
		if len(docs) == 0 {
			continue
		}
		c.Add(NewIndex(tag, docs))
		report.Loaded[tag] = len(docs)
		slog.Debug("corpus_source_loaded",
			slog.String("source", tag.String()),
			slog.Int("documents", len(docs)))
	}
	return c, report, nil
}

func findSourceFile(dir string, tag SourceTag) (string, bool) {
	for _, ext := range fileExtensions {
		path := filepath.Join(dir, tag.String()+ext)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path, true
		}
	}
	return "", false
}

func readSourceFile(path string) ([]Document, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := errors.ErrCodeFileNotFound
		if os.IsPermission(err) {
			code = errors.ErrCodeFilePermission
		}
		return nil, 0, errors.New(code, "cannot read corpus file", err).WithDetail("path", path)
	}

	var records []fileDocument
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &records)
	} else {
		err = yaml.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, 0, errors.New(errors.ErrCodeCorpusMalformed,
			fmt.Sprintf("cannot decode %s", filepath.Base(path)), err).WithDetail("path", path)
	}

	docs := make([]Document, 0, len(records))
	skipped := 0
	for _, r := range records {
		if strings.TrimSpace(r.Number) == "" {
			skipped++
			continue
		}
		docs = append(docs, Document{
			Number:      strings.TrimSpace(r.Number),
			Heading:     strings.TrimSpace(r.Heading),
			Description: strings.TrimSpace(r.Description),
			TableID:     strings.TrimSpace(r.TableID),
		})
	}
	return docs, skipped, nil
}
