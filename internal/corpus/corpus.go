package corpus

import (
	"github.com/Aman-CERP/ddcquery/internal/notation"
)

// Document is one reference entry: a schedule record, manual note or table
// entry.
type Document struct {
	Number      string    `json:"number" yaml:"number"`
	Heading     string    `json:"heading" yaml:"heading"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Source      SourceTag `json:"source" yaml:"source"`
	TableID     string    `json:"table_id,omitempty" yaml:"table_id,omitempty"`
}

// Text returns heading and description joined for text matching.
func (d *Document) Text() string {
	if d.Description == "" {
		return d.Heading
	}
	return d.Heading + " " + d.Description
}

// DocKey addresses a document by source and insertion ordinal. Keys are stable
// for the lifetime of the Corpus.
type DocKey struct {
	Source SourceTag `json:"source"`
	Ord    int       `json:"ordinal"`
}

// Index is the read-only arena of one source. Notations are parsed once at
// construction.
type Index struct {
	source    SourceTag
	docs      []Document
	notations []notation.Notation
}

// NewIndex builds an index from docs in insertion order. Each document's
// Source is set to source.
func NewIndex(source SourceTag, docs []Document) *Index {
	idx := &Index{
		source:    source,
		docs:      make([]Document, len(docs)),
		notations: make([]notation.Notation, len(docs)),
	}
	for i, d := range docs {
		d.Source = source
		idx.docs[i] = d
		idx.notations[i] = notation.ParseNotation(d.Number)
	}
	return idx
}

// Source returns the index's source tag.
func (idx *Index) Source() SourceTag {
	return idx.source
}

// Len returns the number of documents.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.docs)
}

// Doc returns the document at ord. The pointer is borrowed; callers must not
// modify it.
func (idx *Index) Doc(ord int) *Document {
	return &idx.docs[ord]
}

// Notation returns the pre-parsed notation of the document at ord.
func (idx *Index) Notation(ord int) *notation.Notation {
	return &idx.notations[ord]
}

// Corpus holds at most one Index per source.
type Corpus struct {
	indexes [numSources]*Index
}

// New groups documents by their Source, preserving insertion order.
func New(docs ...Document) *Corpus {
	var grouped [numSources][]Document
	for _, d := range docs {
		if d.Source >= numSources {
			continue
		}
		grouped[d.Source] = append(grouped[d.Source], d)
	}
	c := &Corpus{}
	for tag, group := range grouped {
		if len(group) > 0 {
			c.indexes[tag] = NewIndex(SourceTag(tag), group)
		}
	}
	return c
}

// Add installs idx, replacing any previous index for its source.
func (c *Corpus) Add(idx *Index) {
	if idx == nil || idx.source >= numSources {
		return
	}
	c.indexes[idx.source] = idx
}

// Index returns the index for tag, or false when the source is absent or
// empty.
func (c *Corpus) Index(tag SourceTag) (*Index, bool) {
	if c == nil || tag >= numSources {
		return nil, false
	}
	idx := c.indexes[tag]
	if idx.Len() == 0 {
		return nil, false
	}
	return idx, true
}

// Doc resolves a key.
func (c *Corpus) Doc(key DocKey) (*Document, bool) {
	idx, ok := c.Index(key.Source)
	if !ok || key.Ord < 0 || key.Ord >= idx.Len() {
		return nil, false
	}
	return idx.Doc(key.Ord), true
}

// Sources returns the tags of non-empty sources in priority order.
func (c *Corpus) Sources() []SourceTag {
	var out []SourceTag
	for _, tag := range AllSources() {
		if _, ok := c.Index(tag); ok {
			out = append(out, tag)
		}
	}
	return out
}

// Counts returns document counts per loaded source.
func (c *Corpus) Counts() map[SourceTag]int {
	out := make(map[SourceTag]int)
	for _, tag := range c.Sources() {
		idx, _ := c.Index(tag)
		out[tag] = idx.Len()
	}
	return out
}

// Len returns the total number of documents.
func (c *Corpus) Len() int {
	n := 0
	for _, idx := range c.indexes {
		n += idx.Len()
	}
	return n
}
