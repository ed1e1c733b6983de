package querier

import (
	"encoding/json"
	"sort"

	"github.com/Aman-CERP/ddcquery/internal/errors"
)

// Request is one retrieval operation.
type Request struct {
	Numbers  []string           `json:"numbers"`
	Keywords []string           `json:"keywords"`
	Facets   map[string]*string `json:"facets"`
	Sources  []string           `json:"sources"`
	Limits   Limits             `json:"limits"`
	Options  Options            `json:"options"`
}

// Limits bound the result size.
type Limits struct {
	KPerSource int `json:"k_per_source"`
	MaxDocs    int `json:"max_docs"`
}

// Options toggle optional signals.
type Options struct {
	ExpandSynonyms         bool     `json:"expand_synonyms"`
	IncludeStdSubdivisions bool     `json:"include_std_subdivisions"`
	UseSemantic            bool     `json:"use_semantic,omitempty"`
	SemanticWeight         *float64 `json:"semantic_weight,omitempty"`
	SemanticModel          string   `json:"semantic_model,omitempty"`
}

var (
	requiredFields       = []string{"numbers", "keywords", "facets", "sources", "limits", "options"}
	requiredLimitFields  = []string{"k_per_source", "max_docs"}
	requiredOptionFields = []string{"expand_synonyms", "include_std_subdivisions"}
	knownOptionFields    = map[string]bool{
		"expand_synonyms":          true,
		"include_std_subdivisions": true,
		"use_semantic":             true,
		"semantic_weight":          true,
		"semantic_model":           true,
	}
)

// DecodeRequest parses a JSON request. A missing required field returns
// ERR_405 and an unknown option key ERR_406. Unknown top-level keys are
// ignored.
func DecodeRequest(data []byte) (*Request, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "request is not a JSON object", err)
	}
	if err := requireFields("", top, requiredFields); err != nil {
		return nil, err
	}

	var limits map[string]json.RawMessage
	if err := json.Unmarshal(top["limits"], &limits); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "limits must be an object", err)
	}
	if err := requireFields("limits.", limits, requiredLimitFields); err != nil {
		return nil, err
	}

	var options map[string]json.RawMessage
	if err := json.Unmarshal(top["options"], &options); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "options must be an object", err)
	}
	if err := requireFields("options.", options, requiredOptionFields); err != nil {
		return nil, err
	}
	var unknown []string
	for key := range options {
		if !knownOptionFields[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, errors.New(errors.ErrCodeUnknownOption, "unknown option "+unknown[0], nil).
			WithDetail("option", unknown[0])
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "request field has the wrong type", err)
	}
	return &req, nil
}

func requireFields(prefix string, obj map[string]json.RawMessage, fields []string) error {
	for _, f := range fields {
		if _, ok := obj[f]; !ok {
			return errors.New(errors.ErrCodeMissingField, "missing required field "+prefix+f, nil).
				WithDetail("field", prefix+f)
		}
	}
	return nil
}
