// Package eval implements retrieval and generation quality metrics for
// question-answering pipelines.
package eval

import (
	"fmt"

	apperrors "github.com/rankeval/rank-eval/internal/pkg/errors"
)

// Context is a retrieved passage. HasAnswer is pre-computed by the upstream
// retrieval pipeline (typically a substring match against the answers).
type Context struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	HasAnswer bool    `json:"has_answer"`
}

// Document pairs a question with its retrieved contexts and reference answers.
// ReorderContexts is written once by an external reranker and is empty until
// reranking occurs.
type Document struct {
	Question        string    `json:"question"`
	Contexts        []Context `json:"contexts"`
	ReorderContexts []Context `json:"reorder_contexts,omitempty"`
	Answers         []string  `json:"answers"`
}

// Config holds the metric computation settings.
type Config struct {
	DatasetName  string
	BleuMaxOrder int
	BleuSmooth   bool
	IncludeBleu  bool
}

// DefaultConfig returns the default metric settings.
func DefaultConfig() Config {
	return Config{
		DatasetName:  "default",
		BleuMaxOrder: 4,
	}
}

// Batch bundles the documents and index-aligned predictions every scorer
// consumes. Scorers treat it as read-only.
type Batch struct {
	Documents   []Document
	Predictions []string
	Config      Config
}

// Validate checks the batch contract: a non-empty document set with one
// prediction per document.
func (b *Batch) Validate() error {
	if len(b.Documents) == 0 {
		return apperrors.ValidationError("batch contains no documents")
	}
	if len(b.Predictions) != len(b.Documents) {
		return apperrors.ValidationError(fmt.Sprintf(
			"predictions count %d does not match documents count %d",
			len(b.Predictions), len(b.Documents)))
	}
	return nil
}
