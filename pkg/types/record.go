// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures for termgraph: the
// backend wire shapes (TermRecord, Report, SearchResult) and the typed
// configuration loaded by the CLI.
package types

// ArticleRef is one source article attached to a term. It is display
// payload only; the same article may appear under many terms.
type ArticleRef struct {
	// Title is the article title as returned by the backend.
	Title string `json:"titulo" yaml:"title"`

	// Link is the article URL, opened in a new browsing context by viewers.
	Link string `json:"link" yaml:"link"`
}

// TermRecord is one row of backend output: a term label, the articles that
// mention it, and the labels of related terms.
//
// Label is the case-sensitive identity key. Relations may name labels that
// are not present in the same collection; consumers drop those silently.
type TermRecord struct {
	Label     string       `json:"palabra" yaml:"label"`
	Articles  []ArticleRef `json:"articulos" yaml:"articles"`
	Relations []string     `json:"relaciones" yaml:"relations"`
}

// Report is the textual part of a backend answer.
type Report struct {
	// Summary is a short prose answer to the question.
	Summary string `json:"resumen" yaml:"summary"`

	// Findings lists individual findings in backend order.
	Findings []string `json:"hallazgos" yaml:"findings"`
}

// SearchResult pairs the report with the term records for one query.
// The controller replaces it wholesale on every query.
type SearchResult struct {
	Report  Report       `json:"reporte" yaml:"report"`
	Records []TermRecord `json:"grafo" yaml:"records"`

	// Fallback is true when the result is the built-in example payload
	// substituted for a failed or empty backend call.
	Fallback bool `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// IsEmpty reports whether the result carries neither report text nor records.
func (r *SearchResult) IsEmpty() bool {
	return r == nil ||
		(r.Report.Summary == "" && len(r.Report.Findings) == 0 && len(r.Records) == 0)
}
