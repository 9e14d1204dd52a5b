package proxy_test

import "strings"

//
// -----------------------------------------------------------------------------
// Shared test models
// -----------------------------------------------------------------------------

// Report is the expensive-to-construct instance the proxies in these tests
// stand in for.
type Report struct {
	Title string
	Pages int
	Tags  []string

	hits int
}

// Render returns the report title with a prefix.
func (r *Report) Render(prefix string) string {
	r.hits++
	return prefix + r.Title
}

// Describe joins the title with arbitrary labels.
func (r *Report) Describe(sep string, labels ...string) string {
	return r.Title + sep + strings.Join(labels, sep)
}

// Hits reports how many times Render ran.
func (r *Report) Hits() int { return r.hits }

// newReport returns the canonical wrapped instance used across tests.
func newReport() *Report {
	return &Report{Title: "q3", Pages: 12, Tags: []string{"finance"}}
}
