package search

import (
	"github.com/poiesic/pagesearch/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(subject, query string, bookTitles []string)
	AfterMatcherCompiled(matcher *core.PhraseMatcher)
	AfterPageLookup(pages []*core.Page)
	Finish(results core.SearchResultSet)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string, _ []string)             {}
func (n *noopMonitor) AfterMatcherCompiled(_ *core.PhraseMatcher) {}
func (n *noopMonitor) AfterPageLookup(_ []*core.Page)            {}
func (n *noopMonitor) Finish(_ core.SearchResultSet)             {}
