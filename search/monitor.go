package search

import (
	"github.com/auricle-ai/auricle/core"
	"github.com/auricle-ai/auricle/rank"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterQueryEmbedding(embedding []float32, degraded bool)
	AfterCandidateQuery(candidates []*core.Chunk)
	Finish(results []rank.Scored)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                           {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32, _ bool)  {}
func (n *noopMonitor) AfterCandidateQuery(_ []*core.Chunk)      {}
func (n *noopMonitor) Finish(_ []rank.Scored)                   {}
