package ingest

import (
	"fmt"

	"github.com/auricle-ai/auricle/core"
)

// Source is the raw material of one ingestion job. Exactly one content
// field is used, chosen by Type:
//
//   - SourceTypeMessage and SourceTypeDocument read Text, or Blocks when
//     the caller wants hard chunk boundaries between pre-split sections
//   - SourceTypeTranscript reads Segments
type Source struct {
	// Type classifies the content and selects the chunking strategy.
	Type core.SourceType

	// Text is free-form content, chunked on paragraph boundaries.
	Text string

	// Blocks are pre-split sections; chunks never span two blocks.
	Blocks []string

	// Segments are timed transcript utterances.
	Segments []core.Segment

	// Tags are attached verbatim to every chunk produced by this source.
	Tags []string
}

func (s Source) validate() error {
	if err := core.ValidateSourceType(s.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}
	if s.Type == core.SourceTypeTranscript {
		if s.Text != "" || len(s.Blocks) > 0 {
			return fmt.Errorf("%w: transcript sources carry segments, not text", ErrInvalidSource)
		}
		return nil
	}
	if len(s.Segments) > 0 {
		return fmt.Errorf("%w: timed segments require a transcript source", ErrInvalidSource)
	}
	if s.Text != "" && len(s.Blocks) > 0 {
		return fmt.Errorf("%w: use either Text or Blocks, not both", ErrInvalidSource)
	}
	return nil
}
