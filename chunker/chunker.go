package chunker

import (
	"fmt"
	"strings"

	"github.com/auricle-ai/auricle/core"
)

const (
	// DefaultMaxChars is the default maximum chunk length in runes.
	DefaultMaxChars = 900
	// DefaultOverlap is the default overlap carried between consecutive chunks, in runes.
	DefaultOverlap = 150
)

// Config controls chunk boundaries. Identical input and config always
// produce identical chunks.
type Config struct {
	// MaxChars is the maximum chunk length in runes.
	MaxChars int
	// Overlap is the number of trailing runes of a chunk repeated at the
	// start of the next chunk. Must be smaller than MaxChars.
	Overlap int
}

// DefaultConfig returns the default chunking configuration.
func DefaultConfig() Config {
	return Config{MaxChars: DefaultMaxChars, Overlap: DefaultOverlap}
}

func (c Config) withDefaults() Config {
	if c.MaxChars <= 0 {
		c.MaxChars = DefaultMaxChars
	}
	if c.Overlap < 0 {
		c.Overlap = 0
	}
	if c.Overlap >= c.MaxChars {
		c.Overlap = c.MaxChars / 6
	}
	return c
}

// Piece is one chunk of source text. TimeRange is set only for pieces
// produced from timed segments.
type Piece struct {
	Text      string
	TimeRange *core.TimeRange
}

// Splitter splits raw or timed text into bounded, ordered pieces.
type Splitter struct {
	cfg Config
}

// NewSplitter creates a splitter, normalizing out-of-range config values.
func NewSplitter(cfg Config) *Splitter {
	return &Splitter{cfg: cfg.withDefaults()}
}

// Config returns the normalized configuration in effect.
func (s *Splitter) Config() Config {
	return s.cfg
}

// SplitText splits plain text into pieces no longer than MaxChars.
// Paragraphs (blank-line separated) are packed together while they fit;
// when a chunk is flushed, its tail is carried into the next chunk as
// overlap. Empty or whitespace-only input yields zero pieces.
func (s *Splitter) SplitText(text string) []Piece {
	paras := splitParagraphs(text)
	if len(paras) == 0 {
		return nil
	}

	var pieces []Piece
	cur := ""
	for _, para := range paras {
		switch {
		case cur == "":
			cur = para
		case runeLen(cur)+1+runeLen(para) <= s.cfg.MaxChars:
			cur = cur + " " + para
		default:
			pieces = appendSliced(pieces, cur, s.cfg)
			tail := overlapTail(cur, s.cfg.Overlap)
			if tail != "" {
				cur = tail + " " + para
			} else {
				cur = para
			}
		}
	}
	if cur != "" {
		pieces = appendSliced(pieces, cur, s.cfg)
	}
	return pieces
}

// SplitBlocks splits each block independently and concatenates the results.
// A block is a hard source boundary: no piece ever spans two blocks, even
// when their combined length is under the limit.
func (s *Splitter) SplitBlocks(blocks []string) []Piece {
	var pieces []Piece
	for _, block := range blocks {
		pieces = append(pieces, s.SplitText(block)...)
	}
	return pieces
}

// SplitTimed splits timed transcript segments into pieces. Consecutive
// segments are packed while the joined text stays under MaxChars; a piece
// inherits StartSec of its first segment and EndSec of its last. Overlap is
// segment-granular so time ranges stay truthful. Segments with invalid time
// ranges are rejected with core.ErrInvalidTimeRange.
func (s *Splitter) SplitTimed(segments []core.Segment) ([]Piece, error) {
	// Drop empty segments up front, validate the rest.
	kept := make([]core.Segment, 0, len(segments))
	for i, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		tr := core.TimeRange{StartSec: seg.StartSec, EndSec: seg.EndSec}
		if err := core.ValidateTimeRange(&tr); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		seg.Text = strings.Join(strings.Fields(seg.Text), " ")
		kept = append(kept, seg)
	}
	if len(kept) == 0 {
		return nil, nil
	}

	var pieces []Piece
	var run []core.Segment
	runLen := 0

	flush := func() {
		if len(run) == 0 {
			return
		}
		pieces = append(pieces, timedPieces(run, s.cfg)...)
		run = overlapSegments(run, s.cfg.Overlap)
		runLen = joinedLen(run)
	}

	for _, seg := range kept {
		segLen := runeLen(seg.Text)
		if len(run) > 0 && runLen+1+segLen > s.cfg.MaxChars {
			flush()
			// Overlap segments may still not leave room; drop them if not.
			if runLen+1+segLen > s.cfg.MaxChars {
				run = nil
				runLen = 0
			}
		}
		run = append(run, seg)
		if runLen == 0 {
			runLen = segLen
		} else {
			runLen += 1 + segLen
		}
	}
	if len(run) > 0 {
		pieces = append(pieces, timedPieces(run, s.cfg)...)
	}
	return pieces, nil
}

// timedPieces turns a run of segments into one or more pieces. A run whose
// joined text fits in MaxChars becomes a single piece spanning the run's
// combined time range; an oversized run (a single very long segment) is
// sliced, every slice keeping the full range.
func timedPieces(run []core.Segment, cfg Config) []Piece {
	texts := make([]string, len(run))
	for i, seg := range run {
		texts[i] = seg.Text
	}
	joined := strings.Join(texts, " ")
	tr := &core.TimeRange{StartSec: run[0].StartSec, EndSec: run[len(run)-1].EndSec}

	slices := sliceLong(joined, cfg)
	pieces := make([]Piece, len(slices))
	for i, text := range slices {
		pieces[i] = Piece{Text: text, TimeRange: &core.TimeRange{StartSec: tr.StartSec, EndSec: tr.EndSec}}
	}
	return pieces
}

// overlapSegments returns the trailing segments of a run whose joined
// length stays within the configured overlap.
func overlapSegments(run []core.Segment, overlap int) []core.Segment {
	if overlap <= 0 {
		return nil
	}
	total := 0
	start := len(run)
	for i := len(run) - 1; i >= 0; i-- {
		segLen := runeLen(run[i].Text)
		if total > 0 {
			segLen++
		}
		if total+segLen > overlap {
			break
		}
		total += segLen
		start = i
	}
	if start == len(run) {
		return nil
	}
	out := make([]core.Segment, len(run)-start)
	copy(out, run[start:])
	return out
}

func joinedLen(run []core.Segment) int {
	total := 0
	for i, seg := range run {
		if i > 0 {
			total++
		}
		total += runeLen(seg.Text)
	}
	return total
}

// splitParagraphs splits text into blank-line separated paragraphs, joining
// the lines of each paragraph with single spaces.
func splitParagraphs(text string) []string {
	var out []string
	var buf []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(buf) > 0 {
				out = append(out, strings.Join(buf, " "))
				buf = nil
			}
			continue
		}
		buf = append(buf, line)
	}
	if len(buf) > 0 {
		out = append(out, strings.Join(buf, " "))
	}
	return out
}

// appendSliced appends text to pieces, slicing it when over the limit.
func appendSliced(pieces []Piece, text string, cfg Config) []Piece {
	for _, part := range sliceLong(text, cfg) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pieces = append(pieces, Piece{Text: part})
	}
	return pieces
}

// sliceLong splits text into windows of at most MaxChars runes, stepping by
// MaxChars-Overlap. Text already within the limit is returned unchanged.
func sliceLong(text string, cfg Config) []string {
	runes := []rune(text)
	if len(runes) <= cfg.MaxChars {
		return []string{text}
	}
	step := cfg.MaxChars - cfg.Overlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + cfg.MaxChars
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

// overlapTail returns the last overlap runes of text, trimmed.
func overlapTail(text string, overlap int) string {
	if overlap <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= overlap {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(string(runes[len(runes)-overlap:]))
}

func runeLen(s string) int {
	return len([]rune(s))
}
