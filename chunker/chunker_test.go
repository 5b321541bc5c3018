package chunker

import (
	"strings"
	"testing"

	"github.com/auricle-ai/auricle/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_Empty(t *testing.T) {
	s := NewSplitter(DefaultConfig())

	assert.Empty(t, s.SplitText(""))
	assert.Empty(t, s.SplitText("   \n\t\n  "))
}

func TestSplitText_SingleParagraph(t *testing.T) {
	s := NewSplitter(DefaultConfig())

	pieces := s.SplitText("a short note about the quarterly roadmap")
	require.Len(t, pieces, 1)
	assert.Equal(t, "a short note about the quarterly roadmap", pieces[0].Text)
	assert.Nil(t, pieces[0].TimeRange)
}

func TestSplitText_PacksParagraphs(t *testing.T) {
	s := NewSplitter(Config{MaxChars: 100, Overlap: 10})

	pieces := s.SplitText("first paragraph\n\nsecond paragraph")
	require.Len(t, pieces, 1)
	assert.Equal(t, "first paragraph second paragraph", pieces[0].Text)
}

func TestSplitText_FlushesWithOverlap(t *testing.T) {
	s := NewSplitter(Config{MaxChars: 20, Overlap: 5})

	pieces := s.SplitText("aaaa aaaa\n\nbbbb bbbb\n\ncccc cccc")
	require.Len(t, pieces, 2)
	assert.Equal(t, "aaaa aaaa bbbb bbbb", pieces[0].Text)
	// The next piece starts with the tail of the previous one.
	assert.Equal(t, "bbbb cccc cccc", pieces[1].Text)
}

func TestSplitText_BoundedLength(t *testing.T) {
	s := NewSplitter(Config{MaxChars: 50, Overlap: 10})

	long := strings.Repeat("word ", 200)
	pieces := s.SplitText(long)
	require.NotEmpty(t, pieces)
	for _, p := range pieces {
		assert.LessOrEqual(t, len([]rune(p.Text)), 50)
	}
}

func TestSplitText_Deterministic(t *testing.T) {
	s := NewSplitter(Config{MaxChars: 40, Overlap: 8})
	text := "alpha beta gamma\n\ndelta epsilon zeta\n\neta theta iota kappa"

	first := s.SplitText(text)
	second := s.SplitText(text)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestSplitBlocks_HardBoundary(t *testing.T) {
	s := NewSplitter(Config{MaxChars: 100, Overlap: 10})

	pieces := s.SplitBlocks([]string{"short doc one", "short doc two"})
	require.Len(t, pieces, 2)
	assert.Equal(t, "short doc one", pieces[0].Text)
	assert.Equal(t, "short doc two", pieces[1].Text)
}

func TestSplitBlocks_SkipsEmptyBlocks(t *testing.T) {
	s := NewSplitter(DefaultConfig())

	pieces := s.SplitBlocks([]string{"", "content here", "   "})
	require.Len(t, pieces, 1)
	assert.Equal(t, "content here", pieces[0].Text)
}

func TestSplitTimed_CombinesSegments(t *testing.T) {
	s := NewSplitter(DefaultConfig())

	pieces, err := s.SplitTimed([]core.Segment{
		{StartSec: 0, EndSec: 10, Text: "intro"},
		{StartSec: 10, EndSec: 25, Text: "agenda items"},
	})
	require.NoError(t, err)
	require.Len(t, pieces, 1)
	assert.Equal(t, "intro agenda items", pieces[0].Text)
	require.NotNil(t, pieces[0].TimeRange)
	assert.Equal(t, 0.0, pieces[0].TimeRange.StartSec)
	assert.Equal(t, 25.0, pieces[0].TimeRange.EndSec)
}

func TestSplitTimed_SplitsOnLimit(t *testing.T) {
	s := NewSplitter(Config{MaxChars: 15, Overlap: 0})

	pieces, err := s.SplitTimed([]core.Segment{
		{StartSec: 0, EndSec: 10, Text: "intro"},
		{StartSec: 10, EndSec: 25, Text: "agenda items"},
	})
	require.NoError(t, err)
	require.Len(t, pieces, 2)

	assert.Equal(t, "intro", pieces[0].Text)
	assert.Equal(t, 0.0, pieces[0].TimeRange.StartSec)
	assert.Equal(t, 10.0, pieces[0].TimeRange.EndSec)

	assert.Equal(t, "agenda items", pieces[1].Text)
	assert.Equal(t, 10.0, pieces[1].TimeRange.StartSec)
	assert.Equal(t, 25.0, pieces[1].TimeRange.EndSec)
}

func TestSplitTimed_InvalidRange(t *testing.T) {
	s := NewSplitter(DefaultConfig())

	_, err := s.SplitTimed([]core.Segment{
		{StartSec: 10, EndSec: 5, Text: "backwards"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidTimeRange)

	_, err = s.SplitTimed([]core.Segment{
		{StartSec: -1, EndSec: 5, Text: "negative"},
	})
	assert.ErrorIs(t, err, core.ErrInvalidTimeRange)
}

func TestSplitTimed_SkipsEmptySegments(t *testing.T) {
	s := NewSplitter(DefaultConfig())

	pieces, err := s.SplitTimed([]core.Segment{
		{StartSec: 0, EndSec: 5, Text: "  "},
		{StartSec: 5, EndSec: 9, Text: "hello"},
	})
	require.NoError(t, err)
	require.Len(t, pieces, 1)
	assert.Equal(t, "hello", pieces[0].Text)
	assert.Equal(t, 5.0, pieces[0].TimeRange.StartSec)
}

func TestSplitTimed_Empty(t *testing.T) {
	s := NewSplitter(DefaultConfig())

	pieces, err := s.SplitTimed(nil)
	require.NoError(t, err)
	assert.Empty(t, pieces)
}

func TestSplitTimed_OversizedSegment(t *testing.T) {
	s := NewSplitter(Config{MaxChars: 20, Overlap: 4})

	pieces, err := s.SplitTimed([]core.Segment{
		{StartSec: 0, EndSec: 60, Text: strings.Repeat("x", 50)},
	})
	require.NoError(t, err)
	require.Greater(t, len(pieces), 1)
	for _, p := range pieces {
		assert.LessOrEqual(t, len([]rune(p.Text)), 20)
		require.NotNil(t, p.TimeRange)
		assert.Equal(t, 0.0, p.TimeRange.StartSec)
		assert.Equal(t, 60.0, p.TimeRange.EndSec)
	}
}

func TestNewSplitter_NormalizesConfig(t *testing.T) {
	s := NewSplitter(Config{MaxChars: 0, Overlap: -1})
	cfg := s.Config()
	assert.Equal(t, DefaultMaxChars, cfg.MaxChars)
	assert.Equal(t, 0, cfg.Overlap)

	s = NewSplitter(Config{MaxChars: 60, Overlap: 60})
	cfg = s.Config()
	assert.Less(t, cfg.Overlap, cfg.MaxChars)
}
