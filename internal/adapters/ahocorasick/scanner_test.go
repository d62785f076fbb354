package ahocorasick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_ByteOffsets(t *testing.T) {
	s := NewSpanScanner([]string{"john smith"})

	spans := s.Scan([]byte("hello john smith, bye"))
	require.Len(t, spans, 1)
	assert.Equal(t, Span{PatternIndex: 0, Start: 6, End: 16}, spans[0])
}

func TestScan_Overlapping(t *testing.T) {
	s := NewSpanScanner([]string{"ann", "anna"})

	spans := s.Scan([]byte("anna"))
	require.Len(t, spans, 2)
	assert.Equal(t, "ann", s.Pattern(spans[0].PatternIndex))
	assert.Equal(t, "anna", s.Pattern(spans[1].PatternIndex))
}

func TestScan_MultipleHits(t *testing.T) {
	s := NewSpanScanner([]string{"smith"})

	spans := s.Scan([]byte("smith and smith"))
	require.Len(t, spans, 2)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 10, spans[1].Start)
}

func TestScan_Empty(t *testing.T) {
	s := NewSpanScanner(nil)
	assert.Nil(t, s.Scan([]byte("anything")))
	assert.Equal(t, 0, s.PatternCount())

	s = NewSpanScanner([]string{"x"})
	assert.Empty(t, s.Scan(nil))
}

func TestPattern_OutOfRange(t *testing.T) {
	s := NewSpanScanner([]string{"a"})
	assert.Equal(t, "a", s.Pattern(0))
	assert.Equal(t, "", s.Pattern(5))
	assert.Equal(t, "", s.Pattern(-1))
}
