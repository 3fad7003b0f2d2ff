package csvreader

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsAreProducedLazily(t *testing.T) {
	assert := assert.New(t)
	reader, err := New(Settings{ChunkSize: 4})
	require.NoError(t, err)

	in := &closingStream{Reader: strings.NewReader("a,b\nc,d\ne,f\n")}
	rows := reader.ParseReadCloser(in)

	require.True(t, rows.Next())
	assert.Equal([]string{"a", "b"}, rows.Row())
	assert.Equal(1, rows.Stats().Reads, "only the first chunk has been read")
	assert.False(in.closed)
}

func TestCloseReleasesTheSourceEarly(t *testing.T) {
	assert := assert.New(t)
	reader, err := New(Settings{})
	require.NoError(t, err)

	in := &closingStream{Reader: strings.NewReader("a\nb\nc\n")}
	rows := reader.ParseReadCloser(in)
	require.True(t, rows.Next())

	assert.NoError(rows.Close())
	assert.True(in.closed)
	assert.Equal(1, in.closes)

	assert.False(rows.Next())
	assert.NoError(rows.Close())
	assert.Equal(1, in.closes, "the source is closed once")
}

func TestBreakingOutOfAllReleasesTheSource(t *testing.T) {
	reader, err := New(Settings{})
	require.NoError(t, err)

	in := &closingStream{Reader: strings.NewReader("a\nb\nc\n")}
	var seen [][]string
	for row, err := range reader.ParseReadCloser(in).All() {
		require.NoError(t, err)
		seen = append(seen, row)
		break
	}

	assert.Equal(t, [][]string{{"a"}}, seen)
	assert.True(t, in.closed)
}

func TestExhaustionAndErrorsReleaseTheSource(t *testing.T) {
	reader, err := New(Settings{})
	require.NoError(t, err)

	exhausted := &closingStream{Reader: strings.NewReader("a\n")}
	rows := reader.ParseReadCloser(exhausted)
	for rows.Next() {
	}
	assert.True(t, exhausted.closed)

	malformed := &closingStream{Reader: strings.NewReader("a\rb")}
	rows = reader.ParseReadCloser(malformed)
	for rows.Next() {
	}
	assert.ErrorIs(t, rows.Err(), ErrMalformedRow)
	assert.True(t, malformed.closed)
}

func TestParseLeavesCallerReaderOpen(t *testing.T) {
	reader, err := New(Settings{})
	require.NoError(t, err)

	in := &closingStream{Reader: strings.NewReader("a\n")}
	rows := reader.Parse(in)
	for rows.Next() {
	}
	require.NoError(t, rows.Close())
	assert.False(t, in.closed)
}

func TestAllYieldsTheParseErrorLast(t *testing.T) {
	reader, err := New(Settings{})
	require.NoError(t, err)

	var seen [][]string
	var failure error
	for row, err := range reader.Parse(strings.NewReader("a\n\"b\"x\n")).All() {
		if err != nil {
			failure = err
			continue
		}
		seen = append(seen, row)
	}

	assert.Equal(t, [][]string{{"a"}}, seen)
	assert.ErrorIs(t, failure, ErrMalformedField)
}

func TestReadFailureIsSourceUnavailable(t *testing.T) {
	reader, err := New(Settings{})
	require.NoError(t, err)

	failure := errors.New("connection reset")
	rows := reader.Parse(&failingStream{data: []byte("a,b\nc"), err: failure})

	require.True(t, rows.Next())
	assert.Equal(t, []string{"a", "b"}, rows.Row())
	assert.False(t, rows.Next())
	assert.ErrorIs(t, rows.Err(), ErrSourceUnavailable)
	assert.ErrorIs(t, rows.Err(), failure)
}

func TestSeparateParsesDoNotShareState(t *testing.T) {
	reader, err := New(Settings{Delimiter: ",@", ChunkSize: 1})
	require.NoError(t, err)

	first := reader.Parse(strings.NewReader("a,@b\nc"))
	second := reader.Parse(strings.NewReader("x,@y"))

	require.True(t, first.Next())
	require.True(t, second.Next())
	assert.Equal(t, []string{"a", "b"}, first.Row())
	assert.Equal(t, []string{"x", "y"}, second.Row())
	require.True(t, first.Next())
	assert.Equal(t, []string{"c"}, first.Row())
}

type closingStream struct {
	io.Reader
	closed bool
	closes int
}

func (s *closingStream) Close() error {
	s.closed = true
	s.closes++
	return nil
}
