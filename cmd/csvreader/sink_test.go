package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"csvreader"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRows(t *testing.T) {
	assert := assert.New(t)

	file := newMockOutputStream()

	sink := newSink(file, 16)
	assert.True(sink.empty())

	assert.NoError(sink.writeRow([]string{"a", "b"}))
	assert.False(sink.empty())
	assert.Equal(0, file.writeCount())

	assert.NoError(sink.writeRow([]string{`d"ata`, "123"}))
	assert.True(sink.empty(), "a full buffer is flushed")
	assert.Equal(1, file.writeCount())

	assert.NoError(sink.writeRow([]string{""}))
	assert.NoError(sink.flush())
	assert.NoError(sink.flush())

	assert.Equal("[\"a\",\"b\"]\n[\"d\\\"ata\",\"123\"]\n[\"\"]\n", file.stringContent())
	assert.Equal(2, file.writeCount())
	assert.Equal(2, sink.getNumberOfWrites())
	assert.Equal(len(file.stringContent()), sink.getBytesWritten())
}

func TestPrintRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), uuid.New().String()+".csv")
	require.NoError(t, os.WriteFile(path, []byte("skip\ntest,@,\"d,@,ata\"|#x"), 0o600))

	reader, err := csvreader.New(csvreader.Settings{
		Delimiter:      ",@,",
		EndOfRowMarker: "|#",
		StartAtLine:    0,
	})
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)

	var out bytes.Buffer
	require.NoError(t, printRows(reader, path, &out, logger))
	assert.Equal(t, "[\"skip\\ntest\",\"d,@,ata\"]\n[\"x\"]\n", out.String())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Rows written", entry.Message)
	assert.Equal(t, 2, entry.Data["rows"])
	assert.Equal(t, 1, entry.Data["writes"])
	assert.Equal(t, out.Len(), entry.Data["bytes"])
}

func TestPrintRowsOfMissingFile(t *testing.T) {
	reader, err := csvreader.New(csvreader.Settings{})
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	err = printRows(reader, filepath.Join(t.TempDir(), "missing.csv"), &bytes.Buffer{}, logger)
	assert.ErrorIs(t, err, csvreader.ErrSourceUnavailable)
}

func TestChunkSizeFlagLeavesLibraryDefault(t *testing.T) {
	var args cli
	parser, err := kong.New(&args)
	require.NoError(t, err)

	_, err = parser.Parse([]string{"parse", "-d", ";", "rows.csv"})
	require.NoError(t, err)
	assert.Equal(t, ";", args.Parse.Delimiter)
	assert.Equal(t, 0, args.Parse.ChunkSize)

	_, err = args.Parse.newReader(log.New())
	assert.NoError(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("debug", true)
	require.NoError(t, err)
	assert.Equal(t, "debug", logger.GetLevel().String())

	_, err = newLogger("loud", false)
	assert.Error(t, err)
}

type mockOutputStream struct {
	writes [][]byte
}

func newMockOutputStream() *mockOutputStream {
	return &mockOutputStream{writes: make([][]byte, 0)}
}

func (mock *mockOutputStream) Write(data []byte) (n int, err error) {
	mock.writes = append(mock.writes, append([]byte(nil), data...))
	return len(data), nil
}

func (mock *mockOutputStream) stringContent() string {
	content := make([]byte, 0)
	for _, chunk := range mock.writes {
		content = append(content, chunk...)
	}
	return string(content)
}

func (mock *mockOutputStream) writeCount() int {
	return len(mock.writes)
}
