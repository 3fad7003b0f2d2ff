// Package csvreader tokenizes delimited text into rows of string fields.
//
// The delimiter, text qualifier and end-of-row marker may each be more than
// one character long. Input is read forward only, one chunk at a time, and
// rows are produced lazily as the caller asks for them:
//
//	reader, err := csvreader.New(csvreader.Settings{Delimiter: ";"})
//	if err != nil {
//	    return err
//	}
//	rows, err := reader.ParseFile("data.csv")
//	if err != nil {
//	    return err
//	}
//	defer rows.Close()
//	for rows.Next() {
//	    fmt.Println(rows.Row())
//	}
//	return rows.Err()
package csvreader

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// Reader holds a validated configuration. It is immutable and every parse
// it starts owns its own tokenizer, so one Reader may serve any number of
// sources, concurrently or not.
type Reader struct {
	delimiter   string
	qualifier   string
	rowMarker   string
	startAtLine int
	chunkSize   int
	log         log.FieldLogger
}

// New validates settings, filling in defaults for zero-valued fields.
func New(settings Settings) (*Reader, error) {
	settings = settings.withDefaults()
	if err := settings.validate(); err != nil {
		return nil, err
	}
	return &Reader{
		delimiter:   settings.Delimiter,
		qualifier:   settings.TextQualifier,
		rowMarker:   settings.EndOfRowMarker,
		startAtLine: settings.StartAtLine,
		chunkSize:   settings.ChunkSize,
		log:         settings.Logger,
	}, nil
}

// Parse returns the rows of in. The caller keeps ownership of in.
func (r *Reader) Parse(in io.Reader) *Rows {
	return newRows(r, in, nil)
}

// ParseReadCloser returns the rows of in and closes in once the rows are
// exhausted, fail or are closed.
func (r *Reader) ParseReadCloser(in io.ReadCloser) *Rows {
	return newRows(r, in, in)
}
