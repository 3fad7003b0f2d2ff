package csvreader

import (
	"io"
	"iter"

	log "github.com/sirupsen/logrus"
)

// Rows is a forward-only sequence of the rows of one source. Each call to
// Next resumes the tokenizer where the previous row left it. Rows is not
// safe for concurrent use.
type Rows struct {
	src    *source
	tok    *tokenizer
	closer io.Closer
	log    log.FieldLogger

	chunk []rune
	pos   int
	row   []string
	err   error
	done  bool
}

func newRows(r *Reader, in io.Reader, closer io.Closer) *Rows {
	return &Rows{
		src:    newBufferedSource(in, r.chunkSize),
		tok:    newTokenizer(r),
		closer: closer,
		log:    r.log,
	}
}

// Next advances to the following row. It returns false once the source is
// exhausted, an error stopped the parse, or Close was called.
func (rows *Rows) Next() bool {
	rows.row = nil
	if rows.done {
		return false
	}

	for {
		for rows.pos < len(rows.chunk) {
			ch := rows.chunk[rows.pos]
			rows.pos++
			row, err := rows.tok.consume(ch)
			if err != nil {
				return rows.fail(err)
			}
			if row != nil {
				rows.row = row
				return true
			}
		}

		chunk, err := rows.src.next()
		if err == io.EOF {
			return rows.finish()
		}
		if err != nil {
			return rows.fail(newReadingError(rows.tok.line(), rows.tok.offset, err))
		}
		rows.chunk, rows.pos = chunk, 0
	}
}

func (rows *Rows) finish() bool {
	row, err := rows.tok.finish()
	if err != nil {
		return rows.fail(err)
	}
	rows.release()
	if row != nil {
		rows.row = row
		return true
	}
	return false
}

func (rows *Rows) fail(err error) bool {
	rows.err = err
	rows.release()
	return false
}

// Row returns the row Next advanced to. The slice is not reused.
func (rows *Rows) Row() []string {
	return rows.row
}

// Err returns the error that stopped the parse, nil at a clean end.
func (rows *Rows) Err() error {
	return rows.err
}

// Stats reports what this parse has read and produced so far.
func (rows *Rows) Stats() Stats {
	return Stats{
		Reads:   rows.src.numOfReads(),
		Bytes:   rows.src.bytesIn(),
		Chars:   rows.tok.offset,
		Rows:    rows.tok.rows,
		Skipped: rows.tok.skipped,
	}
}

// Close stops the parse and releases the source if Rows owns it. It is
// safe to call more than once.
func (rows *Rows) Close() error {
	rows.done = true
	rows.row = nil
	return rows.closeSource()
}

// All ranges over the remaining rows. A parse error is yielded last, with a
// nil row. The source is released when the loop ends, including on break.
func (rows *Rows) All() iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		defer rows.Close()
		for rows.Next() {
			if !yield(rows.Row(), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func (rows *Rows) release() {
	rows.done = true
	if err := rows.closeSource(); err != nil {
		logError(rows.log, "Error closing source", err)
	}
}

func (rows *Rows) closeSource() error {
	if rows.closer == nil {
		return nil
	}
	closer := rows.closer
	rows.closer = nil
	debug(rows.log, "Releasing source", log.Fields{
		"reads": rows.src.numOfReads(),
		"bytes": rows.src.bytesIn(),
	})
	return closer.Close()
}
