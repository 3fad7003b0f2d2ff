package csvreader

import (
	"errors"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

var errIsDirectory = errors.New("is a directory")

// ParseFile opens path and returns its rows. The file is closed when the
// rows are exhausted, fail or are closed. A missing or unreadable path
// fails with ErrSourceUnavailable before any row is read.
func (r *Reader) ParseFile(path string) (*Rows, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, newOpeningError(path, err)
	}
	if info.IsDir() {
		return nil, newOpeningError(path, errIsDirectory)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, newOpeningError(path, err)
	}

	debug(r.log, "Opened source file", log.Fields{
		"path": absPath(path),
		"size": info.Size(),
	})
	return r.ParseReadCloser(file), nil
}

func absPath(file string) string {
	path, err := filepath.Abs(file)
	if err != nil {
		return file
	}
	return path
}
