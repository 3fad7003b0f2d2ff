package main

import (
	"encoding/json"
)

type outputStream interface {
	Write(b []byte) (n int, err error)
}

// sink buffers JSON encoded rows and writes them out once the buffer
// reaches its threshold.
type sink struct {
	output    outputStream
	buffer    []byte
	threshold int
	writes    int
	written   int
}

func newSink(output outputStream, writeThreshold int) *sink {
	return &sink{
		output:    output,
		threshold: writeThreshold,
		buffer:    make([]byte, 0, writeThreshold),
	}
}

func (s *sink) write(chunks ...[]byte) {
	for _, chunk := range chunks {
		s.buffer = append(s.buffer, chunk...)
	}
}

// writeRow appends row as a JSON array followed by a line feed, flushing
// when the buffer is full.
func (s *sink) writeRow(row []string) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	s.write(data, []byte("\n"))
	if s.full() {
		return s.flush()
	}
	return nil
}

func (s *sink) flush() error {
	if s.empty() {
		return nil
	}
	count, err := s.output.Write(s.buffer)
	s.written += count
	s.writes++
	if err != nil {
		return err
	}
	s.buffer = s.buffer[:0]
	return nil
}

func (s *sink) getBytesWritten() int {
	return s.written
}

func (s *sink) getNumberOfWrites() int {
	return s.writes
}

func (s *sink) full() bool {
	return len(s.buffer) >= s.threshold
}

func (s *sink) empty() bool {
	return len(s.buffer) == 0
}
