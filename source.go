package csvreader

import (
	"io"
	"unicode/utf8"
)

const maxConsecutiveEmptyReads = 100

type inputStream interface {
	Read(buff []byte) (n int, err error)
}

// source reads an input stream in chunks of at most size bytes and hands
// them out decoded as runes. A rune cut by a read boundary is carried over
// to the next chunk.
type source struct {
	fd    inputStream
	buff  []byte
	size  int
	carry int
	chunk []rune
	eof   bool
	err   error
	in    ioData
}

func newBufferedSource(fd inputStream, buffSize int) *source {
	src := new(source)
	src.fd = fd
	src.size = buffSize
	src.buff = make([]byte, buffSize+utf8.UTFMax)
	src.chunk = make([]rune, 0, buffSize)
	return src
}

// next returns the following chunk of runes, or io.EOF once the stream is
// exhausted. The returned slice is only valid until the next call.
func (src *source) next() ([]rune, error) {
	for empty := 0; ; {
		if src.err != nil {
			return nil, src.err
		}
		if src.eof {
			return nil, io.EOF
		}

		n := src.loadData()

		chunk := src.decode(src.carry + n)
		if len(chunk) > 0 {
			return chunk, nil
		}

		if n == 0 && !src.eof && src.err == nil {
			empty++
			if empty >= maxConsecutiveEmptyReads {
				return nil, io.ErrNoProgress
			}
		}
	}
}

// loadData reads into the buffer after any carried bytes. A read error is
// kept until the bytes returned along with it have been handed out.
func (src *source) loadData() int {
	nbytes, err := src.fd.Read(src.buff[src.carry : src.carry+src.size])
	src.in.add(nbytes)
	if err == io.EOF {
		src.eof = true
	} else if err != nil {
		src.err = err
	}
	return nbytes
}

func (src *source) decode(length int) []rune {
	data := src.buff[:length]
	src.chunk = src.chunk[:0]

	i := 0
	for i < len(data) {
		if !src.eof && !utf8.FullRune(data[i:]) {
			break
		}
		r, size := utf8.DecodeRune(data[i:])
		src.chunk = append(src.chunk, r)
		i += size
	}

	src.carry = copy(src.buff, data[i:])
	return src.chunk
}

func (src *source) numOfReads() int {
	return src.in.getCalls()
}

func (src *source) bytesIn() int {
	return src.in.getByteCount()
}
