package csvreader

type ioData struct {
	bytes int
	calls int
}

func (i *ioData) add(bytes int) {
	i.bytes += bytes
	if bytes > 0 {
		i.calls++
	}
}

func (i *ioData) getCalls() int {
	return i.calls
}

func (i *ioData) getByteCount() int {
	return i.bytes
}

// Stats counts the work done by one parse.
type Stats struct {
	Reads   int // source reads that returned data
	Bytes   int // bytes read from the source
	Chars   int // runes consumed by the tokenizer
	Rows    int // rows returned to the caller
	Skipped int // rows discarded by StartAtLine
}

// Add returns the sum of s and other.
func (s Stats) Add(other Stats) Stats {
	return Stats{
		Reads:   s.Reads + other.Reads,
		Bytes:   s.Bytes + other.Bytes,
		Chars:   s.Chars + other.Chars,
		Rows:    s.Rows + other.Rows,
		Skipped: s.Skipped + other.Skipped,
	}
}
