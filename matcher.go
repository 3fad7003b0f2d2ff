package csvreader

type matchResult int

const (
	matchPartial matchResult = iota
	matchComplete
	matchFailed
)

// matcher recognises one needle (a delimiter, qualifier or row marker) one
// rune at a time. It never looks ahead: on a mismatch the runes it consumed
// are handed back through replay.
type matcher struct {
	needle  []rune
	matched int
}

func newMatcher(needle string) *matcher {
	return &matcher{needle: []rune(needle)}
}

func (m *matcher) starts(ch rune) bool {
	return m.needle[0] == ch
}

// begin records the first rune of the needle as matched and reports
// whether that already completes it.
func (m *matcher) begin() bool {
	m.matched = 1
	if m.complete() {
		m.matched = 0
		return true
	}
	return false
}

func (m *matcher) feed(ch rune) matchResult {
	if m.needle[m.matched] != ch {
		return matchFailed
	}
	m.matched++
	if m.complete() {
		m.matched = 0
		return matchComplete
	}
	return matchPartial
}

func (m *matcher) complete() bool {
	return m.matched == len(m.needle)
}

// replay returns the matched prefix and resets the matcher.
func (m *matcher) replay() []rune {
	prefix := m.needle[:m.matched]
	m.matched = 0
	return prefix
}

func (m *matcher) runes() []rune {
	return m.needle
}
