package csvreader

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

type tokenizerState string

const (
	tokenizerUndeterminedData          tokenizerState = "UNDETERMINED_DATA"
	tokenizerUnquotedField             tokenizerState = "UNQUOTED_FIELD"
	tokenizerQuotedField               tokenizerState = "QUOTED_FIELD"
	tokenizerQuotedFieldAfterQualifier tokenizerState = "QUOTED_FIELD_AFTER_QUALIFIER"
	tokenizerPendingCR                 tokenizerState = "PENDING_CR"
	tokenizerMatchingDelimiter         tokenizerState = "MATCHING_DELIMITER"
	tokenizerMatchingRowMarker         tokenizerState = "MATCHING_ROW_MARKER"
	tokenizerMatchingOpenQualifier     tokenizerState = "MATCHING_OPEN_QUALIFIER"
	tokenizerMatchingCloseQualifier    tokenizerState = "MATCHING_CLOSE_QUALIFIER"
	tokenizerMatchingEscapeQualifier   tokenizerState = "MATCHING_ESCAPE_QUALIFIER"
)

const (
	carryReturn = '\r'
	lineFeed    = '\n'
)

type action int

const (
	actionContinue action = iota
	actionFieldComplete
	actionRowComplete
)

type tokenizer struct {
	delimiter   *matcher
	qualifier   *matcher
	rowMarker   *matcher // nil when rows end at "\n" or "\r\n"
	startAtLine int
	log         log.FieldLogger

	state  tokenizerState
	origin tokenizerState // base state a failed partial match returns to
	active *matcher

	field   []rune
	row     []string
	lines   int
	offset  int
	rows    int
	skipped int
}

func newTokenizer(r *Reader) *tokenizer {
	tokenizer := new(tokenizer)
	tokenizer.delimiter = newMatcher(r.delimiter)
	tokenizer.qualifier = newMatcher(r.qualifier)
	if r.rowMarker != "" {
		tokenizer.rowMarker = newMatcher(r.rowMarker)
	}
	tokenizer.startAtLine = r.startAtLine
	tokenizer.log = r.log
	tokenizer.state = tokenizerUndeterminedData
	return tokenizer
}

// consume feeds one rune and returns the row it completes, if any. Rows
// before StartAtLine complete without being returned.
func (tokenizer *tokenizer) consume(ch rune) ([]string, error) {
	tokenizer.offset++
	next, err := tokenizer.step(ch)
	if err != nil {
		return nil, err
	}
	switch next {
	case actionFieldComplete:
		tokenizer.completeField()
	case actionRowComplete:
		tokenizer.completeField()
		return tokenizer.completeRow(), nil
	}
	return nil, nil
}

func (tokenizer *tokenizer) step(ch rune) (action, error) {
	switch tokenizer.state {
	case tokenizerUndeterminedData:
		if tokenizer.qualifier.starts(ch) {
			tokenizer.beginQualifier(tokenizerQuotedField, tokenizerMatchingOpenQualifier, tokenizerUnquotedField)
			return actionContinue, nil
		}
		tokenizer.state = tokenizerUnquotedField
		return tokenizer.step(ch)
	case tokenizerUnquotedField:
		if next, ok := tokenizer.boundary(ch, tokenizerUnquotedField); ok {
			return next, nil
		}
		tokenizer.append(ch)
		return actionContinue, nil
	case tokenizerQuotedField:
		if tokenizer.qualifier.starts(ch) {
			tokenizer.beginQualifier(tokenizerQuotedFieldAfterQualifier, tokenizerMatchingCloseQualifier, tokenizerQuotedField)
			return actionContinue, nil
		}
		tokenizer.append(ch)
		return actionContinue, nil
	case tokenizerQuotedFieldAfterQualifier:
		if tokenizer.qualifier.starts(ch) {
			if tokenizer.qualifier.begin() {
				tokenizer.append(tokenizer.qualifier.runes()...)
				tokenizer.state = tokenizerQuotedField
			} else {
				tokenizer.match(tokenizer.qualifier, tokenizerMatchingEscapeQualifier, tokenizerQuotedField)
			}
			return actionContinue, nil
		}
		if next, ok := tokenizer.boundary(ch, tokenizerQuotedField); ok {
			return next, nil
		}
		return actionContinue, tokenizer.malformedField(ch)
	case tokenizerPendingCR:
		if ch != lineFeed {
			return actionContinue, tokenizer.malformedRow(ch)
		}
		tokenizer.state = tokenizerUndeterminedData
		return actionRowComplete, nil
	case tokenizerMatchingDelimiter,
		tokenizerMatchingRowMarker,
		tokenizerMatchingOpenQualifier,
		tokenizerMatchingCloseQualifier,
		tokenizerMatchingEscapeQualifier:
		switch tokenizer.active.feed(ch) {
		case matchPartial:
			return actionContinue, nil
		case matchComplete:
			return tokenizer.matched(), nil
		}
		if tokenizer.state == tokenizerMatchingEscapeQualifier {
			return actionContinue, tokenizer.malformedField(ch)
		}
		// The mismatching rune is not re-examined as the start of a needle.
		tokenizer.append(tokenizer.active.replay()...)
		tokenizer.append(ch)
		tokenizer.state = tokenizer.origin
		tokenizer.active = nil
		return actionContinue, nil
	default:
		panic(fmt.Errorf("Invalid tokenizer state %v", tokenizer.state))
	}
}

// boundary checks ch against the delimiter and the row marker. It reports
// false when ch starts neither.
func (tokenizer *tokenizer) boundary(ch rune, origin tokenizerState) (action, bool) {
	if tokenizer.delimiter.starts(ch) {
		if tokenizer.delimiter.begin() {
			tokenizer.state = tokenizerUndeterminedData
			return actionFieldComplete, true
		}
		tokenizer.match(tokenizer.delimiter, tokenizerMatchingDelimiter, origin)
		return actionContinue, true
	}

	if tokenizer.rowMarker == nil {
		switch ch {
		case lineFeed:
			tokenizer.state = tokenizerUndeterminedData
			return actionRowComplete, true
		case carryReturn:
			tokenizer.state = tokenizerPendingCR
			return actionContinue, true
		}
		return actionContinue, false
	}

	if tokenizer.rowMarker.starts(ch) {
		if tokenizer.rowMarker.begin() {
			tokenizer.state = tokenizerUndeterminedData
			return actionRowComplete, true
		}
		tokenizer.match(tokenizer.rowMarker, tokenizerMatchingRowMarker, origin)
		return actionContinue, true
	}
	return actionContinue, false
}

func (tokenizer *tokenizer) beginQualifier(done, matching, origin tokenizerState) {
	if tokenizer.qualifier.begin() {
		tokenizer.state = done
		return
	}
	tokenizer.match(tokenizer.qualifier, matching, origin)
}

func (tokenizer *tokenizer) match(m *matcher, matching, origin tokenizerState) {
	tokenizer.active = m
	tokenizer.state = matching
	tokenizer.origin = origin
}

// matched moves on from a partial match state once its needle completed.
func (tokenizer *tokenizer) matched() action {
	state := tokenizer.state
	tokenizer.active = nil
	switch state {
	case tokenizerMatchingDelimiter:
		tokenizer.state = tokenizerUndeterminedData
		return actionFieldComplete
	case tokenizerMatchingRowMarker:
		tokenizer.state = tokenizerUndeterminedData
		return actionRowComplete
	case tokenizerMatchingOpenQualifier:
		tokenizer.state = tokenizerQuotedField
	case tokenizerMatchingCloseQualifier:
		tokenizer.state = tokenizerQuotedFieldAfterQualifier
	case tokenizerMatchingEscapeQualifier:
		tokenizer.append(tokenizer.qualifier.runes()...)
		tokenizer.state = tokenizerQuotedField
	}
	return actionContinue
}

// finish flushes the row in progress once the source is exhausted. The
// input does not need to end with a row marker. A field opened by a trailing
// delimiter is kept, so "a," yields ["a" ""] rather than ["a"].
func (tokenizer *tokenizer) finish() ([]string, error) {
	switch tokenizer.state {
	case tokenizerPendingCR:
		return nil, newUnterminatedRowError(tokenizer.line(), tokenizer.offset)
	case tokenizerMatchingEscapeQualifier:
		return nil, newUnterminatedEscapeError(tokenizer.line(), tokenizer.offset)
	case tokenizerMatchingDelimiter,
		tokenizerMatchingRowMarker,
		tokenizerMatchingOpenQualifier,
		tokenizerMatchingCloseQualifier:
		tokenizer.append(tokenizer.active.replay()...)
		tokenizer.state = tokenizer.origin
		tokenizer.active = nil
	}

	if tokenizer.state == tokenizerQuotedField {
		warn(tokenizer.log, "Input ends inside a quoted field", log.Fields{
			"line":   tokenizer.line(),
			"offset": tokenizer.offset,
		})
	}

	if tokenizer.state == tokenizerUndeterminedData && len(tokenizer.row) == 0 {
		return nil, nil
	}

	tokenizer.completeField()
	tokenizer.state = tokenizerUndeterminedData
	return tokenizer.completeRow(), nil
}

func (tokenizer *tokenizer) append(ch ...rune) {
	tokenizer.field = append(tokenizer.field, ch...)
}

func (tokenizer *tokenizer) completeField() {
	tokenizer.row = append(tokenizer.row, string(tokenizer.field))
	tokenizer.field = tokenizer.field[:0]
}

func (tokenizer *tokenizer) completeRow() []string {
	row := tokenizer.row
	tokenizer.row = nil
	line := tokenizer.lines
	tokenizer.lines++

	if line < tokenizer.startAtLine {
		tokenizer.skipped++
		debug(tokenizer.log, "Skipping row before start line", log.Fields{
			"line":   line + 1,
			"fields": len(row),
		})
		return nil
	}

	tokenizer.rows++
	return row
}

// line is the 1-based number of the row being parsed.
func (tokenizer *tokenizer) line() int {
	return tokenizer.lines + 1
}

func (tokenizer *tokenizer) malformedRow(ch rune) error {
	return newMalformedRowError(tokenizer.line(), tokenizer.offset, ch)
}

func (tokenizer *tokenizer) malformedField(ch rune) error {
	return newMalformedFieldError(tokenizer.line(), tokenizer.offset, ch)
}
