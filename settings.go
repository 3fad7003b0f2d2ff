package csvreader

import (
	"fmt"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

// DefaultChunkSize is the number of bytes read from the source at once. It
// keeps a chunk of decoded runes just under 85000 bytes of UTF-16.
const DefaultChunkSize = 84998

const (
	defaultDelimiter     = ","
	defaultTextQualifier = `"`
)

// Settings configures a Reader. Zero-valued fields take their default.
type Settings struct {
	// Delimiter separates the fields of a row. Default ",".
	Delimiter string

	// TextQualifier opens and closes a quoted field. Default `"`.
	TextQualifier string

	// EndOfRowMarker terminates a row. When empty, a row ends at "\n" or
	// "\r\n" and a lone "\r" is an error. When set, it fully replaces the
	// default rule.
	EndOfRowMarker string

	// StartAtLine is the number of leading rows discarded before any row is
	// returned.
	StartAtLine int

	// ChunkSize is the size in bytes of each read from the source.
	ChunkSize int

	// Logger receives debug and warning entries. Defaults to the logrus
	// standard logger.
	Logger log.FieldLogger
}

func DefaultSettings() Settings {
	return Settings{
		Delimiter:     defaultDelimiter,
		TextQualifier: defaultTextQualifier,
		ChunkSize:     DefaultChunkSize,
		Logger:        log.StandardLogger(),
	}
}

func (s Settings) withDefaults() Settings {
	defaults := DefaultSettings()
	if s.Delimiter == "" {
		s.Delimiter = defaults.Delimiter
	}
	if s.TextQualifier == "" {
		s.TextQualifier = defaults.TextQualifier
	}
	if s.ChunkSize == 0 {
		s.ChunkSize = defaults.ChunkSize
	}
	if s.Logger == nil {
		s.Logger = defaults.Logger
	}
	return s
}

func (s Settings) validate() error {
	if s.StartAtLine < 0 {
		return invalidSettings("start line %d is negative", s.StartAtLine)
	}
	if s.ChunkSize < 0 {
		return invalidSettings("chunk size %d is negative", s.ChunkSize)
	}
	needles := []struct {
		name  string
		value string
	}{
		{"delimiter", s.Delimiter},
		{"text qualifier", s.TextQualifier},
		{"end of row marker", s.EndOfRowMarker},
	}
	for _, needle := range needles {
		if !utf8.ValidString(needle.value) {
			return invalidSettings("%s %q is not valid UTF-8", needle.name, needle.value)
		}
	}
	if s.Delimiter == s.TextQualifier {
		return invalidSettings("delimiter and text qualifier are both %q", s.Delimiter)
	}
	if s.EndOfRowMarker == s.Delimiter || s.EndOfRowMarker == s.TextQualifier {
		return invalidSettings("end of row marker %q collides with another needle", s.EndOfRowMarker)
	}
	return s.validateLeadingRunes()
}

// validateLeadingRunes rejects needles that begin with the same rune. The
// tokenizer decides on the first rune which needle it is matching, so one of
// them would never be recognised. Without a row marker, "\n" and "\r" end
// rows and are reserved too.
func (s Settings) validateLeadingRunes() error {
	owners := map[rune]string{}
	claim := func(name string, ch rune) error {
		if other, ok := owners[ch]; ok {
			return invalidSettings("%s and %s both start with %q", other, name, ch)
		}
		owners[ch] = name
		return nil
	}

	if s.EndOfRowMarker == "" {
		owners[lineFeed] = "end of row"
		owners[carryReturn] = "end of row"
	} else if err := claim("end of row marker", firstRune(s.EndOfRowMarker)); err != nil {
		return err
	}
	if err := claim("delimiter", firstRune(s.Delimiter)); err != nil {
		return err
	}
	return claim("text qualifier", firstRune(s.TextQualifier))
}

func firstRune(needle string) rune {
	ch, _ := utf8.DecodeRuneInString(needle)
	return ch
}

func invalidSettings(message string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSettings, fmt.Sprintf(message, a...))
}
