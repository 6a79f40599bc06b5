package protocol

import (
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// FieldType classifies a token the way the command layer needs it
type FieldType byte

const (
	FieldAlpha   FieldType = 'a'
	FieldNumeric FieldType = 'n'
)

// Field is one token of a command line
type Field struct {
	Text string
	Type FieldType
}

// Fields is a tokenized command line. Field 0 is the command word and
// arguments are addressed from 1, matching how commands are documented.
type Fields struct {
	fields []Field
}

// ParseFields splits a line into typed fields. ':' and ',' separate fields
// like spaces so "feed 0 10 50 07:30" and "time 7,30" parse naturally.
func ParseFields(line string) (*Fields, error) {
	line = strings.Map(func(r rune) rune {
		if r == ':' || r == ',' {
			return ' '
		}
		return r
	}, line)

	words, err := shlex.Split(line)
	if err != nil {
		return nil, err
	}
	if len(words) > MaxFields {
		words = words[:MaxFields]
	}

	f := &Fields{fields: make([]Field, 0, len(words))}
	for _, w := range words {
		typ := FieldAlpha
		if isNumeric(w) {
			typ = FieldNumeric
		}
		f.fields = append(f.fields, Field{Text: w, Type: typ})
	}
	return f, nil
}

// Count returns the number of fields including the command word
func (f *Fields) Count() int {
	return len(f.fields)
}

// Args returns the number of arguments after the command word
func (f *Fields) Args() int {
	if len(f.fields) == 0 {
		return 0
	}
	return len(f.fields) - 1
}

// Name returns the lower-cased command word
func (f *Fields) Name() string {
	if len(f.fields) == 0 {
		return ""
	}
	return strings.ToLower(f.fields[0].Text)
}

// IsCommand reports whether the line is name with exactly args arguments
func (f *Fields) IsCommand(name string, args int) bool {
	return f.Name() == strings.ToLower(name) && f.Args() == args
}

// Type returns the type of field i, or 0 when out of range
func (f *Fields) Type(i int) FieldType {
	if i < 0 || i >= len(f.fields) {
		return 0
	}
	return f.fields[i].Type
}

// String returns the text of field i, or "" when out of range
func (f *Fields) String(i int) string {
	if i < 0 || i >= len(f.fields) {
		return ""
	}
	return f.fields[i].Text
}

// Integer returns field i as an unsigned value. ok is false when the field
// is missing, not numeric, or does not fit in 32 bits.
func (f *Fields) Integer(i int) (uint32, bool) {
	if f.Type(i) != FieldNumeric {
		return 0, false
	}
	v, err := strconv.ParseUint(f.fields[i].Text, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
