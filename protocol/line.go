package protocol

// LineEditor assembles received bytes into command lines. It handles
// backspace/delete and terminates a line at CR, LF or when MaxChars is
// reached, the way a serial terminal user expects.
type LineEditor struct {
	buf  [MaxChars]byte
	n    int
	echo func(b byte)
}

// NewLineEditor creates a line editor. echo, if non-nil, receives each byte
// that should be echoed back to the terminal.
func NewLineEditor(echo func(b byte)) *LineEditor {
	return &LineEditor{echo: echo}
}

// Push feeds one byte. It returns the completed line and true when a line
// ends; empty lines are swallowed.
func (e *LineEditor) Push(b byte) (string, bool) {
	switch {
	case b == KeyBackspace || b == KeyDelete:
		if e.n > 0 {
			e.n--
			e.emit(b)
		}
		return "", false
	case b == KeyCR || b == KeyLF:
		return e.finish()
	case b < ' ':
		return "", false
	}

	e.buf[e.n] = b
	e.n++
	e.emit(b)
	if e.n == MaxChars {
		return e.finish()
	}
	return "", false
}

// Pending returns the number of buffered characters
func (e *LineEditor) Pending() int {
	return e.n
}

// Reset discards the partial line
func (e *LineEditor) Reset() {
	e.n = 0
}

func (e *LineEditor) finish() (string, bool) {
	if e.n == 0 {
		return "", false
	}
	line := string(e.buf[:e.n])
	e.n = 0
	return line, true
}

func (e *LineEditor) emit(b byte) {
	if e.echo != nil {
		e.echo(b)
	}
}
