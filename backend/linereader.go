package backend

import (
	"bufio"
	"errors"
	"io"
)

// lineReader is a specialized reader that ensures only entire newline-delimited lines are
// read at a time. This is useful when parsing a file that is being actively written to, as
// partial lines are held back until their terminating newline arrives. A line longer than
// the caller's buffer is handed out across several reads.
type lineReader struct {
	r *bufio.Reader
	// partial holds an unterminated trailing line seen before EOF.
	partial []byte
	// pending holds the unread remainder of a complete line.
	pending []byte
}

var _ io.Reader = (*lineReader)(nil)

func NewLineReader(r io.Reader) *lineReader {
	return &lineReader{
		r: bufio.NewReader(r),
	}
}

func (l *lineReader) Read(b []byte) (int, error) {
	if len(l.pending) == 0 {
		data, err := l.r.ReadBytes('\n')
		if err != nil {
			l.partial = append(l.partial, data...)
			if errors.Is(err, io.EOF) {
				return 0, io.EOF
			}
			return 0, err
		}
		l.pending = append(l.partial, data...)
		l.partial = nil
	}
	n := copy(b, l.pending)
	l.pending = l.pending[n:]
	return n, nil
}

// readLine returns the next complete line, including its newline.
func (l *lineReader) readLine(scratch []byte) ([]byte, error) {
	var line []byte
	for {
		n, err := l.Read(scratch)
		line = append(line, scratch[:n]...)
		if err != nil {
			return nil, err
		}
		if len(l.pending) == 0 && n > 0 && line[len(line)-1] == '\n' {
			return line, nil
		}
	}
}

// rest returns the unterminated trailing line held back at EOF and forgets it.
func (l *lineReader) rest() []byte {
	rest := l.partial
	l.partial = nil
	return rest
}
