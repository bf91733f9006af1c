package session

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

// DefaultMaxLineBytes caps a single input line.
const DefaultMaxLineBytes = 1 << 20

// ErrLineTooLong is returned for a line over the cap. The rest of that line
// is discarded and reading continues with the next one.
var ErrLineTooLong = errors.New("input line too long")

type readResult struct {
	line string
	err  error
}

// lineReader feeds lines from r through a channel so a blocked read never
// keeps the session from noticing cancellation.
type lineReader struct {
	once    sync.Once
	stopped sync.Once
	src     io.Reader
	max     int
	lines   chan readResult
	done    chan struct{}
}

func newLineReader(r io.Reader, max int) *lineReader {
	if max <= 0 {
		max = DefaultMaxLineBytes
	}
	return &lineReader{src: r, max: max, lines: make(chan readResult), done: make(chan struct{})}
}

func (l *lineReader) start() {
	go func() {
		defer close(l.lines)
		br := bufio.NewReader(l.src)
		for {
			line, err := readLine(br, l.max)
			if err != nil && !errors.Is(err, ErrLineTooLong) {
				if !errors.Is(err, io.EOF) {
					l.send(readResult{err: err})
				}
				return
			}
			if !l.send(readResult{line: line, err: err}) {
				return
			}
		}
	}()
}

func (l *lineReader) send(r readResult) bool {
	select {
	case l.lines <- r:
		return true
	case <-l.done:
		return false
	}
}

// stop releases the reader goroutine once it next tries to deliver a line.
func (l *lineReader) stop() {
	l.stopped.Do(func() { close(l.done) })
}

// ReadLine returns the next line, io.EOF at end of input, ErrLineTooLong
// for an oversized line, or ctx.Err().
func (l *lineReader) ReadLine(ctx context.Context) (string, error) {
	l.once.Do(l.start)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-l.lines:
		if !ok {
			return "", io.EOF
		}
		return r.line, r.err
	}
}

// readLine reads up to the next newline. A final line without a newline is
// returned as is; io.EOF is only returned when nothing was read.
func readLine(br *bufio.Reader, max int) (string, error) {
	var buf []byte
	tooLong := false
	read := false
	for {
		chunk, err := br.ReadSlice('\n')
		read = read || len(chunk) > 0
		if !tooLong {
			if len(buf)+len(bytes.TrimRight(chunk, "\r\n")) > max {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && (!errors.Is(err, io.EOF) || !read) {
			return "", err
		}
		if tooLong {
			return "", ErrLineTooLong
		}
		return string(bytes.TrimRight(buf, "\r\n")), nil
	}
}
