package session

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine_Lines(t *testing.T) {
	r := newLineReader(strings.NewReader("one\r\ntwo\n\nlast"), 0)
	ctx := context.Background()
	for _, want := range []string{"one", "two", "", "last"} {
		got, err := r.ReadLine(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadLine_LongerThanReaderBuffer(t *testing.T) {
	long := strings.Repeat("z", 10*4096+7)
	r := newLineReader(strings.NewReader(long+"\nnext\n"), 0)
	got, err := r.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, long, got)
}

func TestReadLine_OverCapKeepsReading(t *testing.T) {
	r := newLineReader(strings.NewReader(strings.Repeat("z", 10000)+"\nnext\n"), 100)
	_, err := r.ReadLine(context.Background())
	assert.ErrorIs(t, err, ErrLineTooLong)
	got, err := r.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "next", got)
}

func TestStop_ReleasesBlockedSender(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	go func() { _, _ = io.WriteString(pw, "a\nb\n") }()

	r := newLineReader(pr, 0)
	got, err := r.ReadLine(context.Background())
	require.NoError(t, err)
	require.Equal(t, "a", got)

	// The goroutine now waits to hand over "b" and the input stays open.
	r.stop()
	r.stop()
	time.Sleep(50 * time.Millisecond)

	select {
	case res, ok := <-r.lines:
		assert.False(t, ok, "goroutine should have exited instead of delivering %q", res.line)
	case <-time.After(time.Second):
		t.Fatal("reader goroutine still blocked after stop")
	}
}
