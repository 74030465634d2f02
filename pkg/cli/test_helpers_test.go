package cli

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureStdout swaps os.Stdout for a pipe until the returned function is
// called; it restores stdout and hands back everything the command wrote.
// A draining goroutine keeps large outputs from blocking on the pipe
// buffer, and t.Cleanup restores stdout even when the test bails early.
func captureStdout(t *testing.T) func() string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	t.Cleanup(func() {
		os.Stdout = orig
		_ = w.Close()
	})

	outc := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outc <- buf.String()
	}()

	return func() string {
		_ = w.Close()
		os.Stdout = orig
		return <-outc
	}
}
