package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kozaktomas/fingerprint-attendance/internal/enrollment"
)

// lineReader reads operator input line by line without blocking
// cancellation: a pending read returns as soon as ctx is done.
type lineReader struct {
	lines chan string
	stop  chan struct{}
	err   error
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{
		lines: make(chan string),
		stop:  make(chan struct{}),
	}
	go func() {
		defer close(lr.lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lr.lines <- scanner.Text():
			case <-lr.stop:
				return
			}
		}
		lr.err = scanner.Err()
	}()
	return lr
}

// ReadLine prints prompt to w and returns the next trimmed line.
// io.EOF is returned once the input is exhausted.
func (lr *lineReader) ReadLine(ctx context.Context, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-lr.lines:
		if !ok {
			if lr.err != nil {
				return "", lr.err
			}
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

// Close releases the reading goroutine. Input already buffered is dropped.
func (lr *lineReader) Close() {
	close(lr.stop)
}

// promptedName asks for the name of a person once their finger is known to be new.
func promptedName(lr *lineReader, w io.Writer) enrollment.NameSource {
	return func(ctx context.Context) (string, error) {
		name, err := lr.ReadLine(ctx, w, "Enter name: ")
		if err != nil {
			return "", fmt.Errorf("read name: %w", err)
		}
		return name, nil
	}
}

func confirmAction(ctx context.Context, prompt string) bool {
	lr := newLineReader(os.Stdin)
	defer lr.Close()
	response, _ := lr.ReadLine(ctx, os.Stdout, prompt)
	response = strings.ToLower(response)
	return response == "y" || response == "yes"
}
