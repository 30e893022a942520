// Package logfile reads simulator logs from disk, either whole or as a
// bounded window of lines for tail polling.
package logfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrInvalidRange is returned for a zero start line or an end before the start.
var ErrInvalidRange = errors.New("logfile: invalid line range")

const (
	defaultMaxLine = 16 << 20
	checkEvery     = 1024
)

type Reader struct {
	maxLine int
}

func New() *Reader {
	return &Reader{maxLine: defaultMaxLine}
}

// WithMaxLine caps the length of a single line; longer lines fail the read.
func (r *Reader) WithMaxLine(n int) *Reader {
	if n > 0 {
		r.maxLine = n
	}
	return r
}

func (r *Reader) ReadWhole(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadRange returns lines from through to (1-based, inclusive) joined by
// newlines. With reverse set, lines are counted from the end of the file,
// 1 being the last line, and come back newest-first. A window starting past
// the end of the file yields an empty string.
func (r *Reader) ReadRange(ctx context.Context, path string, from, to int, reverse bool) (string, error) {
	var (
		lines []string
		err   error
	)
	if reverse {
		lines, err = r.LinesFromEnd(ctx, path, from, to)
	} else {
		lines, err = r.Lines(ctx, path, from, to)
	}
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// Lines returns lines from through to counted from the start of the file.
func (r *Reader) Lines(ctx context.Context, path string, from, to int) ([]string, error) {
	if err := validRange(from, to); err != nil {
		return nil, err
	}
	lines := make([]string, 0)
	err := r.scan(ctx, path, func(n int, line string) bool {
		if n > to {
			return false
		}
		if n >= from {
			lines = append(lines, line)
		}
		return true
	})
	return lines, err
}

// LinesFromEnd returns lines from through to counted from the end of the
// file, newest first. Only the last `to` lines are kept in memory.
func (r *Reader) LinesFromEnd(ctx context.Context, path string, from, to int) ([]string, error) {
	if err := validRange(from, to); err != nil {
		return nil, err
	}
	ring := make([]string, to)
	total := 0
	err := r.scan(ctx, path, func(n int, line string) bool {
		ring[(n-1)%to] = line
		total = n
		return true
	})
	if err != nil {
		return nil, err
	}
	if from > total {
		return []string{}, nil
	}
	last := to
	if last > total {
		last = total
	}
	lines := make([]string, 0, last-from+1)
	for k := from; k <= last; k++ {
		n := total - k + 1
		lines = append(lines, ring[(n-1)%to])
	}
	return lines, nil
}

func (r *Reader) scan(ctx context.Context, path string, visit func(n int, line string) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return scanLines(ctx, f, r.maxLine, visit)
}

func scanLines(ctx context.Context, src io.Reader, maxLine int, visit func(n int, line string) bool) error {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, min(64*1024, maxLine)), maxLine)
	n := 0
	for sc.Scan() {
		n++
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if !visit(n, strings.TrimSuffix(sc.Text(), "\r")) {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("logfile: scan: %w", err)
	}
	return ctx.Err()
}

func validRange(from, to int) error {
	if from < 1 {
		return fmt.Errorf("%w: start line %d", ErrInvalidRange, from)
	}
	if to < from {
		return fmt.Errorf("%w: end line %d before start %d", ErrInvalidRange, to, from)
	}
	return nil
}
