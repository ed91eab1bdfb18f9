// Package chainlog implements the compressed append-only record log,
// the durable source of truth for the audit trail.
//
// Each append writes one newline-terminated line as a self-contained
// gzip member; members concatenate into a single valid gzip stream, so
// the file can be read back with any standard gzip reader. Existing
// content is never read, rewritten, or truncated by the writer.
package chainlog

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

// Log is an append-only handle on the compressed log file.
// It is not safe for concurrent use; the coordinator serializes writers.
type Log struct {
	path string
	f    *os.File
}

// Open creates or opens the log file for appending.
// The file is opened write-only with O_APPEND so existing content can
// never be overwritten through this handle.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open append log: %w", err)
	}
	return &Log{path: path, f: f}, nil
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// AppendLine appends one record line to the log. The line must not
// contain a newline; the terminator is added here. The write is a
// single gzip member, flushed in full before returning, so a nil error
// means the record landed completely.
func (l *Log) AppendLine(line []byte) error {
	if bytes.IndexByte(line, '\n') >= 0 {
		return fmt.Errorf("append log: record contains newline")
	}

	zw := gzip.NewWriter(l.f)
	if _, err := zw.Write(line); err != nil {
		zw.Close()
		return fmt.Errorf("append log: write record: %w", err)
	}
	if _, err := zw.Write([]byte{'\n'}); err != nil {
		zw.Close()
		return fmt.Errorf("append log: write terminator: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("append log: flush member: %w", err)
	}
	return nil
}

// Close releases the file handle. The log can be reopened with Open;
// appends resume after the existing content.
func (l *Log) Close() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// Scan reads the log at path from the beginning, calling fn once per
// record line (without the trailing newline). Used by verification and
// repair only; query paths never touch the log.
//
// Returns fs.ErrNotExist (wrapped) if the log has never been written.
func Scan(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("scan append log: %w", err)
	}
	defer f.Close()

	// The file exists but nothing was ever appended.
	if info, serr := f.Stat(); serr == nil && info.Size() == 0 {
		return nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("scan append log: open gzip stream: %w", err)
	}
	defer zr.Close()

	// bufio.Reader instead of Scanner: record lines are unbounded.
	r := bufio.NewReader(zr)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimSuffix(line, []byte{'\n'})
			if ferr := fn(line); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("scan append log: read: %w", err)
		}
	}
}
