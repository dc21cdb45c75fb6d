package scan

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/shepmaster/avr-intel-hex-tool/internal/record"
)

// Line is a successfully decoded input line.
type Line struct {
	Number int
	Text   string
	Record record.Record
}

// LineError ties a decode or read failure to its 1-based input line.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Options tune how lines are fed to the decoder.
type Options struct {
	// SkipBlankLines drops empty lines instead of reporting them as missing ':'.
	SkipBlankLines bool
	// StopAtEOF ends the sequence after the first end-of-file record.
	StopAtEOF bool
	// Logger receives debug output; nil discards it.
	Logger logrus.FieldLogger
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Lines decodes r lazily, one line per step. Every line is yielded either as
// a Line or as a *LineError; the caller decides whether to keep going. The
// sequence reads from r and can only be consumed once.
func Lines(r io.Reader, opts Options) iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		log := opts.logger()
		scanner := newScanner(r)
		number := 0
		for scanner.Scan() {
			number++
			text := scanner.Text()
			if text == "" && opts.SkipBlankLines {
				log.WithField("line", number).Debug("skipping blank line")
				continue
			}
			rec, err := record.Decode(text)
			if err != nil {
				log.WithFields(logrus.Fields{"line": number, "kind": record.KindOf(err)}).Debug("decode failed")
				if !yield(Line{}, &LineError{Line: number, Text: text, Err: err}) {
					return
				}
				continue
			}
			if !yield(Line{Number: number, Text: text, Record: rec}, nil) {
				return
			}
			if rec.IsEOF() && opts.StopAtEOF {
				log.WithField("line", number).Debug("stopping at end of file record")
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(Line{}, &LineError{Line: number, Err: fmt.Errorf("read input: %w", err)})
		}
	}
}

// ReadAll returns every line of r without its terminator. A read failure
// comes back as a *LineError carrying the last line read.
func ReadAll(r io.Reader) ([]string, error) {
	scanner := newScanner(r)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, &LineError{Line: len(lines), Err: fmt.Errorf("read input: %w", err)}
	}
	return lines, nil
}

// newScanner splits r into lines of any length; a record line is never
// rejected by the reader before Decode sees it.
func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), math.MaxInt)
	return scanner
}

// LinesFromString is Lines over an in-memory document. Unlike Lines, the
// returned sequence can be ranged over any number of times.
func LinesFromString(doc string, opts Options) iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		Lines(strings.NewReader(doc), opts)(yield)
	}
}

// DecodeAll collects every record in order and stops at the first error.
func DecodeAll(seq iter.Seq2[Line, error]) ([]record.Record, error) {
	var records []record.Record
	for line, err := range seq {
		if err != nil {
			return nil, err
		}
		records = append(records, line.Record)
	}
	return records, nil
}

// CollectAll walks the whole sequence, keeping every decoded line and every
// error in input order.
func CollectAll(seq iter.Seq2[Line, error]) ([]Line, []error) {
	var (
		lines []Line
		errs  []error
	)
	for line, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		lines = append(lines, line)
	}
	return lines, errs
}
