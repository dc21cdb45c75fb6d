package intelhex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/shepmaster/avr-intel-hex-tool/internal/image"
	internalopts "github.com/shepmaster/avr-intel-hex-tool/internal/options"
	"github.com/shepmaster/avr-intel-hex-tool/internal/record"
	"github.com/shepmaster/avr-intel-hex-tool/internal/render"
	"github.com/shepmaster/avr-intel-hex-tool/internal/scan"
)

type (
	Record    = record.Record
	Type      = record.Type
	Kind      = record.Kind
	LineError = scan.LineError
	Segment   = image.Segment
	Memory    = image.Memory
)

const (
	TypeData      = record.TypeData
	TypeEndOfFile = record.TypeEndOfFile
)

var (
	ErrIncorrectInitialCharacter = record.ErrIncorrectInitialCharacter
	ErrOddNumberOfBytes          = record.ErrOddNumberOfBytes
	ErrNonHexData                = record.ErrNonHexData
	ErrInvalidChecksum           = record.ErrInvalidChecksum
	ErrIncompleteLine            = record.ErrIncompleteLine
	ErrMismatchedDataLength      = record.ErrMismatchedDataLength
	ErrUnsupportedRecordType     = record.ErrUnsupportedRecordType
)

// Result captures the outcome of Decode.
type Result struct {
	Records []Record
	// Lines holds the 1-based input line of each entry in Records.
	Lines  []int
	Errors []error
	Image  *Memory

	padding byte
}

// Report converts the result into the format-neutral render view.
func (r Result) Report(source string) render.Report {
	rep := render.Report{Source: source, Records: make([]render.Entry, 0, len(r.Records))}
	for i, rec := range r.Records {
		line := 0
		if i < len(r.Lines) {
			line = r.Lines[i]
		}
		rep.Records = append(rep.Records, render.EntryFor(line, rec))
	}
	for _, err := range r.Errors {
		rep.Errors = append(rep.Errors, render.IssueFor(err))
	}
	if r.Image != nil {
		rep.Image = render.SummaryFor(r.Image, r.padding)
	}
	return rep
}

// String renders a human-readable representation of the result.
func (r Result) String() string {
	var b strings.Builder
	if err := (render.JSON{}).Render(&b, r.Report("")); err != nil {
		return fmt.Sprintf("records:%d errors:%d (marshal error: %v)", len(r.Records), len(r.Errors), err)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// DecodeLine decodes a single line without its terminator.
func DecodeLine(line string) (Record, error) {
	return record.Decode(line)
}

// KindOf classifies an error returned by this package.
func KindOf(err error) Kind {
	return record.KindOf(err)
}

// Records lazily decodes r. Each step yields a record or a *LineError; break
// out of the loop to stop early.
func Records(r io.Reader, opts Options) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for line, err := range scan.Lines(r, opts.scanOptions(nil)) {
			if !yield(line.Record, err) {
				return
			}
		}
	}
}

// Decode reads a whole document. In fail-fast mode the first bad line is
// returned as a *LineError; in collect-all mode per-line failures are kept in
// Result.Errors and the returned error is nil unless the image cannot be built.
// Fail-fast decoding with more than one worker reads the whole document first
// and decodes its lines concurrently; the result is the same.
func Decode(ctx context.Context, r io.Reader, opts Options) (Result, error) {
	cfg, err := opts.toInternal()
	if err != nil {
		return Result{}, err
	}
	log := internalopts.Logger(ctx)

	result := Result{padding: cfg.padding}
	if cfg.mode == internalopts.FailFast && opts.Workers > 1 {
		err = decodeParallel(ctx, r, opts, log, &result)
	} else {
		err = decodeSequential(ctx, r, opts, cfg.mode, log, &result)
	}
	if err != nil {
		return result, err
	}
	if log != nil {
		log.WithField("records", len(result.Records)).WithField("errors", len(result.Errors)).Debug("document decoded")
	}

	if opts.BuildImage {
		mem, err := image.Build(result.Records)
		if err != nil {
			return result, fmt.Errorf("build image: %w", err)
		}
		result.Image = mem
	}
	return result, nil
}

func decodeSequential(ctx context.Context, r io.Reader, opts Options, mode internalopts.Mode, log logrus.FieldLogger, result *Result) error {
	for line, err := range scan.Lines(r, opts.scanOptions(log)) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if mode == internalopts.FailFast {
				return err
			}
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Records = append(result.Records, line.Record)
		result.Lines = append(result.Lines, line.Number)
	}
	return nil
}

func decodeParallel(ctx context.Context, r io.Reader, opts Options, log logrus.FieldLogger, result *Result) error {
	text, err := scan.ReadAll(r)
	if err != nil {
		return err
	}
	lines, err := scan.Parallel(ctx, text, opts.Workers, opts.scanOptions(log))
	if err != nil {
		return err
	}
	for _, line := range lines {
		result.Records = append(result.Records, line.Record)
		result.Lines = append(result.Lines, line.Number)
	}
	return nil
}

// DecodeString is Decode over an in-memory document.
func DecodeString(ctx context.Context, doc string, opts Options) (Result, error) {
	return Decode(ctx, strings.NewReader(doc), opts)
}

// FirstLine returns the 1-based line carried by err, or 0 when err has none.
func FirstLine(err error) int {
	var lineErr *LineError
	if errors.As(err, &lineErr) {
		return lineErr.Line
	}
	return 0
}
