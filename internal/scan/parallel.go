package scan

import (
	"context"
	"runtime"
	"sync"

	"github.com/shepmaster/avr-intel-hex-tool/internal/record"
)

// Parallel decodes lines on a pool of workers and then replays the results
// in input order, so the outcome matches DecodeAll over Lines with the same
// options: lines come back in order, the lowest failing line number wins,
// blank lines are skipped when asked and nothing past the first end-of-file
// record counts when StopAtEOF is set.
func Parallel(ctx context.Context, lines []string, workers int, opts Options) ([]Line, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(lines) {
		workers = len(lines)
	}

	records := make([]record.Record, len(lines))
	errs := make([]error, len(lines))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				records[i], errs[i] = record.Decode(lines[i])
			}
		}()
	}

	var ctxErr error
feed:
	for i := range lines {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if ctxErr != nil {
		return nil, ctxErr
	}

	log := opts.logger()
	out := make([]Line, 0, len(lines))
	for i, text := range lines {
		number := i + 1
		if text == "" && opts.SkipBlankLines {
			log.WithField("line", number).Debug("skipping blank line")
			continue
		}
		if errs[i] != nil {
			return nil, &LineError{Line: number, Text: text, Err: errs[i]}
		}
		out = append(out, Line{Number: number, Text: text, Record: records[i]})
		if records[i].IsEOF() && opts.StopAtEOF {
			log.WithField("line", number).Debug("stopping at end of file record")
			break
		}
	}
	return out, nil
}
