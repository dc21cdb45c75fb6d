package intelhex

import (
	"github.com/sirupsen/logrus"

	internalopts "github.com/shepmaster/avr-intel-hex-tool/internal/options"
	"github.com/shepmaster/avr-intel-hex-tool/internal/scan"
)

// Options configures document decoding.
type Options struct {
	// Mode is "fail-fast" (default) or "collect-all".
	Mode           string
	SkipBlankLines bool
	StopAtEOF      bool
	// BuildImage assembles the data records into a Memory; the document must
	// then end with an end-of-file record.
	BuildImage bool
	// PaddingHex fills image holes when digesting, default "FF".
	PaddingHex string
	// Workers above 1 decode lines concurrently in fail-fast mode.
	Workers int
}

type config struct {
	mode    internalopts.Mode
	padding byte
}

func (opts Options) toInternal() (config, error) {
	mode, err := internalopts.ParseMode(opts.Mode)
	if err != nil {
		return config{}, err
	}
	padding, err := internalopts.ParsePadding(opts.PaddingHex)
	if err != nil {
		return config{}, err
	}
	return config{mode: mode, padding: padding}, nil
}

func (opts Options) scanOptions(log logrus.FieldLogger) scan.Options {
	return scan.Options{
		SkipBlankLines: opts.SkipBlankLines,
		StopAtEOF:      opts.StopAtEOF,
		Logger:         log,
	}
}
