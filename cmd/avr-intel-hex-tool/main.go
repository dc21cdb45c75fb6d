package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	internalopts "github.com/shepmaster/avr-intel-hex-tool/internal/options"
	"github.com/shepmaster/avr-intel-hex-tool/internal/render"
	"github.com/shepmaster/avr-intel-hex-tool/pkg/intelhex"
)

var (
	rootCmd = &cobra.Command{
		Use:   "avr-intel-hex-tool [file]",
		Short: "Decode and validate Intel HEX files",
		Long:  "avr-intel-hex-tool decodes Intel HEX records line by line and reports the first (or every) invalid line.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			renderer, err := lookupRenderer(format)
			if err != nil {
				return err
			}
			ctx := internalopts.WithLogger(cmd.Context(), logrus.StandardLogger())
			if len(args) == 0 {
				return runInteractive(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			}
			return runDecode(ctx, cmd.OutOrStdout(), renderer, args[0])
		},
	}

	format     string
	mode       string
	skipBlank  bool
	stopAtEOF  bool
	buildImage bool
	padding    string
	workers    int
	verbose    bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&format, "format", "text", "output format (text, json, msgpack, cbor)")
	flags.StringVar(&mode, "mode", "fail-fast", "fail-fast stops at the first bad line, collect-all reports every line")
	flags.BoolVar(&skipBlank, "skip-blank", false, "ignore empty lines instead of rejecting them")
	flags.BoolVar(&stopAtEOF, "stop-at-eof", false, "stop reading after the first end-of-file record")
	flags.BoolVar(&buildImage, "image", false, "assemble data records into a memory image and print its segments and digest")
	flags.StringVar(&padding, "padding", "FF", "hex byte used for image holes when computing the digest")
	flags.IntVar(&workers, "workers", 0, "decode lines on this many goroutines in fail-fast mode (0 or 1 decodes sequentially)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(os.Stderr)
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Fatal(err)
	}
}

func lookupRenderer(name string) (render.Renderer, error) {
	name, err := internalopts.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return render.Lookup(name)
}

func runDecode(ctx context.Context, out io.Writer, renderer render.Renderer, path string) error {
	in, source, err := openInput(path)
	if err != nil {
		return err
	}
	defer in.Close()

	opts := intelhex.Options{
		Mode:           mode,
		SkipBlankLines: skipBlank,
		StopAtEOF:      stopAtEOF,
		BuildImage:     buildImage,
		PaddingHex:     padding,
		Workers:        workers,
	}
	result, err := intelhex.Decode(ctx, in, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	if err := renderer.Render(out, result.Report(source)); err != nil {
		return fmt.Errorf("render %s: %w", renderer.Name(), err)
	}
	if n := len(result.Errors); n > 0 {
		return fmt.Errorf("%s: %d invalid line(s)", source, n)
	}
	return nil
}

func openInput(path string) (io.ReadCloser, string, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open input: %w", err)
	}
	return f, filepath.Base(path), nil
}

func runInteractive(ctx context.Context, in io.Reader, out io.Writer) error {
	log := internalopts.Logger(ctx)
	if log == nil {
		log = logrus.StandardLogger()
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), math.MaxInt)
	log.Info("avr-intel-hex-tool interactive mode. Paste an Intel HEX line and press Enter (Ctrl+D to exit).")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := intelhex.DecodeLine(line)
		if err != nil {
			log.WithError(err).WithField("kind", intelhex.KindOf(err)).Error("failed to decode record")
			continue
		}
		fmt.Fprintln(out, rec.String())
	}
	return scanner.Err()
}
