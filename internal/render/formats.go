package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	Register(Text{})
	Register(JSON{})
	Register(Msgpack{})
	Register(newCBOR())
}

// Text prints one line per record, then errors and the image summary.
type Text struct{}

func (Text) Name() string { return "text" }

func (Text) Render(w io.Writer, r Report) error {
	ew := &errWriter{w: w}
	for _, e := range r.Records {
		if e.Type == "end_of_file" {
			ew.printf("line %-5d %-11s\n", e.Line, e.Type)
			continue
		}
		ew.printf("line %-5d %-11s 0x%04X %6s  %s\n", e.Line, e.Type, e.Address, humanize.Bytes(uint64(e.Length)), e.Data)
	}
	for _, issue := range r.Errors {
		ew.printf("error line %d: %s: %s\n", issue.Line, issue.Kind, issue.Message)
	}
	if s := r.Image; s != nil {
		ew.printf("image 0x%04X-0x%04X %s in %d segment(s)\n", s.Low, s.High, humanize.Bytes(uint64(s.Size)), len(s.Segments))
		for _, seg := range s.Segments {
			ew.printf("  segment 0x%04X %s\n", seg.Address, humanize.Bytes(uint64(seg.Length)))
		}
		ew.printf("  blake3 %s\n", s.Digest)
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// JSON writes the report as indented JSON.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Render(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Msgpack writes the report as MessagePack using the json field names.
type Msgpack struct{}

func (Msgpack) Name() string { return "msgpack" }

func (Msgpack) Render(w io.Writer, r Report) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	return enc.Encode(r)
}

// CBOR writes the report with core deterministic encoding so equal reports
// produce identical bytes.
type CBOR struct {
	enc cbor.EncMode
}

func newCBOR() CBOR {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor enc mode: %v", err))
	}
	return CBOR{enc: em}
}

func (CBOR) Name() string { return "cbor" }

func (c CBOR) Render(w io.Writer, r Report) error {
	return c.enc.NewEncoder(w).Encode(r)
}
