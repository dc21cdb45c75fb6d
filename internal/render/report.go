package render

import (
	"errors"
	"fmt"

	"github.com/shepmaster/avr-intel-hex-tool/internal/image"
	"github.com/shepmaster/avr-intel-hex-tool/internal/record"
	"github.com/shepmaster/avr-intel-hex-tool/internal/scan"
)

// Report is the format-neutral view of a decoded document.
type Report struct {
	Source  string   `json:"source,omitempty"`
	Records []Entry  `json:"records"`
	Errors  []Issue  `json:"errors,omitempty"`
	Image   *Summary `json:"image,omitempty"`
}

// Entry is one decoded record. Data is upper-case hex.
type Entry struct {
	Line    int    `json:"line,omitempty"`
	Type    string `json:"type"`
	Address uint16 `json:"address"`
	Length  int    `json:"length"`
	Data    string `json:"data,omitempty"`
}

// Issue is one failed line.
type Issue struct {
	Line    int    `json:"line,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Summary describes the assembled memory image.
type Summary struct {
	Low      uint32         `json:"low"`
	High     uint32         `json:"high"`
	Size     int            `json:"size"`
	Segments []SegmentEntry `json:"segments"`
	Digest   string         `json:"blake3"`
}

// SegmentEntry is one contiguous run of the image.
type SegmentEntry struct {
	Address uint32 `json:"address"`
	Length  int    `json:"length"`
}

// EntryFor converts a record, tagging it with its input line when known.
func EntryFor(line int, rec record.Record) Entry {
	e := Entry{Line: line, Type: rec.Type.String()}
	if !rec.IsEOF() {
		e.Address = rec.Address
		e.Length = len(rec.Data)
		e.Data = fmt.Sprintf("%X", rec.Data)
	}
	return e
}

// IssueFor converts a decode or read error.
func IssueFor(err error) Issue {
	issue := Issue{Kind: record.KindOf(err).String(), Message: err.Error()}
	var lineErr *scan.LineError
	if errors.As(err, &lineErr) {
		issue.Line = lineErr.Line
		issue.Message = lineErr.Err.Error()
	}
	return issue
}

// SummaryFor describes m, padding holes with padding for the digest.
func SummaryFor(m *image.Memory, padding byte) *Summary {
	lo, hi := m.Bounds()
	s := &Summary{
		Low:      lo,
		High:     hi,
		Size:     m.Size(),
		Segments: []SegmentEntry{},
		Digest:   m.Digest(padding),
	}
	for _, seg := range m.Segments() {
		s.Segments = append(s.Segments, SegmentEntry{Address: seg.Address, Length: len(seg.Data)})
	}
	return s
}
