package image

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/shepmaster/avr-intel-hex-tool/internal/record"
)

var (
	ErrOverlap      = errors.New("data segments overlap")
	ErrMissingEOF   = errors.New("no end of file record")
	ErrDataAfterEOF = errors.New("record after end of file")
)

// Segment is a contiguous run of bytes starting at Address.
type Segment struct {
	Address uint32
	Data    []byte
}

// End returns the first address past the segment.
func (s Segment) End() uint32 {
	return s.Address + uint32(len(s.Data))
}

// Memory is the sparse image described by a sequence of data records.
type Memory struct {
	segments []*Segment
}

// New returns an empty image.
func New() *Memory {
	return &Memory{}
}

// Build applies data records in order. The sequence must end with exactly
// one end-of-file record.
func Build(records []record.Record) (*Memory, error) {
	m := New()
	eof := false
	for i, rec := range records {
		if eof {
			return nil, fmt.Errorf("record %d: %w", i+1, ErrDataAfterEOF)
		}
		switch rec.Type {
		case record.TypeEndOfFile:
			eof = true
		case record.TypeData:
			if err := m.Add(uint32(rec.Address), rec.Data); err != nil {
				return nil, fmt.Errorf("record %d: %w", i+1, err)
			}
		default:
			return nil, fmt.Errorf("record %d: %w", i+1, &record.UnsupportedTypeError{Type: rec.Type})
		}
	}
	if !eof {
		return nil, ErrMissingEOF
	}
	return m, nil
}

// Add places data at addr, joining it with neighbouring segments.
func (m *Memory) Add(addr uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	end := addr + uint32(len(data))
	var before, after *Segment
	afterIndex := -1
	for i, s := range m.segments {
		if addr < s.End() && end > s.Address {
			return fmt.Errorf("%w at 0x%04X", ErrOverlap, max(addr, s.Address))
		}
		if addr == s.End() {
			before = s
		}
		if end == s.Address {
			after, afterIndex = s, i
		}
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	switch {
	case before != nil && after != nil:
		before.Data = append(before.Data, buf...)
		before.Data = append(before.Data, after.Data...)
		m.segments = append(m.segments[:afterIndex], m.segments[afterIndex+1:]...)
	case before != nil:
		before.Data = append(before.Data, buf...)
	case after != nil:
		after.Address = addr
		after.Data = append(buf, after.Data...)
	default:
		m.segments = append(m.segments, &Segment{Address: addr, Data: buf})
	}
	sort.Slice(m.segments, func(i, j int) bool {
		return m.segments[i].Address < m.segments[j].Address
	})
	return nil
}

// Segments returns a copy of the segments sorted by address.
func (m *Memory) Segments() []Segment {
	out := make([]Segment, 0, len(m.segments))
	for _, s := range m.segments {
		data := make([]byte, len(s.Data))
		copy(data, s.Data)
		out = append(out, Segment{Address: s.Address, Data: data})
	}
	return out
}

// Size is the number of bytes actually present in the image.
func (m *Memory) Size() int {
	n := 0
	for _, s := range m.segments {
		n += len(s.Data)
	}
	return n
}

// Bounds returns the lowest address and the first address past the highest
// byte. Both are zero for an empty image.
func (m *Memory) Bounds() (lo, hi uint32) {
	if len(m.segments) == 0 {
		return 0, 0
	}
	return m.segments[0].Address, m.segments[len(m.segments)-1].End()
}

// ToBinary flattens [addr, addr+size) into a byte slice, filling holes with
// padding.
func (m *Memory) ToBinary(addr, size uint32, padding byte) []byte {
	out := make([]byte, size)
	for i := range out {
		out[i] = padding
	}
	last := addr + size
	for _, s := range m.segments {
		if s.End() <= addr || s.Address >= last {
			continue
		}
		from := max(s.Address, addr)
		to := min(s.End(), last)
		copy(out[from-addr:to-addr], s.Data[from-s.Address:to-s.Address])
	}
	return out
}

// Digest returns the hex BLAKE3-256 sum of the image between its bounds,
// holes filled with padding.
func (m *Memory) Digest(padding byte) string {
	lo, hi := m.Bounds()
	sum := blake3.Sum256(m.ToBinary(lo, hi-lo, padding))
	return hex.EncodeToString(sum[:])
}
