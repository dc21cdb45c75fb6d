package image

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/shepmaster/avr-intel-hex-tool/internal/record"
	"github.com/shepmaster/avr-intel-hex-tool/internal/scan"
	"github.com/shepmaster/avr-intel-hex-tool/internal/testutil"
)

func TestAddMergesNeighbours(t *testing.T) {
	m := New()
	require.NoError(t, m.Add(0x10, []byte{3, 4}))
	require.NoError(t, m.Add(0x20, []byte{9}))
	require.NoError(t, m.Add(0x0E, []byte{1, 2}))
	require.NoError(t, m.Add(0x12, []byte{5, 6, 7, 8}))
	require.NoError(t, m.Add(0x16, make([]byte, 0x0A)))

	segs := m.Segments()
	require.Len(t, segs, 1)
	require.Equal(t, uint32(0x0E), segs[0].Address)
	require.Equal(t, uint32(0x21), segs[0].End())
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, segs[0].Data[:8])
	require.Equal(t, 0x21-0x0E, m.Size())
}

func TestAddKeepsGapsSorted(t *testing.T) {
	m := New()
	require.NoError(t, m.Add(0x300, []byte{3}))
	require.NoError(t, m.Add(0x100, []byte{1}))
	require.NoError(t, m.Add(0x200, []byte{2}))
	segs := m.Segments()
	require.Len(t, segs, 3)
	require.Equal(t, []uint32{0x100, 0x200, 0x300}, []uint32{segs[0].Address, segs[1].Address, segs[2].Address})
}

func TestAddOverlap(t *testing.T) {
	m := New()
	require.NoError(t, m.Add(0x10, []byte{1, 2, 3, 4}))
	require.ErrorIs(t, m.Add(0x12, []byte{9}), ErrOverlap)
	require.ErrorIs(t, m.Add(0x0E, []byte{9, 9, 9}), ErrOverlap)
	require.ErrorIs(t, m.Add(0x08, make([]byte, 0x20)), ErrOverlap)
	require.NoError(t, m.Add(0x14, []byte{5}))
	require.NoError(t, m.Add(0x12, nil))
}

func TestSegmentsAreCopies(t *testing.T) {
	m := New()
	src := []byte{1, 2}
	require.NoError(t, m.Add(0, src))
	src[0] = 0xFF
	segs := m.Segments()
	segs[0].Data[1] = 0xFF
	require.Equal(t, []byte{1, 2}, m.Segments()[0].Data)
}

func TestBuildBlink(t *testing.T) {
	doc := testutil.LoadHex(t, "intelhex/blink.hex")
	records, err := scan.DecodeAll(scan.Lines(strings.NewReader(doc), scan.Options{}))
	require.NoError(t, err)

	m, err := Build(records)
	require.NoError(t, err)
	segs := m.Segments()
	require.Len(t, segs, 2)
	require.Equal(t, uint32(0x0000), segs[0].Address)
	require.Len(t, segs[0].Data, 0x24)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, segs[0].Data[0x20:])
	require.Equal(t, uint32(0x0100), segs[1].Address)
	require.Equal(t, 0x26, m.Size())

	lo, hi := m.Bounds()
	require.Equal(t, uint32(0), lo)
	require.Equal(t, uint32(0x102), hi)
}

func TestBuildErrors(t *testing.T) {
	data := record.Record{Type: record.TypeData, Address: 0x10, Data: []byte{1}}
	eof := record.Record{Type: record.TypeEndOfFile}

	_, err := Build([]record.Record{data})
	require.ErrorIs(t, err, ErrMissingEOF)

	_, err = Build([]record.Record{eof, data})
	require.ErrorIs(t, err, ErrDataAfterEOF)

	_, err = Build([]record.Record{data, data, eof})
	require.ErrorIs(t, err, ErrOverlap)
	require.Contains(t, err.Error(), "record 2")

	_, err = Build([]record.Record{{Type: record.TypeStartLinearAddress}, eof})
	require.ErrorIs(t, err, record.ErrUnsupportedRecordType)

	m, err := Build([]record.Record{eof})
	require.NoError(t, err)
	require.Equal(t, 0, m.Size())
}

func TestToBinary(t *testing.T) {
	m := New()
	require.NoError(t, m.Add(0x02, []byte{0xA, 0xB}))
	require.NoError(t, m.Add(0x06, []byte{0xC}))
	require.Equal(t, []byte{0xFF, 0xFF, 0xA, 0xB, 0xFF, 0xFF, 0xC, 0xFF}, m.ToBinary(0, 8, 0xFF))
	require.Equal(t, []byte{0xB, 0x00, 0x00}, m.ToBinary(3, 3, 0x00))
	require.Empty(t, m.ToBinary(0, 0, 0xFF))
}

func TestDigest(t *testing.T) {
	m := New()
	require.NoError(t, m.Add(0x100, []byte{1, 2}))
	require.NoError(t, m.Add(0x104, []byte{3}))

	want := blake3.Sum256([]byte{1, 2, 0xFF, 0xFF, 3})
	require.Equal(t, hex.EncodeToString(want[:]), m.Digest(0xFF))
	require.NotEqual(t, m.Digest(0xFF), m.Digest(0x00))
	require.Len(t, New().Digest(0xFF), 64)
}
