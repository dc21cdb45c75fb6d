package record

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Type is the record-type code carried in the fourth byte of a line.
type Type byte

const (
	TypeData                   Type = 0x00
	TypeEndOfFile              Type = 0x01
	TypeExtendedSegmentAddress Type = 0x02
	TypeStartSegmentAddress    Type = 0x03
	TypeExtendedLinearAddress  Type = 0x04
	TypeStartLinearAddress     Type = 0x05
)

var typeNames = map[Type]string{
	TypeData:                   "data",
	TypeEndOfFile:              "end_of_file",
	TypeExtendedSegmentAddress: "extended_segment_address",
	TypeStartSegmentAddress:    "start_segment_address",
	TypeExtendedLinearAddress:  "extended_linear_address",
	TypeStartLinearAddress:     "start_linear_address",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type_0x%02X", byte(t))
}

// Record is one decoded Intel HEX line. Only data and end-of-file records are
// produced; an end-of-file record always has a zero Address and nil Data.
type Record struct {
	Type    Type
	Address uint16
	Data    []byte
}

// IsEOF reports whether r marks the end of the encoded image.
func (r Record) IsEOF() bool {
	return r.Type == TypeEndOfFile
}

func (r Record) String() string {
	if r.IsEOF() {
		return "EndOfFile"
	}
	return fmt.Sprintf("Data{address: 0x%04X, data: %X}", r.Address, r.Data)
}

const (
	startCode = ':'
	// length, two address bytes, type and checksum
	minRawLen = 5
)

// Decode parses a single line, stripped of its line terminator, into a Record.
// Validation stages run in a fixed order and the first failure is returned.
func Decode(line string) (Record, error) {
	if len(line) == 0 || line[0] != startCode {
		return Record{}, ErrIncorrectInitialCharacter
	}
	digits := line[1:]
	if len(digits)%2 != 0 {
		return Record{}, ErrOddNumberOfBytes
	}
	raw := make([]byte, len(digits)/2)
	if _, err := hex.Decode(raw, []byte(digits)); err != nil {
		return Record{}, ErrNonHexData
	}
	if sum(raw) != 0 {
		return Record{}, ErrInvalidChecksum
	}
	if len(raw) < minRawLen {
		return Record{}, ErrIncompleteLine
	}

	length := raw[0]
	address := binary.BigEndian.Uint16(raw[1:3])
	kind := Type(raw[3])
	payload := raw[4 : len(raw)-1]
	if int(length) != len(payload) {
		return Record{}, ErrMismatchedDataLength
	}

	switch kind {
	case TypeData:
		data := make([]byte, len(payload))
		copy(data, payload)
		return Record{Type: TypeData, Address: address, Data: data}, nil
	case TypeEndOfFile:
		return Record{Type: TypeEndOfFile}, nil
	default:
		return Record{}, &UnsupportedTypeError{Type: kind}
	}
}

// Checksum returns the byte that makes the modulo-256 sum of b plus the
// checksum equal zero.
func Checksum(b []byte) byte {
	return -sum(b)
}

func sum(b []byte) byte {
	var s byte
	for _, v := range b {
		s += v
	}
	return s
}
