package record

import (
	"errors"
	"fmt"
)

var (
	ErrIncorrectInitialCharacter = errors.New("line does not start with ':'")
	ErrOddNumberOfBytes          = errors.New("odd number of hex digits after ':'")
	ErrNonHexData                = errors.New("non-hex data in line")
	ErrInvalidChecksum           = errors.New("invalid checksum")
	ErrIncompleteLine            = errors.New("incomplete line: fewer than 5 bytes")
	ErrMismatchedDataLength      = errors.New("declared data length does not match payload")
	ErrUnsupportedRecordType     = errors.New("unsupported record type")
)

// UnsupportedTypeError reports a well-formed line whose record type is neither
// data nor end-of-file.
type UnsupportedTypeError struct {
	Type Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s 0x%02X (%s)", ErrUnsupportedRecordType, byte(e.Type), e.Type)
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedRecordType
}

// Kind enumerates the decode failures, in the order they are checked.
type Kind int

const (
	KindNone Kind = iota
	KindIncorrectInitialCharacter
	KindOddNumberOfBytes
	KindNonHexData
	KindInvalidChecksum
	KindIncompleteLine
	KindMismatchedDataLength
	KindUnsupportedRecordType
)

var kindSentinels = []struct {
	kind Kind
	err  error
	name string
}{
	{KindIncorrectInitialCharacter, ErrIncorrectInitialCharacter, "IncorrectInitialCharacter"},
	{KindOddNumberOfBytes, ErrOddNumberOfBytes, "OddNumberOfBytes"},
	{KindNonHexData, ErrNonHexData, "NonHexData"},
	{KindInvalidChecksum, ErrInvalidChecksum, "InvalidChecksum"},
	{KindIncompleteLine, ErrIncompleteLine, "IncompleteLine"},
	{KindMismatchedDataLength, ErrMismatchedDataLength, "MismatchedDataLength"},
	{KindUnsupportedRecordType, ErrUnsupportedRecordType, "UnsupportedRecordType"},
}

// KindOf classifies err, looking through wrapping. Errors that did not come
// from Decode map to KindNone.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, s := range kindSentinels {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return KindNone
}

func (k Kind) String() string {
	for _, s := range kindSentinels {
		if s.kind == k {
			return s.name
		}
	}
	return "None"
}
