package intelhex

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	internalopts "github.com/shepmaster/avr-intel-hex-tool/internal/options"
	"github.com/shepmaster/avr-intel-hex-tool/internal/testutil"
)

func TestDecodeLine(t *testing.T) {
	rec, err := DecodeLine(":10010000214601360121470136007EFE09D2190140")
	require.NoError(t, err)
	require.Equal(t, TypeData, rec.Type)
	require.Equal(t, uint16(0x0100), rec.Address)
	require.Len(t, rec.Data, 16)

	_, err = DecodeLine(":00000001FE")
	require.ErrorIs(t, err, ErrInvalidChecksum)
	require.Equal(t, "InvalidChecksum", KindOf(err).String())
}

func TestDecodeFailFast(t *testing.T) {
	doc := testutil.LoadHex(t, "intelhex/corrupt.hex")
	result, err := DecodeString(context.Background(), doc, Options{})
	require.ErrorIs(t, err, ErrIncorrectInitialCharacter)
	require.Equal(t, 2, FirstLine(err))
	require.Len(t, result.Records, 1)
}

func TestDecodeCollectAll(t *testing.T) {
	doc := testutil.LoadHex(t, "intelhex/corrupt.hex")
	result, err := DecodeString(context.Background(), doc, Options{Mode: "collect-all"})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	require.Equal(t, []int{1, 6}, result.Lines)
	require.Len(t, result.Errors, 4)
	require.Equal(t, 4, FirstLine(result.Errors[2]))
	require.ErrorIs(t, result.Errors[2], ErrUnsupportedRecordType)
}

func TestDecodeInvalidOptions(t *testing.T) {
	_, err := DecodeString(context.Background(), ":00000001FF", Options{Mode: "maybe"})
	require.Error(t, err)
	_, err = DecodeString(context.Background(), ":00000001FF", Options{PaddingHex: "XYZ"})
	require.Error(t, err)
}

func TestDecodeBuildImage(t *testing.T) {
	doc := testutil.LoadHex(t, "intelhex/blink.hex")
	result, err := DecodeString(context.Background(), doc, Options{BuildImage: true, PaddingHex: "00"})
	require.NoError(t, err)
	require.NotNil(t, result.Image)
	require.Len(t, result.Image.Segments(), 2)

	rep := result.Report("blink.hex")
	require.NotNil(t, rep.Image)
	require.Equal(t, result.Image.Digest(0x00), rep.Image.Digest)
}

func TestDecodeBuildImageMissingEOF(t *testing.T) {
	_, err := DecodeString(context.Background(), ":020010000102EB\n", Options{BuildImage: true})
	require.Error(t, err)
	require.Contains(t, err.Error(), "build image")
}

func TestDecodeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DecodeString(ctx, ":00000001FF\n", Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDecodeLogsSummary(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	ctx := internalopts.WithLogger(context.Background(), logger)
	_, err := DecodeString(ctx, ":00000001FF\n", Options{})
	require.NoError(t, err)
	require.Equal(t, "document decoded", hook.LastEntry().Message)
	require.Equal(t, 1, hook.LastEntry().Data["records"])
}

func TestRecordsEarlyStop(t *testing.T) {
	doc := testutil.LoadHex(t, "intelhex/corrupt.hex")
	var kinds []string
	for _, err := range Records(strings.NewReader(doc), Options{SkipBlankLines: true}) {
		if err != nil {
			kinds = append(kinds, KindOf(err).String())
			break
		}
	}
	require.Equal(t, []string{"InvalidChecksum"}, kinds)
}

func TestResultString(t *testing.T) {
	result, err := DecodeString(context.Background(), ":00000001FF\n", Options{})
	require.NoError(t, err)
	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.String()), &summary))
	records, ok := summary["records"].([]any)
	require.True(t, ok)
	require.Len(t, records, 1)
}

func TestDecodeWorkersMatchesSequential(t *testing.T) {
	doc := testutil.LoadHex(t, "intelhex/blink.hex")
	want, err := DecodeString(context.Background(), doc, Options{BuildImage: true})
	require.NoError(t, err)
	got, err := DecodeString(context.Background(), doc, Options{BuildImage: true, Workers: 4})
	require.NoError(t, err)
	require.Equal(t, want.Records, got.Records)
	require.Equal(t, want.Lines, got.Lines)
	require.Equal(t, want.Image.Digest(0xFF), got.Image.Digest(0xFF))
}

func TestDecodeWorkersFailFast(t *testing.T) {
	doc := testutil.LoadHex(t, "intelhex/corrupt.hex")
	_, err := DecodeString(context.Background(), doc, Options{Workers: 4})
	require.ErrorIs(t, err, ErrIncorrectInitialCharacter)
	require.Equal(t, 2, FirstLine(err))

	_, err = DecodeString(context.Background(), doc, Options{Workers: 4, SkipBlankLines: true})
	require.ErrorIs(t, err, ErrInvalidChecksum)
	require.Equal(t, 3, FirstLine(err))
}

func TestDecodeWorkersIgnoredInCollectAll(t *testing.T) {
	doc := testutil.LoadHex(t, "intelhex/corrupt.hex")
	result, err := DecodeString(context.Background(), doc, Options{Mode: "collect-all", Workers: 4})
	require.NoError(t, err)
	require.Len(t, result.Errors, 4)
	require.Equal(t, []int{1, 6}, result.Lines)
}
