package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// LoadJSON unmarshals a fixture from the repository testdata directory.
func LoadJSON(t *testing.T, rel string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(fixture(t, rel), v), "decode %s", rel)
}

// LoadHex returns the raw contents of an Intel HEX fixture, line endings
// untouched.
func LoadHex(t *testing.T, rel string) string {
	t.Helper()
	return string(fixture(t, rel))
}

// LoadLines splits a fixture into lines, dropping the trailing terminator.
func LoadLines(t *testing.T, rel string) []string {
	t.Helper()
	doc := strings.ReplaceAll(LoadHex(t, rel), "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(doc, "\n"), "\n")
}

// fixture walks up from the package directory to the module root, which owns
// testdata/.
func fixture(t *testing.T, rel string) []byte {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			data, err := os.ReadFile(filepath.Join(dir, "testdata", rel))
			require.NoError(t, err, "fixture %s", rel)
			return data
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "no go.mod above %s", dir)
		dir = parent
	}
}
