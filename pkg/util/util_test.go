package util

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtil(t *testing.T) {
	t.Run("MD5Hash()", testMD5HashFunc())
	t.Run("IsRegularFile()", testIsRegularFileFunc())
	t.Run("WriteFileAtomic()", testWriteFileAtomicFunc())
	t.Run("MarshalAndPrintTable()", testMarshalAndPrintTableFunc())
	t.Run("PrintTable()", testPrintTableFunc())
}

// Tests "MD5Hash()"
func testMD5HashFunc() func(*testing.T) {
	return func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

		hash, err := MD5Hash(path)
		assert.NoError(t, err)
		assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", hash)

		large := bytes.Repeat([]byte("a"), HashChunkSize*2+17)
		require.NoError(t, os.WriteFile(path, large, 0644))
		largeHash, err := MD5Hash(path)
		assert.NoError(t, err)
		assert.NotEqual(t, hash, largeHash)
		assert.Len(t, largeHash, 32)

		_, err = MD5Hash(filepath.Join(t.TempDir(), "missing.txt"))
		assert.Error(t, err)
	}
}

// Tests "IsRegularFile()"
func testIsRegularFileFunc() func(*testing.T) {
	return func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "file.csv")
		require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0644))

		assert.True(t, IsRegularFile(path))
		assert.False(t, IsRegularFile(dir))
		assert.False(t, IsRegularFile(filepath.Join(dir, "missing.csv")))
	}
}

// Tests "WriteFileAtomic()"
func testWriteFileAtomicFunc() func(*testing.T) {
	return func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "out.json")

		require.NoError(t, WriteFileAtomic(path, []byte("first"), 0644))
		require.NoError(t, WriteFileAtomic(path, []byte("second"), 0644))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "second", string(content))

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temporary files were left behind")
	}
}

type tableRow struct {
	Name  string `csv:"name"`
	Value string `csv:"value"`
}

// Tests "MarshalAndPrintTable()"
func testMarshalAndPrintTableFunc() func(*testing.T) {
	return func(t *testing.T) {
		var out bytes.Buffer
		rows := []*tableRow{
			{Name: "log/x", Value: "1.5k"},
			{Name: "log/label", Value: "a, b"},
		}

		err := MarshalAndPrintTable(&out, rows)
		assert.NoError(t, err)
		assert.Contains(t, out.String(), "name")
		assert.Contains(t, out.String(), "log/x")
		assert.Contains(t, out.String(), "a, b")
	}
}

func testPrintTableFunc() func(*testing.T) {
	return func(t *testing.T) {
		var out bytes.Buffer
		PrintTable(&out, [][]string{{"path", "Max"}, {"log/x", "5.5"}})

		lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "Max")
		assert.Contains(t, lines[1], "5.5")
	}
}

func TestReplaceEnvVariablesFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loaded_workspace: SIGBOARD_TEST_WORKSPACE\n"), 0644))
	t.Setenv("SIGBOARD_TEST_WORKSPACE", "/tmp/ws.json")

	content, err := ReplaceEnvVariablesFromPath(path, "SIGBOARD_")
	assert.NoError(t, err)
	assert.Equal(t, "loaded_workspace: /tmp/ws.json\n", string(content))
}
