package filetypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileType(t *testing.T) {
	t.Run("NewFileType()", testNewFileTypeFunc())
	t.Run("NewFileType() - Invalid file type", testNewFileTypeUnknownFunc())
	t.Run("ForPath()", testForPathFunc())
}

func testNewFileTypeFunc() func(*testing.T) {
	return func(t *testing.T) {
		for _, key := range Keys() {
			fileType, err := NewFileType(key)
			require.NoError(t, err)
			assert.Equal(t, key, fileType.Key())
		}

		fileType, err := NewFileType("csv")
		require.NoError(t, err)
		assert.Equal(t, "CSV", fileType.Key())
	}
}

func testNewFileTypeUnknownFunc() func(*testing.T) {
	return func(t *testing.T) {
		_, err := NewFileType("does-not-exist")
		var unknown *UnknownLoaderError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "does-not-exist", unknown.Key)
	}
}

func testForPathFunc() func(*testing.T) {
	return func(t *testing.T) {
		fileType, err := ForPath("/data/run.XLSX", "CSV")
		require.NoError(t, err)
		assert.Equal(t, "XLSX", fileType.Key())

		fileType, err = ForPath("/data/run.txt", "CSV")
		require.NoError(t, err)
		assert.Equal(t, "CSV", fileType.Key())

		_, err = ForPath("/data/run.txt", "PARQUET")
		assert.Error(t, err)
	}
}
