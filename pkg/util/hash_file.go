package util

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
)

// HashChunkSize is the read size used while fingerprinting files
const HashChunkSize = 1 << 20

// MD5Hash returns the hex encoded MD5 digest of the file, read in HashChunkSize chunks
func MD5Hash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	buffer := make([]byte, HashChunkSize)
	if _, err := io.CopyBuffer(hash, file, buffer); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
