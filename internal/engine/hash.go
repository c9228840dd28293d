package engine

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Algorithm selects the digest used for post-copy verification.
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	SHA1   Algorithm = "sha1"
	MD5    Algorithm = "md5"
	BLAKE3 Algorithm = "blake3"
)

// DefaultAlgorithm is used when a request does not select one.
const DefaultAlgorithm = SHA256

// ParseAlgorithm validates a user-supplied algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case SHA256, SHA1, MD5, BLAKE3:
		return Algorithm(s), nil
	case "":
		return DefaultAlgorithm, nil
	default:
		return "", fmt.Errorf("unknown hash algorithm %q (use sha256, sha1, md5 or blake3)", s)
	}
}

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case SHA256, "":
		return sha256.New(), nil
	case SHA1:
		return sha1.New(), nil
	case MD5:
		return md5.New(), nil
	case BLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", string(a))
	}
}

// hashChunkSize is the read size for streaming digests.
const hashChunkSize = 4096

// HashFile computes the digest of the file at path under the given
// algorithm, returning the hex-encoded digest. The file is streamed in
// fixed-size chunks and never loaded whole into memory.
func HashFile(path string, algo Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h, err := algo.newHash()
	if err != nil {
		return "", err
	}

	buf := make([]byte, hashChunkSize)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return "", fmt.Errorf("hash %s: %w", path, rerr)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
