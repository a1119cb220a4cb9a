package object

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

const uploadsRoot = "uploads"

// OwnerKey returns a path-safe identifier for an owner (user or guest) ID.
func OwnerKey(owner string) string {
	sum := sha256.Sum256([]byte(owner))
	return hex.EncodeToString(sum[:])
}

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// NewKey builds a unique key for an upload: uploads/<owner hash>/<uuid>_<name>.
func NewKey(owner, fileName string) (string, error) {
	name, err := SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(uploadsRoot, OwnerKey(owner), uuid.NewString()+"_"+name), nil
}

// ExtractedTextKey is where the text recovered from the upload at key is kept.
func ExtractedTextKey(key string) string {
	return key + ".extracted.txt"
}

// CleanKey validates a relative slash-separated key.
func CleanKey(key string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(strings.TrimSpace(key), "\\", "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// Sniff peeks at up to 512 bytes of r to detect a content type. The returned
// reader yields the full stream.
func Sniff(r io.Reader, declared string) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, "", err
	}
	if declared = strings.TrimSpace(declared); declared != "" {
		return br, declared, nil
	}
	return br, http.DetectContentType(head), nil
}
