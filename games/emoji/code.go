package emoji

import (
	"fmt"
	"io"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// newCode reads a random room code from src.
func newCode(src io.Reader) (string, error) {
	buf := make([]byte, codeLength)
	if _, err := io.ReadFull(src, buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}

	out := make([]byte, codeLength)
	for i := range out {
		out[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}

	return string(out), nil
}

// uniqueCode draws codes until taken reports one as free.
func uniqueCode(src io.Reader, taken func(string) bool) (string, error) {
	for {
		code, err := newCode(src)
		if err != nil {
			return "", err
		}
		if !taken(code) {
			return code, nil
		}
	}
}
