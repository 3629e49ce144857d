// Package creds supplies access tokens for the realtime connection.
//
// Token acquisition (login, refresh) happens elsewhere; this package only
// hands the current token to the connection core. A FileProvider re-reads
// the token file on every call so a companion process can rotate it.
package creds

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoToken indicates no access token is available. The connection core
// treats this as non-retryable until the caller re-authenticates.
var ErrNoToken = errors.New("no access token available")

// Provider supplies the current access token for a connect attempt.
type Provider interface {
	Token(ctx context.Context) (string, error)
}

// Static is a fixed-token provider.
type Static string

// Token returns the static token, or ErrNoToken if empty.
func (s Static) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// FileProvider reads the token from a file on every call.
type FileProvider struct {
	Path string
}

// NewFileProvider creates a provider backed by the given token file.
func NewFileProvider(path string) (*FileProvider, error) {
	if path == "" {
		return nil, fmt.Errorf("token file path is required")
	}
	return &FileProvider{Path: path}, nil
}

// Token reads and trims the token file contents.
func (p *FileProvider) Token(ctx context.Context) (string, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
