package creds

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStaticToken(t *testing.T) {
	got, err := Static("tok-123").Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if got != "tok-123" {
		t.Errorf("Token() = %q, want %q", got, "tok-123")
	}
}

func TestStaticTokenEmpty(t *testing.T) {
	_, err := Static("").Token(context.Background())
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("Token() error = %v, want ErrNoToken", err)
	}
}

func TestNewFileProviderRequiresPath(t *testing.T) {
	if _, err := NewFileProvider(""); err == nil {
		t.Error("NewFileProvider(\"\") should fail")
	}
}

func TestFileProviderToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  tok-abc\n"), 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}

	p, err := NewFileProvider(path)
	if err != nil {
		t.Fatalf("NewFileProvider() error = %v", err)
	}

	got, err := p.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if got != "tok-abc" {
		t.Errorf("Token() = %q, want %q", got, "tok-abc")
	}
}

func TestFileProviderReReads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("first"), 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}

	p := &FileProvider{Path: path}
	if got, _ := p.Token(context.Background()); got != "first" {
		t.Fatalf("Token() = %q, want %q", got, "first")
	}

	if err := os.WriteFile(path, []byte("second"), 0o600); err != nil {
		t.Fatalf("rewrite token file: %v", err)
	}
	if got, _ := p.Token(context.Background()); got != "second" {
		t.Errorf("Token() after rotation = %q, want %q", got, "second")
	}
}

func TestFileProviderEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}

	p := &FileProvider{Path: path}
	_, err := p.Token(context.Background())
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("Token() error = %v, want ErrNoToken", err)
	}
}

func TestFileProviderMissingFile(t *testing.T) {
	p := &FileProvider{Path: filepath.Join(t.TempDir(), "absent")}
	if _, err := p.Token(context.Background()); err == nil {
		t.Error("Token() should fail for missing file")
	}
}
