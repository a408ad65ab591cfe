package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// sha256("hello\n")
const helloHash = "5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03"

func writeTemp(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	return path
}

func TestCalculateHash(t *testing.T) {
	got, err := CalculateHash(strings.NewReader("hello\n"))
	if err != nil {
		t.Fatalf("CalculateHash failed: %v", err)
	}

	if got != helloHash {
		t.Errorf("CalculateHash = %s, want %s", got, helloHash)
	}
}

func TestFromFile(t *testing.T) {
	path := writeTemp(t, "hello\n")

	meta, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}

	if meta.Hash != helloHash || meta.Size != 6 || meta.Path != path {
		t.Errorf("unexpected metadata: %+v", meta)
	}

	if meta.LastModify.IsZero() {
		t.Error("LastModify not set")
	}
}

func TestFromFile_Missing(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "absent.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("FromFile error = %v, want os.ErrNotExist", err)
	}
}

func TestVerify(t *testing.T) {
	path := writeTemp(t, "hello\n")

	if err := Verify(path, helloHash); err != nil {
		t.Errorf("Verify returned unexpected error: %v", err)
	}

	if err := Verify(path, strings.Repeat("0", 64)); !errors.Is(err, ErrHashMismatch) {
		t.Errorf("Verify error = %v, want ErrHashMismatch", err)
	}

	if err := Verify(path, ""); !errors.Is(err, ErrNoHashFound) {
		t.Errorf("Verify error = %v, want ErrNoHashFound", err)
	}
}
