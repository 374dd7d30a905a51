package testing

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// TestingT is the subset of testing.T used by snapshot assertions.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// snapshotVersion is bumped when the op encoding changes incompatibly.
const snapshotVersion = 1

type opFile struct {
	Version int         `msgpack:"version"`
	Ops     []DisplayOp `msgpack:"ops"`
}

// EncodeOps serializes recorded operations with MessagePack.
func EncodeOps(ops []DisplayOp) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(opFile{Version: snapshotVersion, Ops: ops}); err != nil {
		return nil, fmt.Errorf("encode ops: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeOps parses data produced by EncodeOps.
func DecodeOps(data []byte) ([]DisplayOp, error) {
	var f opFile
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode ops: %w", err)
	}
	if f.Version != snapshotVersion {
		return nil, fmt.Errorf("decode ops: unsupported version %d", f.Version)
	}
	return f.Ops, nil
}

// WriteOps encodes ops into path, creating directories as needed.
func WriteOps(path string, ops []DisplayOp) error {
	data, err := EncodeOps(ops)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadOps decodes the ops stored at path.
func ReadOps(path string) ([]DisplayOp, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeOps(data)
}

// MatchesFile compares ops against a golden file. When
// CANOPY_UPDATE_SNAPSHOTS=1 is set, the file is rewritten instead.
func MatchesFile(t TestingT, path string, ops []DisplayOp) {
	t.Helper()

	if os.Getenv("CANOPY_UPDATE_SNAPSHOTS") == "1" {
		if err := WriteOps(path, ops); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := ReadOps(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: CANOPY_UPDATE_SNAPSHOTS=1 go test -run %s", path, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := DiffOps(expected, ops); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: CANOPY_UPDATE_SNAPSHOTS=1 go test -run %s", path, diff, t.Name())
	}
}

// DiffOps returns a line diff between two op sequences, or "" if they match.
func DiffOps(expected, actual []DisplayOp) string {
	e := formatOps(expected)
	a := formatOps(actual)
	if e == a {
		return ""
	}
	return unifiedDiff(e, a)
}

func formatOps(ops []DisplayOp) string {
	lines := make([]string, len(ops))
	for i, op := range ops {
		lines[i] = op.String()
	}
	return strings.Join(lines, "\n")
}

// unifiedDiff produces a simple line-oriented diff.
func unifiedDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	maxLen := max(len(expectedLines), len(actualLines))
	for i := 0; i < maxLen; i++ {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e != a {
			if i < len(expectedLines) {
				fmt.Fprintf(&buf, "-%s\n", e)
			}
			if i < len(actualLines) {
				fmt.Fprintf(&buf, "+%s\n", a)
			}
		}
	}

	return buf.String()
}
