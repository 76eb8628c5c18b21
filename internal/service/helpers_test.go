package service

import (
	"encoding/json"
	"testing"
)

// rawArray turns a JSON array literal into the shape ContentClient returns.
func rawArray(t *testing.T, s string) []json.RawMessage {
	t.Helper()
	var out []json.RawMessage
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("bad fixture %s: %v", s, err)
	}
	return out
}
