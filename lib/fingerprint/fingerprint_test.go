// Copyright 2026 The Splitpack Authors
// SPDX-License-Identifier: Apache-2.0

package fingerprint

import (
	"strings"
	"testing"
)

func TestDomainsAreSeparate(t *testing.T) {
	input := []byte("window.__modules__ = {}")
	if Artifact(input) == Module(input) {
		t.Error("artifact and module domains produced the same fingerprint")
	}
	if Artifact(input) != Artifact(input) {
		t.Error("Artifact is not deterministic")
	}
}

func TestDomainKeysArePadded(t *testing.T) {
	for name, key := range map[string]domainKey{"artifact": artifactDomainKey, "module": moduleDomainKey} {
		text := strings.TrimRight(string(key[:]), "\x00")
		if text != "splitpack."+name {
			t.Errorf("%s key = %q", name, text)
		}
	}
}

func TestStreamingMatchesOneShot(t *testing.T) {
	hasher := NewArtifactHasher()
	hasher.Write([]byte("window.__modules__"))
	hasher.Write([]byte(" = {}"))
	streamed, err := FromSum(hasher.Sum(nil))
	if err != nil {
		t.Fatalf("FromSum: %v", err)
	}
	if want := Artifact([]byte("window.__modules__ = {}")); streamed != want {
		t.Errorf("streamed %s, want %s", streamed, want)
	}
}

func TestShortAndParse(t *testing.T) {
	hash := Artifact([]byte("x"))
	full := hash.String()
	if len(full) != 64 {
		t.Fatalf("String() length %d, want 64", len(full))
	}

	tests := []struct {
		length int
		want   string
	}{
		{8, full[:8]},
		{0, full},
		{-1, full},
		{200, full},
	}
	for _, test := range tests {
		if got := hash.Short(test.length); got != test.want {
			t.Errorf("Short(%d) = %q, want %q", test.length, got, test.want)
		}
	}

	parsed, err := Parse(full)
	if err != nil || parsed != hash {
		t.Errorf("Parse(String()) = %s, %v", parsed, err)
	}
	if _, err := Parse(full[:10]); err == nil {
		t.Error("Parse accepted a short fingerprint")
	}
	if _, err := Parse("zz"); err == nil {
		t.Error("Parse accepted non-hex input")
	}
	if hash.IsZero() || !(Hash{}).IsZero() {
		t.Error("IsZero is wrong")
	}
}
