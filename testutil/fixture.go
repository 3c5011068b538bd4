// Package testutil provides fixture documents and a fake document backend
// for tests.
package testutil

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"testing"

	"github.com/arthur-debert/congvan/types"
)

//go:embed testdata/documents.json
var fixtureJSON []byte

// Fixture is the typed view of testdata/documents.json
type Fixture struct {
	// Incoming register: in-1, in-2 and in-5 waiting; in-3 and in-4
	// finished. in-3 has an impossible issue date, in-4 none and a
	// malformed attachment list.
	Incoming []types.Document

	// Outgoing register: out-1 and out-3 waiting, out-2 finished. out-1
	// uses the fileUrls attachment alias.
	Outgoing []types.Document
}

// Documents returns the register of the given type
func (f Fixture) Documents(t types.DocumentType) []types.Document {
	if t == types.Outgoing {
		return slices.Clone(f.Outgoing)
	}
	return slices.Clone(f.Incoming)
}

// ByID finds a fixture document in either register
func (f Fixture) ByID(id types.Code) (types.Document, bool) {
	for _, d := range append(slices.Clone(f.Incoming), f.Outgoing...) {
		if d.ID == id {
			return d, true
		}
	}
	return types.Document{}, false
}

// ParseFixture decodes the embedded fixture
func ParseFixture() (Fixture, error) {
	var f Fixture
	raw := struct {
		Incoming []types.Document `json:"incoming"`
		Outgoing []types.Document `json:"outgoing"`
	}{}
	if err := json.Unmarshal(fixtureJSON, &raw); err != nil {
		return f, fmt.Errorf("failed to decode fixture: %w", err)
	}
	f.Incoming = raw.Incoming
	f.Outgoing = raw.Outgoing
	return f, nil
}

// LoadFixture returns a fresh copy of the fixture documents
func LoadFixture(t testing.TB) Fixture {
	t.Helper()
	f, err := ParseFixture()
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}
	return f
}

// Docs builds minimal documents from (id, documentNumber, status) triples
func Docs(triples ...[3]string) []types.Document {
	out := make([]types.Document, len(triples))
	for i, tr := range triples {
		out[i] = types.Document{ID: types.Code(tr[0]), DocumentNumber: types.Code(tr[1]), Status: tr[2]}
	}
	return out
}
