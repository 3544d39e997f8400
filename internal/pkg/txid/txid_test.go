package txid_test

import (
	"strings"
	"testing"

	"github.com/samirrijal/metropass/internal/pkg/txid"
)

func TestNewTransactionID_Format(t *testing.T) {
	g := txid.New("")
	for i := 0; i < 50; i++ {
		id := g.NewTransactionID()
		if !strings.HasPrefix(id, txid.DefaultPrefix) {
			t.Fatalf("expected prefix %s, got %s", txid.DefaultPrefix, id)
		}
		rest := strings.TrimPrefix(id, txid.DefaultPrefix)
		if len(rest) != txid.Length {
			t.Fatalf("expected %d random chars, got %q", txid.Length, rest)
		}
		for _, r := range rest {
			if !(r >= '0' && r <= '9') && !(r >= 'A' && r <= 'Z') {
				t.Fatalf("unexpected character %q in %s", r, id)
			}
		}
	}
}

func TestNewTransactionID_CustomPrefix(t *testing.T) {
	id := txid.New("HCMC-").NewTransactionID()
	if !strings.HasPrefix(id, "HCMC-") {
		t.Errorf("expected HCMC- prefix, got %s", id)
	}
}

func TestNewTransactionID_Varies(t *testing.T) {
	g := txid.New("")
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		seen[g.NewTransactionID()] = true
	}
	if len(seen) < 2 {
		t.Error("expected generated ids to differ")
	}
}
