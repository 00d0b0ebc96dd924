package vocab

import (
	"testing"

	"github.com/ra-autohaus/tracker/internal/models"
)

func TestNormalizeProzessTypSynonyms(t *testing.T) {
	n := NewDefault()

	cases := []struct {
		raw  string
		want string
	}{
		{"gwa", models.ProzessAufbereitung},
		{"GWA", models.ProzessAufbereitung},
		{"garage", models.ProzessWerkstatt},
		{"Fotoshooting", models.ProzessFoto},
		{"transport", models.ProzessAnlieferung},
		{"ankauf", models.ProzessEinkauf},
		{"sales", models.ProzessVerkauf},
	}
	for _, c := range cases {
		got, remapped := n.NormalizeProzessTyp(c.raw)
		if got != c.want {
			t.Errorf("NormalizeProzessTyp(%q) = %q, want %q", c.raw, got, c.want)
		}
		if !remapped {
			t.Errorf("NormalizeProzessTyp(%q) expected remapped=true", c.raw)
		}
	}
}

func TestNormalizeProzessTypIdempotent(t *testing.T) {
	n := NewDefault()

	for _, canonical := range []string{
		models.ProzessEinkauf, models.ProzessAnlieferung, models.ProzessAufbereitung,
		models.ProzessFoto, models.ProzessWerkstatt, models.ProzessVerkauf,
	} {
		got, remapped := n.NormalizeProzessTyp(canonical)
		if got != canonical {
			t.Errorf("NormalizeProzessTyp(%q) = %q, want unchanged", canonical, got)
		}
		if remapped {
			t.Errorf("NormalizeProzessTyp(%q) expected remapped=false", canonical)
		}
	}
}

func TestNormalizeProzessTypUnknownPassesThrough(t *testing.T) {
	n := NewDefault()

	got, remapped := n.NormalizeProzessTyp("sonderprozess")
	if got != "Sonderprozess" {
		t.Fatalf("expected title-cased pass-through, got %q", got)
	}
	if !remapped {
		t.Fatalf("expected remapped=true for title-cased pass-through")
	}

	got, remapped = n.NormalizeProzessTyp("Sonderprozess")
	if got != "Sonderprozess" || remapped {
		t.Fatalf("expected unchanged pass-through, got %q remapped=%v", got, remapped)
	}
}

func TestResolveBearbeiterExact(t *testing.T) {
	n := NewDefault()

	got, remapped := n.ResolveBearbeiter("Thomas K.")
	if got != "Thomas Küfner" || !remapped {
		t.Fatalf("ResolveBearbeiter(Thomas K.) = %q remapped=%v", got, remapped)
	}
}

func TestResolveBearbeiterFuzzy(t *testing.T) {
	n := NewDefault()

	// Input contains the alias.
	got, _ := n.ResolveBearbeiter("Jürgen H")
	if got != "Jürgen Hoffmann" {
		t.Fatalf("expected fuzzy match on Jürgen, got %q", got)
	}
	// Whitespace is trimmed before comparison.
	got, remapped := n.ResolveBearbeiter("  Max R.  ")
	if got != "Maximilian Reinhardt" || !remapped {
		t.Fatalf("expected trimmed exact match, got %q remapped=%v", got, remapped)
	}
}

func TestResolveBearbeiterAmbiguousIsDeterministic(t *testing.T) {
	n := NewDefault()

	// "K." substring-matches the aliases of several people; the fallback
	// must pick the same one every call, and the alias slice is sorted, so
	// "Anna K." wins.
	first, _ := n.ResolveBearbeiter("K.")
	if first != "Anna Klein" {
		t.Fatalf("ResolveBearbeiter(K.) = %q, want Anna Klein", first)
	}
	for i := 0; i < 100; i++ {
		if got, _ := n.ResolveBearbeiter("K."); got != first {
			t.Fatalf("resolution changed between calls: %q then %q", first, got)
		}
	}
}

func TestResolveBearbeiterUnknownAndEmpty(t *testing.T) {
	n := NewDefault()

	got, remapped := n.ResolveBearbeiter("Frau Zimmermann")
	if got != "Frau Zimmermann" || remapped {
		t.Fatalf("unknown worker should pass through, got %q remapped=%v", got, remapped)
	}

	got, remapped = n.ResolveBearbeiter("   ")
	if got != "" || remapped {
		t.Fatalf("empty input should resolve to empty, got %q remapped=%v", got, remapped)
	}
}

func TestInjectedTables(t *testing.T) {
	n := New(map[string]string{"spezial": "Werkstatt"}, map[string]string{"X": "Xaver Y"})

	if got, _ := n.NormalizeProzessTyp("SPEZIAL"); got != "Werkstatt" {
		t.Fatalf("injected table not used, got %q", got)
	}
	if got, _ := n.ResolveBearbeiter("X"); got != "Xaver Y" {
		t.Fatalf("injected aliases not used, got %q", got)
	}
}
