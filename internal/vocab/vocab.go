// Package vocab collapses the many source-specific spellings of process
// types and worker names onto the canonical vocabulary. The tables are
// injected at construction so tests and future integrations can swap them.
package vocab

import (
	"sort"
	"strings"

	"github.com/ra-autohaus/tracker/internal/models"
)

type Normalizer struct {
	prozessTable      map[string]string
	bearbeiterAliases map[string]string
	// Alias keys in sorted order so the fuzzy fallback always visits them
	// the same way. Map iteration order would make an ambiguous short form
	// resolve to a different person between calls.
	sortedAliases []string
}

func New(prozessTable, bearbeiterAliases map[string]string) *Normalizer {
	sorted := make([]string, 0, len(bearbeiterAliases))
	for alias := range bearbeiterAliases {
		sorted = append(sorted, alias)
	}
	sort.Strings(sorted)
	return &Normalizer{
		prozessTable:      prozessTable,
		bearbeiterAliases: bearbeiterAliases,
		sortedAliases:     sorted,
	}
}

func NewDefault() *Normalizer {
	return New(DefaultProzessTable(), DefaultBearbeiterAliases())
}

// DefaultProzessTable maps lowercased synonyms from Zapier, Flowers and the
// legacy long-form labels to the six canonical process types.
func DefaultProzessTable() map[string]string {
	return map[string]string{
		"einkauf":      models.ProzessEinkauf,
		"ankauf":       models.ProzessEinkauf,
		"purchase":     models.ProzessEinkauf,
		"beschaffung":  models.ProzessEinkauf,
		"anlieferung":  models.ProzessAnlieferung,
		"transport":    models.ProzessAnlieferung,
		"delivery":     models.ProzessAnlieferung,
		"lieferung":    models.ProzessAnlieferung,
		"aufbereitung": models.ProzessAufbereitung,
		"gwa":          models.ProzessAufbereitung,
		"reinigung":    models.ProzessAufbereitung,
		"foto":         models.ProzessFoto,
		"fotoshooting": models.ProzessFoto,
		"photos":       models.ProzessFoto,
		"werkstatt":    models.ProzessWerkstatt,
		"garage":       models.ProzessWerkstatt,
		"reparatur":    models.ProzessWerkstatt,
		"service":      models.ProzessWerkstatt,
		"verkauf":      models.ProzessVerkauf,
		"sales":        models.ProzessVerkauf,
		"vertrieb":     models.ProzessVerkauf,
	}
}

// DefaultBearbeiterAliases maps the short forms workers type into the source
// systems to their full names.
func DefaultBearbeiterAliases() map[string]string {
	return map[string]string{
		"Thomas K.":    "Thomas Küfner",
		"T. Küfner":    "Thomas Küfner",
		"Thomas":       "Thomas Küfner",
		"Max R.":       "Maximilian Reinhardt",
		"M. Reinhardt": "Maximilian Reinhardt",
		"Max":          "Maximilian Reinhardt",
		"Hans M.":      "Hans Müller",
		"Anna K.":      "Anna Klein",
		"Stefan B.":    "Stefan Becker",
		"Mike S.":      "Michael Schmidt",
		"Jürgen":       "Jürgen Hoffmann",
		"Klaus":        "Klaus Neumann",
		"Sandra":       "Sandra Richter",
		"Alex":         "Alexander König",
	}
}

// NormalizeProzessTyp maps a raw process label to its canonical type.
// Unknown labels are passed through title-cased instead of rejected: a live
// integration must never hard-fail on vocabulary we have not seen yet.
// remapped reports whether the value changed.
func (n *Normalizer) NormalizeProzessTyp(raw string) (value string, remapped bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	if canonical, ok := n.prozessTable[strings.ToLower(trimmed)]; ok {
		return canonical, canonical != trimmed
	}
	titled := titleCase(trimmed)
	return titled, titled != trimmed
}

// ResolveBearbeiter maps a worker short form to the full name: exact alias
// match first, then a deliberately loose two-way substring match to tolerate
// inconsistent abbreviations. Unmatched names come back unchanged.
func (n *Normalizer) ResolveBearbeiter(raw string) (value string, remapped bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	if full, ok := n.bearbeiterAliases[trimmed]; ok {
		return full, full != trimmed
	}
	lower := strings.ToLower(trimmed)
	for _, alias := range n.sortedAliases {
		aliasLower := strings.ToLower(alias)
		if strings.Contains(aliasLower, lower) || strings.Contains(lower, aliasLower) {
			return n.bearbeiterAliases[alias], n.bearbeiterAliases[alias] != trimmed
		}
	}
	return trimmed, false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}
