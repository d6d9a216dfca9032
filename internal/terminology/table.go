// Package terminology canonicalizes vendor-specific spec names into a
// standard vocabulary and merges duplicate findings across documents.
package terminology

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Entry is one standard specification name with its known locale aliases.
type Entry struct {
	StandardName string   `yaml:"standard_name"`
	UnitFamily   string   `yaml:"unit_family"`
	Aliases      []string `yaml:"aliases"`
}

// Table is the canonical vocabulary shared across concurrent fragment
// pipelines. Lookups take a read lock; extending the table takes the write lock.
type Table struct {
	mu      sync.RWMutex
	entries []Entry
	byKey   map[string]int // normalized name or alias -> entries index
}

// builtinEntries covers the automotive display and cover glass vocabulary the
// extraction prompt teaches the model.
var builtinEntries = []Entry{
	{StandardName: "Luminance", UnitFamily: "cd/m²", Aliases: []string{"Brightness", "Leuchtdichte", "Helligkeit", "Luminosité"}},
	{StandardName: "Contrast Ratio", UnitFamily: "", Aliases: []string{"Kontrastverhältnis", "Rapport de contraste", "Contrast"}},
	{StandardName: "Surface hardness", UnitFamily: "H", Aliases: []string{"Oberflächenhärte", "Dureté de surface", "Pencil hardness"}},
	{StandardName: "Glass thickness", UnitFamily: "mm", Aliases: []string{"Glasdicke", "Épaisseur du verre", "Thickness & tolerance", "Cover glass thickness"}},
	{StandardName: "Compressive Stress", UnitFamily: "MPa", Aliases: []string{"Druckspannung", "Contrainte de compression"}},
	{StandardName: "Cover Glass Transmittance", UnitFamily: "%", Aliases: []string{"Transmission", "Transmittance", "Durchlässigkeit"}},
	{StandardName: "Anti-Glare", UnitFamily: "", Aliases: []string{"Blendschutz", "Anti-éblouissement", "AG"}},
	{StandardName: "Anti-Reflection", UnitFamily: "%", Aliases: []string{"Entspiegelung", "Antireflet", "AR coating"}},
	{StandardName: "Water Contact Angle", UnitFamily: "°", Aliases: []string{"Kontaktwinkel", "Angle de contact", "Contact angle"}},
	{StandardName: "Operating Temperature", UnitFamily: "°C", Aliases: []string{"Betriebstemperatur", "Température de fonctionnement"}},
	{StandardName: "Resolution", UnitFamily: "px", Aliases: []string{"Auflösung", "Résolution"}},
}

// NewTable returns a table preloaded with the built-in vocabulary.
func NewTable() *Table {
	t := &Table{byKey: make(map[string]int)}
	for _, e := range builtinEntries {
		t.add(e)
	}
	return t
}

// LoadFile merges user-maintained entries from a YAML file into the table.
// User entries extend or override built-in aliases.
func (t *Table) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read terminology file: %w", err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse terminology file: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range entries {
		t.add(e)
	}
	return nil
}

// add registers an entry; callers hold the write lock (or own t exclusively).
func (t *Table) add(e Entry) {
	key := normalizeKey(e.StandardName)
	idx, exists := t.byKey[key]
	if !exists {
		t.entries = append(t.entries, Entry{StandardName: e.StandardName, UnitFamily: e.UnitFamily})
		idx = len(t.entries) - 1
		t.byKey[key] = idx
	} else if e.UnitFamily != "" {
		t.entries[idx].UnitFamily = e.UnitFamily
	}
	for _, alias := range e.Aliases {
		t.entries[idx].Aliases = append(t.entries[idx].Aliases, alias)
		t.byKey[normalizeKey(alias)] = idx
	}
}

// Lookup resolves a raw spec name via exact or alias match.
func (t *Table) Lookup(raw string) (standardName, unitFamily string, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx, found := t.byKey[normalizeKey(raw)]
	if !found {
		return "", "", false
	}
	return t.entries[idx].StandardName, t.entries[idx].UnitFamily, true
}

// StandardNames returns all standard names in sorted order.
func (t *Table) StandardNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.StandardName
	}
	sort.Strings(names)
	return names
}

// UnitFamily returns the unit family for a standard name, if known.
func (t *Table) UnitFamily(standardName string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if idx, ok := t.byKey[normalizeKey(standardName)]; ok {
		return t.entries[idx].UnitFamily
	}
	return ""
}

// normalizeKey lowercases and collapses whitespace so lookups tolerate
// spacing and case differences in vendor documents.
func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
