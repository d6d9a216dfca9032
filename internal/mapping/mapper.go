package mapping

import (
	"sort"
	"strings"

	"github.com/specsift/specsift/internal/models"
	"github.com/specsift/specsift/internal/terminology"
	"go.uber.org/zap"
)

// Mapper assigns canonical specs to template slots. Assignment is greedy
// best-score-first with a total tie-break order so concurrent upstream
// completion order never changes the outcome.
type Mapper struct {
	table     *terminology.Table
	threshold float64
	logger    *zap.Logger // optional
}

// MapperOption configures a Mapper.
type MapperOption func(*Mapper)

// WithLogger sets a logger for debug output (accepted and rejected pairs).
func WithLogger(l *zap.Logger) MapperOption {
	return func(m *Mapper) { m.logger = l }
}

// NewMapper creates a mapper accepting pairs scoring above threshold.
// The terminology table resolves slot labels written in alias form.
func NewMapper(table *terminology.Table, threshold float64, opts ...MapperOption) *Mapper {
	m := &Mapper{table: table, threshold: threshold}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// candidate is one scored (spec, slot) pair.
type candidate struct {
	spec  int // index into specs
	slot  int // index into slots
	score float64
}

// Map returns exactly one MappingResult per canonical spec. Specs that
// exhaust all slots below the threshold are unmatched, never forced into a
// low-confidence slot; slots matching no spec stay empty.
func (m *Mapper) Map(specs []models.CanonicalSpec, slots []models.TemplateSlot) []models.MappingResult {
	candidates := make([]candidate, 0, len(specs)*len(slots))
	for si := range specs {
		for ti := range slots {
			score := m.score(&specs[si], &slots[ti])
			if score > 0 {
				candidates = append(candidates, candidate{spec: si, slot: ti, score: score})
			}
		}
	}

	// Descending score; ties by higher contributing confidence, then
	// standard-name lexical order, then slot row.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		ca, cb := specs[a.spec].ResolvedConfidence, specs[b.spec].ResolvedConfidence
		if ca != cb {
			return ca > cb
		}
		na, nb := strings.ToLower(specs[a.spec].StandardName), strings.ToLower(specs[b.spec].StandardName)
		if na != nb {
			return na < nb
		}
		return slots[a.slot].Row < slots[b.slot].Row
	})

	specClaimed := make([]bool, len(specs))
	slotClaimed := make([]bool, len(slots))
	results := make([]models.MappingResult, len(specs))
	assigned := make([]bool, len(specs))

	for _, c := range candidates {
		if c.score <= m.threshold || specClaimed[c.spec] || slotClaimed[c.slot] {
			continue
		}
		specClaimed[c.spec] = true
		slotClaimed[c.slot] = true
		results[c.spec] = models.MappingResult{
			Spec:       &specs[c.spec],
			Slot:       &slots[c.slot],
			Similarity: c.score,
		}
		assigned[c.spec] = true
		if m.logger != nil {
			m.logger.Debug("slot assigned",
				zap.String("spec", specs[c.spec].StandardName),
				zap.String("slot", slots[c.slot].Label),
				zap.Float64("score", c.score),
			)
		}
	}

	for i := range specs {
		if !assigned[i] {
			results[i] = models.MappingResult{Spec: &specs[i]}
		}
	}
	return results
}

// score rates a (spec, slot) pair. Exact or alias matches win outright;
// containment follows the spec's own confidence; otherwise lexical similarity.
func (m *Mapper) score(spec *models.CanonicalSpec, slot *models.TemplateSlot) float64 {
	specName := strings.ToLower(strings.TrimSpace(spec.StandardName))
	slotName := strings.ToLower(strings.TrimSpace(slot.Label))
	if specName == slotName {
		return 1.0
	}
	if std, _, ok := m.table.Lookup(slot.Label); ok && strings.EqualFold(std, spec.StandardName) {
		return 1.0
	}
	if strings.Contains(specName, slotName) || strings.Contains(slotName, specName) {
		return 0.9 * spec.ResolvedConfidence
	}
	return terminology.Similarity(spec.StandardName, slot.Label)
}
