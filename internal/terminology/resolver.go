package terminology

import (
	"sort"
	"strings"

	"github.com/specsift/specsift/internal/models"
	"go.uber.org/zap"
)

// Resolver canonicalizes extracted spec instances against the table.
// Resolution per instance: exact/alias lookup, then similarity fallback above
// the threshold, then a non-standard singleton under the raw name.
type Resolver struct {
	table     *Table
	threshold float64
	logger    *zap.Logger // optional
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets a logger for debug output (fallback matches, non-standard names).
func WithLogger(l *zap.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a resolver accepting similarity-fallback matches at or
// above threshold.
func NewResolver(table *Table, threshold float64, opts ...ResolverOption) *Resolver {
	r := &Resolver{table: table, threshold: threshold}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve canonicalizes all instances and merges those sharing a standard
// name. The result is fully deterministic: identical instance sets yield
// identical canonical specs regardless of input order.
func (r *Resolver) Resolve(instances []models.SpecInstance) []models.CanonicalSpec {
	type group struct {
		name        string
		unitFamily  string
		nonStandard bool
		instances   []models.SpecInstance
	}
	groups := make(map[string]*group)

	for _, inst := range instances {
		name, family, nonStandard := r.resolveName(inst.RawName)
		key := normalizeKey(name)
		g, ok := groups[key]
		if !ok {
			g = &group{name: name, unitFamily: family, nonStandard: nonStandard}
			groups[key] = g
		}
		g.instances = append(g.instances, inst)
	}

	specs := make([]models.CanonicalSpec, 0, len(groups))
	for _, g := range groups {
		sortInstances(g.instances)
		resolved := bestInstance(g.instances)
		specs = append(specs, models.CanonicalSpec{
			StandardName:       g.name,
			UnitFamily:         g.unitFamily,
			Instances:          g.instances,
			ResolvedValue:      resolved.Value,
			ResolvedRawValue:   resolved.RawValue,
			ResolvedUnit:       resolved.Unit,
			ResolvedCondition:  resolved.Condition,
			ResolvedConfidence: resolved.Confidence,
			NonStandard:        g.nonStandard,
		})
	}
	sort.Slice(specs, func(i, j int) bool {
		return strings.ToLower(specs[i].StandardName) < strings.ToLower(specs[j].StandardName)
	})
	return specs
}

// resolveName maps a raw vendor name to a standard name.
func (r *Resolver) resolveName(raw string) (name, unitFamily string, nonStandard bool) {
	if std, family, ok := r.table.Lookup(raw); ok {
		return std, family, false
	}

	bestScore := 0.0
	bestName := ""
	for _, std := range r.table.StandardNames() {
		if score := Similarity(raw, std); score > bestScore {
			bestScore = score
			bestName = std
		}
	}
	if bestScore >= r.threshold {
		if r.logger != nil {
			r.logger.Debug("similarity fallback accepted",
				zap.String("raw", raw),
				zap.String("standard", bestName),
				zap.Float64("score", bestScore),
			)
		}
		return bestName, r.table.UnitFamily(bestName), false
	}

	if r.logger != nil {
		r.logger.Debug("no canonical match, keeping raw name", zap.String("raw", raw))
	}
	return raw, "", true
}

// sortInstances orders contributing instances deterministically: source file,
// then locator ordinal, then raw name, then raw value.
func sortInstances(instances []models.SpecInstance) {
	sort.Slice(instances, func(i, j int) bool {
		a, b := instances[i], instances[j]
		if a.Fragment.SourceFile != b.Fragment.SourceFile {
			return a.Fragment.SourceFile < b.Fragment.SourceFile
		}
		if a.Fragment.Locator.Ordinal != b.Fragment.Locator.Ordinal {
			return a.Fragment.Locator.Ordinal < b.Fragment.Locator.Ordinal
		}
		if a.RawName != b.RawName {
			return a.RawName < b.RawName
		}
		return a.RawValue < b.RawValue
	})
}

// bestInstance picks the instance providing the resolved value: highest
// confidence, ties broken by earliest fragment locator then source file.
func bestInstance(instances []models.SpecInstance) models.SpecInstance {
	best := instances[0]
	for _, inst := range instances[1:] {
		switch {
		case inst.Confidence > best.Confidence:
			best = inst
		case inst.Confidence == best.Confidence:
			if inst.Fragment.Locator.Ordinal < best.Fragment.Locator.Ordinal ||
				(inst.Fragment.Locator.Ordinal == best.Fragment.Locator.Ordinal &&
					inst.Fragment.SourceFile < best.Fragment.SourceFile) {
				best = inst
			}
		}
	}
	return best
}
