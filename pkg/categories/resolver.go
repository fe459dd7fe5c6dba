// Package categories resolves free-form catalog category labels to
// canonical taxonomy terms.
//
// Same-catalog labels are listed generic first ("en:snacks, en:biscuits").
// The resolver scans them most specific first and keeps every matched
// term until it meets a term that is a direct parent of one already kept;
// at that point the remaining, more generic labels are ignored. Labels
// that match nothing resolve to "en:other".
//
// Foreign-catalog labels go through a cross-catalog map whose synonyms
// are resolved against the same taxonomy.
package categories

import (
	"strings"

	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/taxonomy"
)

// Resolver maps raw labels to canonical terms. It holds only immutable
// data and is safe for concurrent use.
type Resolver struct {
	graph   *taxonomy.Graph
	mapping *taxonomy.CrossCatalogMap
	// normalized foreign label -> mapping key
	foreign map[string]string
}

// New creates a resolver. mapping may be nil, in which case every foreign
// label resolves to an empty list.
func New(graph *taxonomy.Graph, mapping *taxonomy.CrossCatalogMap) *Resolver {
	r := &Resolver{
		graph:   graph,
		mapping: mapping,
		foreign: make(map[string]string, mapping.Len()),
	}
	for _, label := range mapping.Labels() {
		key := ForeignLabelToTerm(label)
		if _, dup := r.foreign[key]; !dup {
			r.foreign[key] = label
		}
	}
	return r
}

// Graph returns the taxonomy the resolver reads.
func (r *Resolver) Graph() *taxonomy.Graph { return r.graph }

// Mapping returns the cross-catalog map, possibly nil.
func (r *Resolver) Mapping() *taxonomy.CrossCatalogMap { return r.mapping }

// ResolveFromSameCatalog resolves labels written in the taxonomy's own
// vocabulary. Each argument may itself be a comma-joined list. The result
// is never empty.
func (r *Resolver) ResolveFromSameCatalog(raw ...string) []string {
	labels := splitReversed(raw)

	var result []*taxonomy.Node
	seen := make(map[string]struct{})
scan:
	for _, label := range labels {
		for _, node := range r.lookup(label) {
			for _, kept := range result {
				if kept.HasParent(node.Term) {
					break scan
				}
			}
			if _, dup := seen[node.Term]; dup {
				continue
			}
			seen[node.Term] = struct{}{}
			result = append(result, node)
		}
	}

	if len(result) == 0 {
		return []string{constants.UncategorizedTerm}
	}
	terms := make([]string, len(result))
	for i, n := range result {
		terms[i] = n.Term
	}
	return terms
}

// ResolveFromForeignCatalog resolves a foreign catalog label through the
// cross-catalog map. The label is looked up verbatim, then by its
// ForeignLabelToTerm form. For every mapped synonym the first taxonomy
// node carrying it contributes its term, so two synonyms of one node yield
// that term twice. The result may be empty.
func (r *Resolver) ResolveFromForeignCatalog(rawLabel string) []string {
	if r.graph == nil {
		return []string{}
	}
	synonyms, ok := r.mapping.Lookup(rawLabel)
	if !ok {
		key, found := r.foreign[ForeignLabelToTerm(rawLabel)]
		if !found {
			return []string{}
		}
		synonyms, _ = r.mapping.Lookup(key)
	}

	terms := make([]string, 0, len(synonyms))
	for _, synonym := range synonyms {
		if nodes := r.graph.NodesWithSynonym(synonym); len(nodes) > 0 {
			terms = append(terms, nodes[0].Term)
		}
	}
	return terms
}

// lookup finds the nodes a label names. Labels without a language prefix,
// or with an English one, fall back to their normalized form.
func (r *Resolver) lookup(label string) []*taxonomy.Node {
	if r.graph == nil {
		return nil
	}
	if nodes := r.graph.NodesWithSynonym(label); len(nodes) > 0 {
		return nodes
	}
	if lang, _, ok := strings.Cut(label, ":"); ok && !strings.EqualFold(lang, constants.CanonicalLanguage) && isLanguageCode(lang) {
		return nil
	}
	return r.graph.NodesWithSynonym(taxonomy.NormalizeTerm(label))
}

func isLanguageCode(s string) bool {
	if len(s) < 2 || len(s) > 3 {
		return false
	}
	for _, c := range s {
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// splitReversed flattens comma-joined labels, drops blanks and reverses
// the order so the most specific label comes first.
func splitReversed(raw []string) []string {
	var labels []string
	for _, chunk := range raw {
		for _, label := range strings.Split(chunk, ",") {
			if label = strings.TrimSpace(label); label != "" {
				labels = append(labels, label)
			}
		}
	}
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return labels
}
