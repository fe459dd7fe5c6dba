// Package taxonomy builds the controlled category hierarchy used to
// normalize free-form catalog labels.
//
// The source is line oriented. Each entry is a block of lines terminated
// by a blank line:
//
//	< en:Biscuits and cakes
//	en: Gingerbreads, gingerbread
//	de: Lebkuchen
//	wikidata:en: Q178600
//
// The first "en:" line names the canonical term; every English label in
// the block becomes a synonym. "<" lines name direct parents. Other
// languages and property lines are ignored. A block whose first language
// line is not English is skipped and reported through Graph.Skipped.
package taxonomy

import (
	"bufio"
	"context"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/mieux-choisir/foodmap/pkg/constants"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
)

var (
	// propertyLine matches "wikidata:en: Q178600" and "stopwords:fr: aux".
	propertyLine = regexp.MustCompile(`^[a-z][a-z0-9_]*:[a-z]{2,3}(?:[_-][a-z]{2,4})?:`)
	// languageLine matches "en: Gingerbreads" and "pt_br: Biscoitos".
	languageLine = regexp.MustCompile(`^([a-z]{2,3}(?:[_-][a-z]{2,4})?)\s*:\s*(.*)$`)
)

// Graph is an immutable taxonomy keyed by canonical term. It is safe for
// concurrent readers.
type Graph struct {
	source    string
	nodes     map[string]*Node
	order     []string
	bySynonym map[string][]string
	skipped   []error
}

// Option configures parsing.
type Option func(*options)

type options struct {
	source string
}

// WithSource names the taxonomy source in errors and logs.
func WithSource(name string) Option {
	return func(o *options) {
		o.source = name
	}
}

// Load parses the taxonomy file at path.
func Load(ctx context.Context, path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	return Parse(ctx, f, WithSource(path))
}

// Parse reads a taxonomy. Malformed blocks are skipped and recorded in
// Skipped; only read failures are returned as errors.
func Parse(ctx context.Context, r io.Reader, opts ...Option) (*Graph, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	g := &Graph{
		source:    o.source,
		nodes:     make(map[string]*Node),
		bySynonym: make(map[string][]string),
	}
	b := &blockParser{graph: g}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), constants.ScannerBufferSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		b.feed(lineNo, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapIO("read", o.source, err)
	}
	b.finish()

	logger := logging.FromContext(ctx)
	for _, err := range g.skipped {
		logger.Warn().Err(err).Msg("Skipped taxonomy block")
	}
	logger.Debug().
		Str("source", o.source).
		Int("terms", len(g.order)).
		Int("skipped", len(g.skipped)).
		Msg("Taxonomy loaded")

	return g, nil
}

// blockParser accumulates one block at a time.
type blockParser struct {
	graph *Graph

	sawLang bool
	skip    bool
	node    *Node
	parents []string
}

func (b *blockParser) feed(lineNo int, raw string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		b.finish()
		return
	}
	if b.skip || strings.HasPrefix(line, "#") {
		return
	}

	if strings.HasPrefix(line, "<") {
		parent := strings.TrimSpace(strings.TrimPrefix(line, "<"))
		if m := languageLine.FindStringSubmatch(parent); m != nil && m[1] == constants.CanonicalLanguage && strings.TrimSpace(m[2]) != "" {
			b.parents = append(b.parents, NormalizeTerm(m[2]))
		}
		return
	}
	if propertyLine.MatchString(line) {
		return
	}
	m := languageLine.FindStringSubmatch(line)
	if m == nil {
		return
	}
	lang, value := m[1], m[2]

	if !b.sawLang {
		b.sawLang = true
		if lang != constants.CanonicalLanguage {
			b.reject(lineNo, line, "first language line is not "+constants.CanonicalPrefix)
			return
		}
		labels := splitLabels(value)
		if len(labels) == 0 {
			b.reject(lineNo, line, "empty canonical term")
			return
		}
		b.node = b.graph.nodeFor(NormalizeTerm(labels[0]))
	}
	if lang != constants.CanonicalLanguage {
		return
	}
	for _, label := range splitLabels(value) {
		b.graph.addSynonym(b.node, NormalizeTerm(label))
	}
}

func (b *blockParser) reject(lineNo int, line, reason string) {
	b.skip = true
	b.graph.skipped = append(b.graph.skipped, errors.NewMalformedTaxonomyError(b.graph.source, lineNo, line, reason))
}

func (b *blockParser) finish() {
	if b.node != nil && !b.skip {
		for _, p := range b.parents {
			if p != b.node.Term {
				b.node.parents[p] = struct{}{}
			}
		}
	}
	*b = blockParser{graph: b.graph}
}

// nodeFor returns the node for term, creating it in source order.
func (g *Graph) nodeFor(term string) *Node {
	if n, ok := g.nodes[term]; ok {
		return n
	}
	n := newNode(term)
	g.nodes[term] = n
	g.order = append(g.order, term)
	g.bySynonym[term] = append(g.bySynonym[term], term)
	return n
}

func (g *Graph) addSynonym(n *Node, synonym string) {
	if n.HasSynonym(synonym) {
		return
	}
	n.synonyms[synonym] = struct{}{}
	g.bySynonym[synonym] = append(g.bySynonym[synonym], n.Term)
}

// Source returns the name given with WithSource.
func (g *Graph) Source() string { return g.source }

// Len returns the number of canonical terms.
func (g *Graph) Len() int { return len(g.order) }

// Node returns the node for a canonical term.
func (g *Graph) Node(term string) (*Node, bool) {
	n, ok := g.nodes[term]
	return n, ok
}

// Contains reports whether term is a canonical term.
func (g *Graph) Contains(term string) bool {
	_, ok := g.nodes[term]
	return ok
}

// Terms returns canonical terms in source order.
func (g *Graph) Terms() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Nodes returns all nodes in source order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, term := range g.order {
		out[i] = g.nodes[term]
	}
	return out
}

// NodesWithSynonym returns, in source order, every node whose synonym
// set contains label.
func (g *Graph) NodesWithSynonym(label string) []*Node {
	terms := g.bySynonym[label]
	if len(terms) == 0 {
		return nil
	}
	out := make([]*Node, len(terms))
	for i, term := range terms {
		out[i] = g.nodes[term]
	}
	return out
}

// Ancestors returns every transitive parent of term, nearest first.
func (g *Graph) Ancestors(term string) []string {
	n, ok := g.nodes[term]
	if !ok {
		return nil
	}
	seen := map[string]struct{}{term: {}}
	var out []string
	queue := n.Parents()
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
		if pn, ok := g.nodes[p]; ok {
			queue = append(queue, pn.Parents()...)
		}
	}
	return out
}

// Skipped returns the malformed blocks dropped while parsing.
func (g *Graph) Skipped() []error {
	out := make([]error, len(g.skipped))
	copy(out, g.skipped)
	return out
}
