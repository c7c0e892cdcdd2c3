// Package worldmap implements the translator world-map: a directed
// multigraph over circuit variant kinds whose edges are translator
// classes, from which concrete conversion sequences are enumerated and
// sampled.
package worldmap

import (
	"fmt"
	"sort"

	"verihammer/internal/circuit"
)

// EdgePattern is one (source, sink) pair a Translator declares itself
// capable of producing. Sink matching is polymorphic: an edge matches
// when a candidate sink kind IsSubtype of the declared sink.
type EdgePattern struct {
	Src  circuit.Kind
	Sink circuit.Kind
}

// TranslatorFactory builds a fresh Translator instance parameterized by
// a chosen set of CmdlineOption values.
type TranslatorFactory interface {
	// Name identifies the translator class for strategy serialization.
	Name() string
	// Edges lists every (src, sink) pair this translator class can
	// produce.
	Edges() []EdgePattern
	// AlternativeOptions lists the CmdlineOptions this translator class
	// exposes for sampling.
	AlternativeOptions() []CmdlineOption
	// New builds a translator instance configured with the chosen
	// options (a subset of AlternativeOptions(), each possibly "absent").
	New(chosen []CmdlineOption) Translator
}

// Translator is a configured, ready-to-run translator instance: one edge
// traversal in a Conversion.
type Translator interface {
	// Apply runs this translator over c, producing the next circuit in
	// the chain.
	Apply(c circuit.Circuit) (circuit.Circuit, error)
	// Policy captures the extra_args this instance was configured with,
	// for strategy-file serialization.
	Policy() Policy
}

// Policy is the serializable configuration of one translator instance:
// enough to reconstruct it for replay.
type Policy struct {
	TranslatorName string   `json:"translator"`
	ExtraArgs      []string `json:"extra_args"`
}

// registry is populated by explicit Register calls (translators.Register
// installs the concrete translators), standing in for the Python
// original's metaclass-based registration at class-definition time.
var registry = map[string]TranslatorFactory{}

// Register adds f to the global translator registry, replacing any
// factory already registered under the same name.
func Register(f TranslatorFactory) {
	registry[f.Name()] = f
}

// Factories returns every registered translator factory, in a stable
// (name-sorted) order.
func Factories() []TranslatorFactory {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]TranslatorFactory, len(names))
	for i, n := range names {
		out[i] = registry[n]
	}
	return out
}

// IsSubtype reports whether kind satisfies an edge declared for sink —
// the Go stand-in for the original's `issubclass` sink matching. Our
// Circuit kinds form a flat enum rather than a class hierarchy, so this
// is identity except where a flavor explicitly subsumes another (none do
// yet); kept as a named hook so a future flavor hierarchy has a single
// place to extend.
func IsSubtype(kind, sink circuit.Kind) bool {
	return kind == sink
}

// Graph is the directed multigraph of circuit kinds built from every
// registered translator's declared edges.
type Graph struct {
	edges map[circuit.Kind][]edgeRef
}

type edgeRef struct {
	sink    circuit.Kind
	factory TranslatorFactory
}

// BuildGraph constructs a Graph from every currently registered
// translator factory.
func BuildGraph() *Graph {
	g := &Graph{edges: make(map[circuit.Kind][]edgeRef)}
	for _, f := range Factories() {
		for _, e := range f.Edges() {
			g.edges[e.Src] = append(g.edges[e.Src], edgeRef{sink: e.Sink, factory: f})
		}
	}
	return g
}

// Travel returns every simple edge path from src to any kind that
// IsSubtype of sink.
func (g *Graph) Travel(src, sink circuit.Kind) [][]TranslatorFactory {
	var results [][]TranslatorFactory
	visited := map[circuit.Kind]bool{src: true}
	var dfs func(cur circuit.Kind, acc []TranslatorFactory)
	dfs = func(cur circuit.Kind, acc []TranslatorFactory) {
		if IsSubtype(cur, sink) && len(acc) > 0 {
			cp := make([]TranslatorFactory, len(acc))
			copy(cp, acc)
			results = append(results, cp)
		}
		for _, e := range g.edges[cur] {
			if visited[e.sink] {
				continue
			}
			visited[e.sink] = true
			dfs(e.sink, append(acc, e.factory))
			visited[e.sink] = false
		}
	}
	dfs(src, nil)
	return results
}

// Conversion is an ordered chain of translator instances.
type Conversion struct {
	Steps []Translator
}

// ApplyTo threads c through every step of the chain, stopping (and
// failing the whole Conversion) at the first step that errors.
func (conv *Conversion) ApplyTo(c circuit.Circuit) (circuit.Circuit, error) {
	cur := c
	for i, step := range conv.Steps {
		next, err := step.Apply(cur)
		if err != nil {
			return nil, fmt.Errorf("worldmap: conversion step %d (%s): %w", i, step.Policy().TranslatorName, err)
		}
		cur = next
	}
	return cur, nil
}

// StrategyJSON is the persisted strategy-file shape for one Conversion:
// enough to reconstruct the translator chain (spec.md §6).
func (conv *Conversion) StrategyJSON() []Policy {
	out := make([]Policy, len(conv.Steps))
	for i, s := range conv.Steps {
		out[i] = s.Policy()
	}
	return out
}
