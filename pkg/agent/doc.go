// Package agent defines the reasoning backend consumed by the dispatch
// layer: capabilities (named, tool-equipped reasoning units), the engine
// that executes them against a model provider, and the lazily produced
// event streams their runs emit.
package agent
