// Package internal contains the core implementation packages for fencer.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the fencer CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - types: shared data model (documents, fenced blocks, widget specs,
//     diagnostics, registry events)
//   - scanner: fence scanning with delimiter-length matching
//   - decoder: YAML decoding into an order-preserving mapping
//   - schema: per-tag validation producing typed widget specs
//   - ir: widget identity assignment and default resolution
//   - emitter: HTML fragment emission with embedded payloads
//   - pipeline: per-document orchestration and parallel processing
//   - diagnostics: build-wide diagnostic aggregation and reporting
//   - hydrate: client runtime for container discovery, payload decoding,
//     and per-widget state machines
//   - registry: widget registry and event broadcasting
//   - config: configuration management with validation
//   - logging: structured logging over slog
//   - watcher: file system monitoring with debouncing
//   - server: preview HTTP server with websocket live reload
//
// # Inter-Package Communication
//
// Build-time data flows one direction: scanner feeds decoder, decoder
// feeds schema, schema feeds ir, ir feeds emitter, and the pipeline
// package drives the whole chain per document. The hydrate package
// consumes only the emitter's output, never its inputs. The registry
// acts as the event hub for the preview server, and the diagnostics
// aggregator is the single piece of state shared across concurrent
// document workers.
//
// For detailed documentation, see the individual package documentation.
package internal
