// Package docs documents fencer, a build-time pipeline that turns
// declarative YAML fenced blocks embedded in Markdown into interactive
// widgets.
//
// Fencer scans Markdown source for five recognized fence tags (quiz,
// terminal, exercise, command-builder, and code-walkthrough), validates
// each block's YAML body against its tag's schema, and replaces the
// block with an HTML fragment carrying both a static no-JavaScript
// rendering and a machine-readable payload the client runtime hydrates
// in the browser.
//
// # Quick Start
//
//	// Build the docs tree into the output directory
//	fencer build
//
//	// Validate every widget block without writing output
//	fencer check
//
//	// List all discovered widgets
//	fencer list
//
//	// Start the preview server with live reload
//	fencer serve
//
// # Architecture
//
// The pipeline is organized into small, single-purpose stages:
//
//   - CLI Commands (cmd/): Cobra-based command interface
//   - Fence Scanner (internal/scanner/): delimiter-aware fence location
//   - YAML Decoder (internal/decoder/): order-preserving mapping decode
//   - Schema Validator (internal/schema/): one validator per tag
//   - IR Builder (internal/ir/): stable widget identities and defaults
//   - HTML Emitter (internal/emitter/): fragments with embedded payloads
//   - Client Runtime (internal/hydrate/): hydration and widget state machines
//   - Preview Server (internal/server/): HTTP server with websocket reload
//
// # Configuration
//
// Fencer supports configuration through multiple sources:
//
//   - Configuration file (.fencer.yml)
//   - Environment variables (FENCER_*)
//   - Command-line flags
//
// Example configuration:
//
//	docs:
//	  source_dir: docs
//	  output_dir: site
//	  exclude_patterns:
//	    - node_modules
//	    - .git
//
//	build:
//	  strict: true
//	  workers: 4
//
//	server:
//	  port: 8080
//	  host: localhost
//
//	widgets:
//	  quiz:
//	    allow_retry: false
//
// # Failure Isolation
//
// A faulty block never takes down the build: it renders a visible
// placeholder and records diagnostics, which the end-of-build report
// prints per document. In strict mode any error-severity diagnostic
// makes the build exit non-zero after all documents have been
// processed.
//
// For more information, see the individual package documentation.
package docs
