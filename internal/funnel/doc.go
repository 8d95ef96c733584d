// Package funnel holds the funnel document model and the algorithms that
// keep it consistent across edits.
//
// A funnel is an ordered sequence of pages. Each page references a template
// (a reusable node tree), carries a data dictionary bound into that template
// at render time, and sits at a derived numeric path ("1".."N" in collection
// order). An event-routing table decides which page an event leads to.
//
// The package organizes the model by responsibility:
//
// # Node trees and bindings
//
// Node describes a UI fragment (kind, attributes, children). Attribute values
// and children may be binding references: sentinel-prefixed strings resolved
// against a page's data dictionary by Resolve and ResolveAll.
//
// # Graph
//
// Graph is the whole document: pages, template catalogue, event routing,
// theme, layout, split test, and broadcast targets. Graphs are treated as
// immutable values; every edit produces a new Graph via Clone, which is what
// lets session history retain snapshots by reference.
//
// # Consistency engine
//
// ReindexPages recomputes sequential paths after any structural edit.
// MigrateRoutes rewrites routing targets so that "continue to the next page"
// routes follow their owning page and "jump to that exact page" routes track
// page identity. Validate reports referential-integrity issues without ever
// failing.
//
// # Documents
//
// ImportDocument and ExportDocument move a Graph to and from its persisted
// JSON form. DefaultGraph builds the starter funnel used when no document is
// loaded.
package funnel
