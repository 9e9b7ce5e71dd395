// Package schema defines the UI schema document: a versioned, immutable
// description of a generated interface made of a layout, an ordered tree of
// component nodes, and metadata about the request that produced it.
//
// Documents are values. Every helper that changes a document works on a deep
// clone, so a committed document can be shared with renderers and
// subscribers without defensive copying on their side. Evolution operations
// (add, remove, update, morph, reorder) are described by Operation and
// applied by the evolution package.
package schema
