// Package store provides edge store implementations for the hierarchy
// core.
//
// The hierarchy package talks to persistence through two narrow
// interfaces: an EdgeReader that returns the raw CHILD:PARENT values for a
// (kind, context) pair, and an EdgeWriter that applies a batch of
// add/replace/delete value mutations. This package ships three
// implementations:
//
//   - MemoryStore: in-process, for tests and embedding
//   - SQLStore: a single hierarchy_edges table on PostgreSQL (SQLite in
//     tests), with audit columns and transactional batches
//   - RedisStore: one Redis set per (kind, context), pipelined mutations
//
// New selects a backend from a Config, which pkg/config populates from the
// environment.
package store
