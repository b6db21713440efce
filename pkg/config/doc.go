// Package config loads Lattice configuration from environment variables.
//
// All variables are prefixed LATTICE_. The store backend is selected with
// LATTICE_STORE_TYPE (memory, postgres, redis); hierarchy cache behavior is
// tuned with LATTICE_CLOSURE_CACHE_SIZE, LATTICE_CLOSURE_CACHE_TTL and
// LATTICE_CACHE_REFRESH_SCHEDULE. See LoadConfig for defaults.
package config
