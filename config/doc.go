// Package config provides a step registry and human-readable pipeline
// configuration.
//
// Register steps by name (Register for direct operations, RegisterResults
// for results-accessor steps), then define pipelines in YAML (or structs)
// that reference those names and optional per-step policies:
//
//	name: enroll
//	transactional: true
//	steps:
//	  - insert-user
//	  - name: insert-books
//	    retry: 2
//	    timeout: 5s
//	  - name: notify
//	    capture_errors: true
//
// Build a bound pipeline with Build(registry, config, handle, adapter).
// Transactional configs require an adapter at build time so misconfiguration
// surfaces before Invoke.
package config
