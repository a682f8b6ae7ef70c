// Package preflight verifies a release can plausibly succeed before any side
// effect happens: directories are writable, the project looks like a Python
// package, credentials are present, and the external tools exist.
package preflight
