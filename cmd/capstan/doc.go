// Command capstan is the release automation CLI. It builds a Python package,
// uploads it to the configured index, and fires ordered webhook triggers that
// rebuild downstream container images.
package main
