// Package packaging builds and uploads Python distribution artifacts by
// shelling out to the configured python and twine binaries.
//
// The Client drives `python -m build` to produce source and wheel
// distributions in the staging dist directory, then `twine upload` pointed at
// the scoped credentials file. Command execution goes through an injectable
// Executor so tests can capture invocations without real tools installed.
// Project metadata (name and version) is read from pyproject.toml when
// present so release records identify what was published.
package packaging
