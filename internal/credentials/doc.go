// Package credentials generates the scoped package-index credentials file.
//
// The file uses the INI-style pypirc layout twine expects: a distutils section
// naming the index server followed by a per-repository section carrying the
// upload endpoint and the account secrets. The file is written with owner-only
// permissions for the duration of a release run and removed on every exit
// path, so secrets never linger in a stale file between runs.
package credentials
