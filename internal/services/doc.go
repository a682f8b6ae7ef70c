// Package services provides cross-cutting error classification and context
// plumbing shared by pipeline stages and their clients.
//
// The sentinel errors let callers tag failures from external tools, bad
// configuration, or validation so the pipeline and CLI can present them
// consistently. The context helpers carry the release run identifier and the
// active stage name so structured logs stay correlated without threading extra
// parameters through every call.
package services
