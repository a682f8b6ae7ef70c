// Package webhooks fires the downstream rebuild triggers after a release.
//
// Each trigger is a pre-registered URL that rebuilds one container image when
// it receives an HTTP POST; the trigger token is embedded in the URL, so the
// request carries no body and no extra authentication. Triggers fire strictly
// in configuration order and the first failing call aborts the remainder.
// Responses are discarded beyond the status code.
package webhooks
