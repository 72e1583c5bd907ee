// Package orchestrator ties submissions, runners, the registry and the
// router together. Every method except Shutdown must be called from the
// single consumer loop that also calls Tick; runners and fetchers reach the
// loop only through progress channels and mailboxes.
package orchestrator
