// Package testutil provides in-process test doubles for the surface agent.
//
// ScriptedAgent serves a prepared JSONL event stream over HTTP and records
// submitted actions, so client and end-to-end tests can run against real
// network transports without an external agent. StatusAgent answers with a
// fixed HTTP status for exercising failure classification. Helper functions
// build canned protocol lines for stream scripts.
package testutil
