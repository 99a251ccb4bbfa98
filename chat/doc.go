// Package chat owns the durable conversation session: the ordered message
// list mutated by user and assistant turns, and its persistence to JSON
// documents on disk. Saving a conversation triggers best-effort housekeeping
// calls (title and summary generation) through a retry policy, so one
// transient service failure never aborts the session.
//
// The session is exclusively owned by the interactive loop; nothing here is
// safe for concurrent mutation and nothing needs to be.
package chat
