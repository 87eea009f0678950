// Package state holds the canonical in-memory lead and task collections.
//
// # Overview
//
// The workspace writes fetched pages and acknowledged mutations into a Store;
// the UI reads immutable snapshots from it. The Store is the single place
// where a lead embedded in a task response meets the lead list.
//
// # Update Semantics
//
//	// Success: replace the collection, clear the error
//	store.UpdateLeads(leads, total, nil)
//	→ snapshot.Leads = leads
//	→ snapshot.LastError = nil
//	→ snapshot.ConsecutiveFailures = 0
//
//	// Failure: keep the old data, record the error
//	store.UpdateLeads(nil, 0, err)
//	→ snapshot.Leads = <unchanged>
//	→ snapshot.LastError = err
//	→ snapshot.ConsecutiveFailures++
//
// UpdateTodos also merges every embedded lead into the lead collection by id.
// The embedded copy is partial, so only its populated fields overwrite what
// is held (see crm.Lead.Merge).
//
// Mutations acknowledged by the API are applied with AddLead, PatchLead,
// AddTodo and PatchTodo, which stamp UpdatedAt. They never record errors:
// failed mutations are returned to the caller and leave the store untouched.
//
// # Concurrency Model
//
// Writes take the write lock, Snapshot takes the read lock, and both copy
// slices so neither side can observe the other's mutations. The zero Store is
// ready to use.
package state
