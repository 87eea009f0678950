// Package ui provides the terminal user interface for leaddesk.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds all screen state and talks to
// the rest of the application through a small set of collaborators:
//
//   - workspace.Workspace: lead and task mutations, the active lead focus
//   - workspace.Lists: the cached, deduplicating fetchers behind each list
//   - uistate.Manager: persisted page, sort, search, filter and tab state
//   - session.Gate: the PIN session that guards everything else
//
// Fetches and mutations run as tea.Cmd functions and report back as
// messages, so Update never blocks on the network.
//
// # Package Structure
//
//   - model.go: the root model, message routing and view switching
//   - commands.go: fetch and mutation commands and their result messages
//   - leads.go, todos.go, calendar.go, activity.go: one file per view
//   - login.go: the PIN prompt
//   - modal.go: search, filter and lead editor dialogs
//   - table.go: column layout shared by the list views
//   - header.go, toast.go: status bar, view tabs and notices
//   - theme.go, keys.go, help.go: presentation and key bindings
//
// # Refresh Flow
//
//  1. app.Refresher sends RefreshMsg on its schedule, on focus and on
//     reconnect; cache invalidations arrive the same way with a Topic
//  2. Model.load fetches what the current view shows, in the background
//     when rows are already on screen
//  3. Results land in leadsMsg/todosMsg and refresh the header snapshot
//  4. Workspace notices arrive as NoticeMsg and show as toasts
//
// # Views
//
//   - Leads: paged lead table with search, filters and the lead editor
//   - Todos: tasks by type section and by due-date or status tab
//   - Calendar: a seven day agenda of scheduled tasks
//   - Activity: the tail of the application log, filtered by level
package ui
