// Package vault provides the note actions the model can call: searching the
// vault, editing front matter, creating notes, appending to notes and
// listing the documents of a folder for bulk edits.
//
// Every action returns plain text for the model. Expected failures are
// returned as *tools.ActionError so the orchestrator can report them as text.
package vault
