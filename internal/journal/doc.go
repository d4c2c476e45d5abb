// Package journal stores a project's development timeline.
//
// A project is any directory containing a .bloglog marker directory:
//
//	.bloglog/metadata.json   project name, problem, goals, success criteria
//	.bloglog/timeline.json   {"entries": [...]}, append-only
//	.bloglog/scratchpad.md   free-form notes, not part of the timeline
//	.bloglog/drafts/         generated markdown
//
// FindRoot locates the nearest project from a working directory and Init
// creates one. A Store reads and rewrites the documents of a single project.
// Every read loads the whole document and every write replaces it with a
// rename, so readers never observe a partially written file. Read-modify-write
// operations hold an exclusive lock on .bloglog/.lock for their duration.
package journal
