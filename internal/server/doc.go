// Package server is the bloglog web server: a JSON API over one project's
// store, a server-sent events feed of timeline changes, and a small
// timeline page.
//
// Routes:
//
//	GET  /                 timeline page
//	GET  /health           liveness
//	GET  /api/metadata     project metadata, or null
//	POST /api/metadata     create or update metadata
//	GET  /api/timeline     {"entries": [...]}
//	POST /api/capture      record a conversation summary
//	GET  /api/scratchpad   {"content": "..."}
//	POST /api/scratchpad   replace the scratchpad
//	POST /api/generate     write a draft
//	POST /api/summarize    summarize a conversation
//	GET  /api/events       server-sent events
package server
