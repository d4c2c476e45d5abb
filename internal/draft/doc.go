// Package draft turns a project's timeline into prompts, sends them to an
// LLM, and stores the results as markdown drafts.
//
// Prompt templates are resolved in order:
//  1. .bloglog/templates/<name>.md (project-local)
//  2. <config dir>/templates/<name>.md (user global)
//  3. Built-in templates (embedded in binary)
//
// Built-ins are "timeline", "narrative" and "summarize".
package draft
