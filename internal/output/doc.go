// Package output renders command results for the bl CLI and defines its
// exit-code error types.
//
// Every command writes through a Printer, which switches between styled
// human output and JSON depending on the --json flag:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd))
//	if printer.IsJSON() {
//		return printer.WriteJSON(map[string]any{"entry": entry})
//	}
//	printer.Println("Entry ID: " + entry.ID)
//
// In JSON mode an error prints {"error": "...", "code": N}. In human mode
// lipgloss styles are applied only when the writer is a terminal.
//
// # Exit Codes
//
//	output.ExitSuccess     // 0: also used when a server is already running
//	output.ExitUserError   // 1: bad input, no project found, project already initialized
//	output.ExitSystemError // 2: I/O, git, or provider failure
//
// Commands return *ExitError values built with NewUserError, NewSystemError
// or their WithCause variants; main maps them to the process exit status
// with GetExitCode.
package output
