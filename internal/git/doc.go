// Package git runs the git executable on behalf of the bl CLI.
//
// Commands are executed with exec, stdout is captured and trimmed, and
// failures are translated to *output.ExitError values:
//   - ExitSystemError (2) when git is missing or a command fails
//
// Recording a commit:
//
//	hash, err := git.Commit(ctx, "", "Add parser")
//	if errors.Is(err, git.ErrNothingToCommit) {
//	    // working tree clean
//	}
package git
