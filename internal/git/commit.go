package git

import (
	"context"
	"errors"
	"strings"
)

// ErrNothingToCommit is returned by Commit when git reports a clean tree.
var ErrNothingToCommit = errors.New("nothing to commit, working tree clean")

// Commit runs `git commit -m message` in dir and returns the new HEAD SHA.
// Only already-staged changes are committed.
func Commit(ctx context.Context, dir, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", errors.New("commit message is empty")
	}

	if _, err := RunContext(ctx, dir, "commit", "-m", message); err != nil {
		if isNothingToCommit(err) {
			return "", ErrNothingToCommit
		}
		return "", err
	}
	return HEAD(ctx, dir)
}

// ShortHash abbreviates a SHA to seven characters.
func ShortHash(sha string) string {
	if len(sha) <= 7 {
		return sha
	}
	return sha[:7]
}

func isNothingToCommit(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "nothing to commit") ||
		strings.Contains(msg, "nothing added to commit") ||
		strings.Contains(msg, "no changes added to commit")
}
