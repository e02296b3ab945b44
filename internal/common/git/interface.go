package git

// Executor defines the interface for git operations.
// This interface allows for mocking git operations in tests.
type Executor interface {
	// Add stages files for commit
	Add(paths ...string) error

	// Commit creates a git commit with the specified message and author
	Commit(message, user, email string) error

	// Push pushes commits to the given remote and branch
	Push(remote, branch string) error

	// WorkDir returns the working directory of the git repository
	WorkDir() string
}
