package git

// MockRunner implements Executor for testing.
// Each method can be configured with a custom function to control behavior.
type MockRunner struct {
	AddFunc    func(paths ...string) error
	CommitFunc func(message, user, email string) error
	PushFunc   func(remote, branch string) error
	workDir    string

	// Recorded calls for assertions
	AddedPaths    [][]string
	CommitMessage string
	Pushed        bool
}

// NewMockRunner creates a new MockRunner with the specified working directory
func NewMockRunner(workDir string) *MockRunner {
	return &MockRunner{
		workDir: workDir,
	}
}

// Add stages files for commit
func (m *MockRunner) Add(paths ...string) error {
	m.AddedPaths = append(m.AddedPaths, paths)
	if m.AddFunc != nil {
		return m.AddFunc(paths...)
	}
	return nil
}

// Commit creates a git commit with the specified message and author
func (m *MockRunner) Commit(message, user, email string) error {
	m.CommitMessage = message
	if m.CommitFunc != nil {
		return m.CommitFunc(message, user, email)
	}
	return nil
}

// Push pushes commits to the given remote and branch
func (m *MockRunner) Push(remote, branch string) error {
	m.Pushed = true
	if m.PushFunc != nil {
		return m.PushFunc(remote, branch)
	}
	return nil
}

// WorkDir returns the working directory of the git repository
func (m *MockRunner) WorkDir() string {
	return m.workDir
}

// Ensure MockRunner implements Executor interface
var _ Executor = (*MockRunner)(nil)
