package update

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
)

var (
	// ErrMakepkgCommand is returned when a makepkg/updpkgsums invocation fails
	ErrMakepkgCommand = errors.New("makepkg command failed")
)

// Makepkg is the build collaborator: everything the updater delegates to the
// package build tooling.
type Makepkg interface {
	// Build compiles the package locally to verify the rewritten descriptor.
	// When clean is true, build artifacts are removed afterwards.
	Build(clean bool) error

	// UpdateChecksums regenerates the checksum arrays in the descriptor
	UpdateChecksums() error

	// PrintSrcinfo renders the derived metadata (.SRCINFO) from the descriptor
	PrintSrcinfo() (string, error)
}

// MakepkgRunner shells out to makepkg and updpkgsums in a package directory
type MakepkgRunner struct {
	dir string
}

// NewMakepkgRunner creates a runner operating in the given package directory
func NewMakepkgRunner(dir string) *MakepkgRunner {
	return &MakepkgRunner{dir: dir}
}

// runCommand executes a command in the package directory
func (m *MakepkgRunner) runCommand(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = m.dir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	if err != nil {
		stderr := strings.TrimSpace(stderrBuf.String())
		if stderr != "" {
			err = errors.Join(ErrMakepkgCommand, errors.New(stderr))
		}
		return stdoutBuf.String(), err
	}
	return stdoutBuf.String(), nil
}

// Build runs makepkg against the rewritten descriptor
func (m *MakepkgRunner) Build(clean bool) error {
	args := []string{"-f", "--noconfirm"}
	if clean {
		args = append(args, "-c")
	}
	_, err := m.runCommand("makepkg", args...)
	return err
}

// UpdateChecksums runs updpkgsums to regenerate the checksum arrays
func (m *MakepkgRunner) UpdateChecksums() error {
	_, err := m.runCommand("updpkgsums")
	return err
}

// PrintSrcinfo renders .SRCINFO content from the descriptor
func (m *MakepkgRunner) PrintSrcinfo() (string, error) {
	return m.runCommand("makepkg", "--printsrcinfo")
}

// MockMakepkg implements Makepkg for testing.
// Each method can be configured with a custom function to control behavior.
type MockMakepkg struct {
	BuildFunc           func(clean bool) error
	UpdateChecksumsFunc func() error
	PrintSrcinfoFunc    func() (string, error)

	// Recorded calls for assertions
	BuildCalls    []bool
	ChecksumCalls int
	SrcinfoCalls  int
}

// Build records the call and delegates to BuildFunc if set
func (m *MockMakepkg) Build(clean bool) error {
	m.BuildCalls = append(m.BuildCalls, clean)
	if m.BuildFunc != nil {
		return m.BuildFunc(clean)
	}
	return nil
}

// UpdateChecksums records the call and delegates to UpdateChecksumsFunc if set
func (m *MockMakepkg) UpdateChecksums() error {
	m.ChecksumCalls++
	if m.UpdateChecksumsFunc != nil {
		return m.UpdateChecksumsFunc()
	}
	return nil
}

// PrintSrcinfo records the call and delegates to PrintSrcinfoFunc if set
func (m *MockMakepkg) PrintSrcinfo() (string, error) {
	m.SrcinfoCalls++
	if m.PrintSrcinfoFunc != nil {
		return m.PrintSrcinfoFunc()
	}
	return "", nil
}

// Ensure both implementations satisfy the interface
var (
	_ Makepkg = (*MakepkgRunner)(nil)
	_ Makepkg = (*MockMakepkg)(nil)
)
