package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAddRejectsPathOutsideRepo(t *testing.T) {
	runner := NewRunner(t.TempDir())

	if err := runner.Add("../escape.txt"); !errors.Is(err, ErrPathOutsideRepo) {
		t.Errorf("want ErrPathOutsideRepo, got %v", err)
	}
	if err := runner.Add("/etc/passwd"); !errors.Is(err, ErrPathOutsideRepo) {
		t.Errorf("absolute path outside repo: want ErrPathOutsideRepo, got %v", err)
	}
}

func TestAddRejectsMissingFile(t *testing.T) {
	runner := NewRunner(t.TempDir())

	if err := runner.Add("does-not-exist.txt"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("want ErrFileNotFound, got %v", err)
	}
}

func TestAddAcceptsFileInsideRepo(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "PKGBUILD"), []byte("pkgname=foo\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	runner := NewRunner(dir)
	// Validation passes; the git invocation itself fails because the
	// directory is not a repository, which is fine for this test.
	err := runner.Add("PKGBUILD")
	if errors.Is(err, ErrPathOutsideRepo) || errors.Is(err, ErrFileNotFound) {
		t.Errorf("path validation should accept a file inside the repo, got %v", err)
	}
}

func TestWorkDir(t *testing.T) {
	runner := NewRunner("/tmp/pkg")
	if runner.WorkDir() != "/tmp/pkg" {
		t.Errorf("WorkDir = %q", runner.WorkDir())
	}
}
