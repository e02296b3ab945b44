package git

import (
	"errors"
	"testing"
)

func TestMockRunnerRecordsCalls(t *testing.T) {
	mock := NewMockRunner("/tmp/pkg")

	if err := mock.Add("PKGBUILD", ".SRCINFO"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := mock.Commit("Update to 1.2.3", "Jane Doe", "jane@example.org"); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := mock.Push("origin", "master"); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	if len(mock.AddedPaths) != 1 || len(mock.AddedPaths[0]) != 2 {
		t.Errorf("AddedPaths = %v", mock.AddedPaths)
	}
	if mock.CommitMessage != "Update to 1.2.3" {
		t.Errorf("CommitMessage = %q", mock.CommitMessage)
	}
	if !mock.Pushed {
		t.Error("Pushed should be recorded")
	}
	if mock.WorkDir() != "/tmp/pkg" {
		t.Errorf("WorkDir = %q", mock.WorkDir())
	}
}

func TestMockRunnerDelegates(t *testing.T) {
	mock := NewMockRunner("/tmp/pkg")
	wantErr := errors.New("boom")
	mock.PushFunc = func(remote, branch string) error {
		if remote != "origin" || branch != "master" {
			t.Errorf("PushFunc got %s/%s", remote, branch)
		}
		return wantErr
	}

	if err := mock.Push("origin", "master"); !errors.Is(err, wantErr) {
		t.Errorf("Push should return the configured error, got %v", err)
	}
}
