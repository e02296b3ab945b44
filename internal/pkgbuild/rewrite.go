package pkgbuild

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrNoVersionField is returned when the rewrite scan never saw a pkgver
	// assignment. Guards against silently producing an unchanged file.
	ErrNoVersionField = errors.New("no pkgver assignment found in descriptor")
)

var (
	pkgverLineRegex   = regexp.MustCompile(`^pkgver=`)
	pkgrelLineRegex   = regexp.MustCompile(`^pkgrel=`)
	providesLineRegex = regexp.MustCompile(`^provides=\(`)
)

// RewriteResult describes what a rewrite changed
type RewriteResult struct {
	// Text is the full rewritten descriptor
	Text string
	// VersionChanged is true when a pkgver line was replaced
	VersionChanged bool
	// RevisionReset is true when at least one pkgrel line was reset to 1
	RevisionReset bool
	// ProvidesStamped is true when the provides array was re-stamped
	ProvidesStamped bool
}

// Rewrite performs a single top-to-bottom scan over the descriptor text and
// produces a new text with exactly these edits:
//
//   - the first pkgver= line is replaced with the target version; later
//     matches (e.g. inside a pkgver() body) pass through unchanged
//   - every pkgrel= line is reset to 1, since a version bump always restarts
//     the packaging revision
//   - for fixed-version packages the provides array is re-stamped as
//     provides=(<name>=<currentVersion>), where name is the first provided
//     name; a multi-line provides array collapses onto the stamped line;
//     version-controlled packages never carry a version-pinned provides
//
// All other lines are emitted byte-identical. If no pkgver line was seen the
// rewrite fails with ErrNoVersionField and no output is produced.
func Rewrite(text, target string, vcs bool, currentVersion, firstProvide string) (*RewriteResult, error) {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	result := &RewriteResult{}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case pkgverLineRegex.MatchString(line) && !result.VersionChanged:
			out = append(out, "pkgver="+target)
			result.VersionChanged = true
		case pkgrelLineRegex.MatchString(line):
			out = append(out, "pkgrel=1")
			result.RevisionReset = true
		case providesLineRegex.MatchString(line) && !vcs && firstProvide != "":
			name := firstProvide
			if j := strings.Index(name, "="); j >= 0 {
				name = name[:j]
			}
			out = append(out, "provides=("+name+"="+currentVersion+")")
			result.ProvidesStamped = true
			// Swallow continuation lines of a multi-line array so the
			// stamped replacement does not leave dangling items behind
			for !strings.Contains(line, ")") && i+1 < len(lines) {
				i++
				line = lines[i]
			}
		default:
			out = append(out, line)
		}
	}

	if !result.VersionChanged {
		return nil, fmt.Errorf("%w: target %q", ErrNoVersionField, target)
	}

	result.Text = strings.Join(out, "\n")
	return result, nil
}

// WriteFileAtomic writes data to path by way of a temporary file in the same
// directory and an atomic rename, so an interrupted run can never leave a
// partially written descriptor behind.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
