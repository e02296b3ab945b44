package pkgbuild

import (
	"errors"
	"testing"
)

func TestIsVCS(t *testing.T) {
	tests := []struct {
		dir    string
		marker string
		want   bool
	}{
		{"foo", "-git", false},
		{"foo-git", "-git", true},
		{"foo-git-docs", "-git", true},
		{"foo-bin", "-git", false},
		{"foo", "", false},
		{"foo-git", "", true}, // empty marker falls back to -git
		{"foo-svn", "-svn", true},
	}

	for _, tt := range tests {
		if got := IsVCS(tt.dir, tt.marker); got != tt.want {
			t.Errorf("IsVCS(%q, %q) = %v, want %v", tt.dir, tt.marker, got, tt.want)
		}
	}
}

func TestValidateNamingMismatch(t *testing.T) {
	d, err := Parse(fixedDescriptor)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if err := Validate(d, "bar", "-git"); !errors.Is(err, ErrNamingMismatch) {
		t.Errorf("directory mismatch should fail with ErrNamingMismatch, got %v", err)
	}
	if err := Validate(d, "foo", "-git"); err != nil {
		t.Errorf("matching directory should validate, got %v", err)
	}
}

func TestValidatePkgbasePrecedence(t *testing.T) {
	text := `pkgbase=foo
pkgname=foo-docs
pkgver=1.0
pkgrel=1
url="https://github.com/example/foo"
`
	d, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if err := Validate(d, "foo", "-git"); err != nil {
		t.Errorf("pkgbase should be the canonical name, got %v", err)
	}
	if err := Validate(d, "foo-docs", "-git"); !errors.Is(err, ErrNamingMismatch) {
		t.Errorf("pkgname must not override pkgbase, got %v", err)
	}
}

func TestValidateVersionFieldType(t *testing.T) {
	fixed, err := Parse(fixedDescriptor)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	vcs, err := Parse(vcsDescriptor)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// A fixed-version descriptor placed in a -git directory lacks pkgver()
	literalInVCSDir := `pkgname=foo-git
pkgver=1.0
pkgrel=1
url="https://github.com/example/foo"
`
	dLiteral, err := Parse(literalInVCSDir)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := Validate(dLiteral, "foo-git", "-git"); !errors.Is(err, ErrVersionFieldType) {
		t.Errorf("literal pkgver in version-controlled package should fail, got %v", err)
	}

	// A VCS descriptor in a plain directory carries a computed pkgver
	computedInFixedDir := `pkgname=foo
pkgrel=1
url="https://github.com/example/foo"

pkgver() {
  git describe
}
`
	dComputed, err := Parse(computedInFixedDir)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := Validate(dComputed, "foo", "-git"); !errors.Is(err, ErrVersionFieldType) {
		t.Errorf("computed pkgver in fixed-version package should fail, got %v", err)
	}

	// The well-formed fixtures pass
	if err := Validate(fixed, "foo", "-git"); err != nil {
		t.Errorf("fixed descriptor should validate, got %v", err)
	}
	if err := Validate(vcs, "foo-git", "-git"); err != nil {
		t.Errorf("vcs descriptor should validate, got %v", err)
	}
}

func TestValidateMissingFields(t *testing.T) {
	tests := []struct {
		name string
		text string
		dir  string
	}{
		{"missing name", "pkgver=1.0\nurl=\"https://github.com/example/foo\"\n", "foo"},
		{"missing url", "pkgname=foo\npkgver=1.0\n", "foo"},
		{"missing pkgver", "pkgname=foo\nurl=\"https://github.com/example/foo\"\n", "foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if err := Validate(d, tt.dir, "-git"); !errors.Is(err, ErrMissingField) {
				t.Errorf("want ErrMissingField, got %v", err)
			}
		})
	}
}

func TestValidateVCSChecksumInvariant(t *testing.T) {
	text := `pkgname=foo-git
pkgver=r123.abcdef0
pkgrel=1
url="https://github.com/example/foo"
source=('git+https://github.com/example/foo.git')
sha256sums=('abc123')

pkgver() {
  git describe
}
`
	d, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if err := Validate(d, "foo-git", "-git"); !errors.Is(err, ErrInvariant) {
		t.Errorf("pinned checksum on version-controlled package should fail with ErrInvariant, got %v", err)
	}
}
