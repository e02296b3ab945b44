package pkgbuild

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNamingMismatch is returned when the canonical package name does not
	// match the containing directory name
	ErrNamingMismatch = errors.New("package name does not match directory name")
	// ErrVersionFieldType is returned when pkgver is literal where it must be
	// computed, or computed where it must be literal
	ErrVersionFieldType = errors.New("wrong pkgver field type")
	// ErrMissingField is returned when a required field is absent
	ErrMissingField = errors.New("required field is not set")
)

// IsVCS classifies a package as version-controlled purely from its directory
// name. The marker is conventionally "-git"; classification is a property of
// the name string alone, independent of repository content.
func IsVCS(dirName, marker string) bool {
	if marker == "" {
		marker = "-git"
	}
	return strings.Contains(dirName, marker)
}

// Validate checks the structural invariants of a descriptor before any
// network access or rewrite happens:
//
//   - the canonical name (pkgbase, else pkgname) must equal dirName
//   - url must be set
//   - a version-controlled package must compute pkgver at build time
//   - a fixed-version package must carry pkgver as a literal
//   - a version-controlled package must not pin checksums
func Validate(d *Descriptor, dirName, marker string) error {
	name := d.Name()
	if name == "" {
		return fmt.Errorf("%w: pkgbase/pkgname", ErrMissingField)
	}
	if name != dirName {
		return fmt.Errorf("%w: package is %q but directory is %q", ErrNamingMismatch, name, dirName)
	}

	if d.Scalar("url") == "" {
		return fmt.Errorf("%w: url", ErrMissingField)
	}

	vcs := IsVCS(dirName, marker)
	if vcs {
		if !d.IsComputed("pkgver") {
			return fmt.Errorf("%w: version-controlled package %q must compute pkgver with a pkgver() function", ErrVersionFieldType, name)
		}
	} else {
		if d.IsComputed("pkgver") {
			return fmt.Errorf("%w: fixed-version package %q must set pkgver as a literal, not a pkgver() function", ErrVersionFieldType, name)
		}
		if !d.HasScalar("pkgver") {
			return fmt.Errorf("%w: pkgver", ErrMissingField)
		}
	}

	return CheckHashInvariant(d, vcs)
}
