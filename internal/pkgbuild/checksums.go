package pkgbuild

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariant is returned when a descriptor violates a standing
	// invariant, such as a version-controlled package pinning checksums
	ErrInvariant = errors.New("descriptor invariant violated")
)

// SkipPlaceholder is the checksum entry marking a source that is not verified
const SkipPlaceholder = "SKIP"

// hashFamilies lists the recognized checksum array fields
var hashFamilies = []string{
	"b2sums",
	"sha512sums",
	"sha384sums",
	"sha256sums",
	"sha224sums",
	"sha1sums",
	"md5sums",
	"cksums",
}

// isPlaceholder reports whether a checksum entry carries no pinned value
func isPlaceholder(entry string) bool {
	return entry == "" || entry == SkipPlaceholder
}

// pinnedHashFamily returns the first checksum family that is present with at
// least one non-placeholder entry, or "" if there is none.
func pinnedHashFamily(d *Descriptor) string {
	for _, family := range hashFamilies {
		for _, entry := range d.Array(family) {
			if !isPlaceholder(entry) {
				return family
			}
		}
	}
	return ""
}

// HashUpdateNeeded reports whether the descriptor pins any checksums that
// would have to be regenerated after a version bump.
func HashUpdateNeeded(d *Descriptor) bool {
	return pinnedHashFamily(d) != ""
}

// CheckHashInvariant enforces that version-controlled packages never pin
// checksums. Sources of a live package change with every upstream commit, so
// a pinned checksum can only ever be stale.
func CheckHashInvariant(d *Descriptor, vcs bool) error {
	if !vcs {
		return nil
	}
	if family := pinnedHashFamily(d); family != "" {
		return fmt.Errorf("%w: version-controlled package must not pin checksums, found %s entries", ErrInvariant, family)
	}
	return nil
}
