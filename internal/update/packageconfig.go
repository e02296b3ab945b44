package update

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// PackageConfigFile is the per-package override file, kept next to the
// PKGBUILD. All settings are optional; a missing file means defaults.
const PackageConfigFile = ".aurup.toml"

// PackageConfig holds per-package overrides read from .aurup.toml
type PackageConfig struct {
	Upstream UpstreamOverride `toml:"upstream"`
	Build    BuildOverride    `toml:"build"`
}

// UpstreamOverride redirects version resolution away from the descriptor url,
// for packages whose url field points at a project page rather than the
// release repository.
type UpstreamOverride struct {
	URL string `toml:"url,omitempty"`
}

// BuildOverride adjusts the local build step for one package
type BuildOverride struct {
	// Skip disables the local build verification for this package
	Skip bool `toml:"skip,omitempty"`
	// Clean removes build artifacts after a successful build
	Clean bool `toml:"clean,omitempty"`
}

// LoadPackageConfig reads .aurup.toml from the package directory.
// A missing file is not an error and yields the zero config.
func LoadPackageConfig(dir string) (*PackageConfig, error) {
	path := filepath.Join(dir, PackageConfigFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &PackageConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", PackageConfigFile, err)
	}

	var cfg PackageConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", PackageConfigFile, err)
	}

	return &cfg, nil
}
