// Package update sequences the descriptor update workflow: validate, resolve
// upstream, rewrite, build-verify, regenerate metadata, commit and push.
package update

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/obentoo/aurup/internal/common/config"
	"github.com/obentoo/aurup/internal/common/git"
	"github.com/obentoo/aurup/internal/pkgbuild"
	"github.com/obentoo/aurup/internal/upstream"
)

var (
	// ErrBuild is returned when the local build or checksum/metadata
	// regeneration fails
	ErrBuild = errors.New("package build failed")
	// ErrCommit is returned when committing the update fails
	ErrCommit = errors.New("commit failed")
	// ErrPush is returned when pushing fails; the commit is left in place
	ErrPush = errors.New("push failed")
)

// DescriptorFile is the package-build descriptor maintained by this tool
const DescriptorFile = "PKGBUILD"

// MetadataFile is the derived metadata regenerated after every rewrite
const MetadataFile = ".SRCINFO"

// Result describes the outcome of one update run
type Result struct {
	// Package is the canonical package name
	Package string
	// OldVersion is the pkgver before the run
	OldVersion string
	// NewVersion is the resolved upstream version
	NewVersion string
	// UpToDate is true when nothing had to be done
	UpToDate bool
	// Committed is true when a commit was created
	Committed bool
	// Pushed is true when the commit was pushed
	Pushed bool
	// Rewrite carries the fields the rewrite actually changed
	Rewrite *pkgbuild.RewriteResult
}

// Updater drives the update workflow for a single package directory. All
// external collaborators are injectable for testing.
type Updater struct {
	dir      string
	cfg      *config.Config
	git      git.Executor
	makepkg  Makepkg
	client   *upstream.Client
	cache    *upstream.Cache
	progress func(format string, args ...interface{})

	push       bool
	skipBuild  bool
	updateOnly bool
	force      bool
}

// Option is a functional option for configuring Updater
type Option func(*Updater)

// WithConfig sets the application configuration
func WithConfig(cfg *config.Config) Option {
	return func(u *Updater) { u.cfg = cfg }
}

// WithGit sets the version-control collaborator
func WithGit(executor git.Executor) Option {
	return func(u *Updater) { u.git = executor }
}

// WithMakepkg sets the build collaborator
func WithMakepkg(m Makepkg) Option {
	return func(u *Updater) { u.makepkg = m }
}

// WithClient sets the upstream release client
func WithClient(c *upstream.Client) Option {
	return func(u *Updater) { u.client = c }
}

// WithCache sets the upstream version cache
func WithCache(c *upstream.Cache) Option {
	return func(u *Updater) { u.cache = c }
}

// WithProgress sets a callback for progress lines
func WithProgress(fn func(format string, args ...interface{})) Option {
	return func(u *Updater) { u.progress = fn }
}

// WithPush enables pushing after a successful commit
func WithPush(push bool) Option {
	return func(u *Updater) { u.push = push }
}

// WithSkipBuild disables the local build verification and checksum regeneration
func WithSkipBuild(skip bool) Option {
	return func(u *Updater) { u.skipBuild = skip }
}

// WithUpdateOnly stops the workflow after metadata regeneration
func WithUpdateOnly(updateOnly bool) Option {
	return func(u *Updater) { u.updateOnly = updateOnly }
}

// WithForce rewrites even when the versions already match and bypasses the
// version cache
func WithForce(force bool) Option {
	return func(u *Updater) { u.force = force }
}

// NewUpdater creates an updater for the given package directory
func NewUpdater(dir string, opts ...Option) (*Updater, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	u := &Updater{
		dir:      abs,
		progress: func(string, ...interface{}) {},
	}

	for _, opt := range opts {
		opt(u)
	}

	if u.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		u.cfg = cfg
	}
	if u.git == nil {
		u.git = git.NewRunner(abs)
	}
	if u.makepkg == nil {
		u.makepkg = NewMakepkgRunner(abs)
	}
	if u.client == nil {
		u.client = upstream.NewClient(u.cfg.GitHub.Token)
	}

	return u, nil
}

// Run executes the update workflow once. The sequence is linear with
// early-exit branches; every failure is fatal and stops the run immediately,
// leaving already-completed steps in place.
func (u *Updater) Run(ctx context.Context) (*Result, error) {
	text, err := os.ReadFile(filepath.Join(u.dir, DescriptorFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgbuild.ErrParse, err)
	}

	d, err := pkgbuild.Parse(string(text))
	if err != nil {
		return nil, err
	}

	dirName := filepath.Base(u.dir)
	marker := u.cfg.Update.VCSMarker

	// Fail fast on structural misconfiguration, before any network access
	if err := pkgbuild.Validate(d, dirName, marker); err != nil {
		return nil, err
	}
	vcs := pkgbuild.IsVCS(dirName, marker)

	pkgCfg, err := LoadPackageConfig(u.dir)
	if err != nil {
		return nil, err
	}

	repoURL := d.Scalar("url")
	if pkgCfg.Upstream.URL != "" {
		repoURL = pkgCfg.Upstream.URL
	}
	owner, repo, err := upstream.ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	current := d.Scalar("pkgver")
	result := &Result{
		Package:    d.Name(),
		OldVersion: current,
	}

	resolved, err := u.resolveVersion(ctx, owner, repo, repoURL)
	if err != nil {
		return nil, err
	}
	result.NewVersion = resolved

	if !upstream.NeedsUpdate(current, resolved, u.force) {
		u.progress("%s is up to date (%s)", result.Package, current)
		result.UpToDate = true
		return result, nil
	}
	u.progress("updating %s: %s -> %s", result.Package, current, resolved)

	var firstProvide string
	if provides := d.Array("provides"); len(provides) > 0 {
		firstProvide = provides[0]
	}

	rewrite, err := pkgbuild.Rewrite(string(text), resolved, vcs, current, firstProvide)
	if err != nil {
		return nil, err
	}
	result.Rewrite = rewrite

	descriptorPath := filepath.Join(u.dir, DescriptorFile)
	if err := pkgbuild.WriteFileAtomic(descriptorPath, []byte(rewrite.Text)); err != nil {
		return nil, err
	}

	skipBuild := u.skipBuild || pkgCfg.Build.Skip
	if !skipBuild {
		u.progress("building %s", result.Package)
		if err := u.makepkg.Build(pkgCfg.Build.Clean); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBuild, err)
		}
	}

	// Checksums are only pinned on fixed-version packages; the validator has
	// already rejected pinned checksums on version-controlled ones.
	rewritten, err := pkgbuild.Parse(rewrite.Text)
	if err != nil {
		return nil, err
	}
	if !skipBuild && !vcs && pkgbuild.HashUpdateNeeded(rewritten) {
		u.progress("regenerating checksums")
		if err := u.makepkg.UpdateChecksums(); err != nil {
			return nil, fmt.Errorf("%w: checksum regeneration: %v", ErrBuild, err)
		}
	}

	u.progress("regenerating %s", MetadataFile)
	srcinfo, err := u.makepkg.PrintSrcinfo()
	if err != nil {
		return nil, fmt.Errorf("%w: metadata regeneration: %v", ErrBuild, err)
	}
	if err := pkgbuild.WriteFileAtomic(filepath.Join(u.dir, MetadataFile), []byte(srcinfo)); err != nil {
		return nil, err
	}

	if u.updateOnly {
		u.progress("update-only requested, stopping before commit")
		return result, nil
	}

	if err := u.commit(resolved); err != nil {
		return nil, err
	}
	result.Committed = true

	if u.push {
		u.progress("pushing to %s %s", u.cfg.Update.Remote, u.cfg.Update.Branch)
		if err := u.git.Push(u.cfg.Update.Remote, u.cfg.Update.Branch); err != nil {
			// The commit stays in place; re-committing would duplicate history
			return nil, fmt.Errorf("%w: %v", ErrPush, err)
		}
		result.Pushed = true
	}

	return result, nil
}

// resolveVersion returns the latest upstream version, consulting the cache
// first unless force is set.
func (u *Updater) resolveVersion(ctx context.Context, owner, repo, source string) (string, error) {
	key := owner + "/" + repo

	if u.cache != nil && !u.force {
		if version, ok := u.cache.Get(key); ok {
			u.progress("upstream %s: %s (cached)", key, version)
			return version, nil
		}
	}

	version, err := u.client.ResolveVersion(ctx, owner, repo)
	if err != nil {
		return "", err
	}
	u.progress("upstream %s: %s", key, version)

	if u.cache != nil {
		if err := u.cache.Set(key, version, source); err != nil {
			// A cache write failure must not abort the update
			u.progress("warning: failed to update version cache: %v", err)
		}
	}

	return version, nil
}

// commit stages the descriptor and derived metadata and commits them with a
// message embedding the resolved version.
func (u *Updater) commit(version string) error {
	files := []string{DescriptorFile}
	if _, err := os.Stat(filepath.Join(u.dir, MetadataFile)); err == nil {
		files = append(files, MetadataFile)
	}
	if err := u.git.Add(files...); err != nil {
		return fmt.Errorf("%w: staging: %v", ErrCommit, err)
	}

	user, email, err := u.cfg.GetGitUser()
	if err != nil {
		// Fall back to the repository's own git identity
		user, email = "", ""
	}

	message := "Update to " + version
	u.progress("committing %q", message)
	if err := u.git.Commit(message, user, email); err != nil {
		return fmt.Errorf("%w: %v", ErrCommit, err)
	}
	return nil
}
