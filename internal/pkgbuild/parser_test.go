package pkgbuild

import (
	"errors"
	"testing"
)

const fixedDescriptor = `# Maintainer: Jane Doe <jane@example.org>
pkgname=foo
pkgver=1.0
pkgrel=3
pkgdesc="Example tool"
arch=('x86_64')
url="https://github.com/example/foo"
license=('MIT')
depends=('glibc'
         'zlib')
provides=('foo-cli=1.0')
source=("$pkgname-$pkgver.tar.gz::https://github.com/example/foo/archive/v$pkgver.tar.gz")
sha256sums=('abc123')

build() {
  cd "$pkgname-$pkgver"
  make
}

package() {
  cd "$pkgname-$pkgver"
  make DESTDIR="$pkgdir" install
}
`

const vcsDescriptor = `pkgname=foo-git
pkgver=r123.abcdef0
pkgrel=1
pkgdesc="Example tool (git)"
arch=('x86_64')
url="https://github.com/example/foo"
license=('MIT')
source=('git+https://github.com/example/foo.git')
sha256sums=('SKIP')

pkgver() {
  cd "$srcdir/foo"
  printf "r%s.%s" "$(git rev-list --count HEAD)" "$(git rev-parse --short HEAD)"
}

build() {
  cd "$srcdir/foo"
  make
}
`

func TestParseScalars(t *testing.T) {
	d, err := Parse(fixedDescriptor)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	tests := []struct {
		field string
		want  string
	}{
		{"pkgname", "foo"},
		{"pkgver", "1.0"},
		{"pkgrel", "3"},
		{"pkgdesc", "Example tool"},
		{"url", "https://github.com/example/foo"},
	}

	for _, tt := range tests {
		if got := d.Scalar(tt.field); got != tt.want {
			t.Errorf("Scalar(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestParseArrays(t *testing.T) {
	d, err := Parse(fixedDescriptor)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	tests := []struct {
		field string
		want  []string
	}{
		{"arch", []string{"x86_64"}},
		{"license", []string{"MIT"}},
		{"depends", []string{"glibc", "zlib"}}, // spans two lines
		{"provides", []string{"foo-cli=1.0"}},
		{"sha256sums", []string{"abc123"}},
	}

	for _, tt := range tests {
		got := d.Array(tt.field)
		if len(got) != len(tt.want) {
			t.Errorf("Array(%q) = %v, want %v", tt.field, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Array(%q)[%d] = %q, want %q", tt.field, i, got[i], tt.want[i])
			}
		}
	}
}

func TestParseComputedFields(t *testing.T) {
	d, err := Parse(vcsDescriptor)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !d.IsComputed("pkgver") {
		t.Error("pkgver() function should be recognized as computed")
	}
	if !d.IsComputed("build") {
		t.Error("build() function should be recognized as computed")
	}
	if d.IsComputed("pkgrel") {
		t.Error("pkgrel should not be computed")
	}

	// The scalar snapshot assignment coexists with the function
	if got := d.Scalar("pkgver"); got != "r123.abcdef0" {
		t.Errorf("Scalar(pkgver) = %q, want r123.abcdef0", got)
	}
}

func TestParseIgnoresFunctionBodies(t *testing.T) {
	text := `pkgname=foo
pkgver=1.0
pkgrel=1
url="https://github.com/example/foo"

prepare() {
  localver=9.9
  export CFLAGS="-O2"
}
`
	d, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if d.Has("localver") {
		t.Error("assignment inside function body should not become a field")
	}
	if d.Has("CFLAGS") {
		t.Error("export inside function body should not become a field")
	}
}

func TestParseAbsentFieldsAreNotErrors(t *testing.T) {
	d, err := Parse("pkgname=foo\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if d.Has("pkgver") {
		t.Error("pkgver should be reported as not set")
	}
	if got := d.Scalar("pkgver"); got != "" {
		t.Errorf("Scalar of absent field = %q, want empty", got)
	}
	if got := d.Array("sha256sums"); got != nil {
		t.Errorf("Array of absent field = %v, want nil", got)
	}
}

func TestParseFirstAssignmentWins(t *testing.T) {
	text := "pkgver=1.0\npkgver=2.0\n"
	d, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := d.Scalar("pkgver"); got != "1.0" {
		t.Errorf("Scalar(pkgver) = %q, want first assignment 1.0", got)
	}
}

func TestParseUnterminatedArray(t *testing.T) {
	_, err := Parse("pkgname=foo\nsha256sums=('abc'\n")
	if !errors.Is(err, ErrParse) {
		t.Errorf("unterminated array should fail with ErrParse, got %v", err)
	}
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"pkgname only", "pkgname=foo\n", "foo"},
		{"pkgbase takes precedence", "pkgbase=foo\npkgname=foo-docs\n", "foo"},
		{"neither", "pkgver=1.0\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got := d.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}
