package derive

import (
	"fmt"

	"github.com/hashicorp/go-version"

	"github.com/corespeed-io/webpack/pkg/pkgwalk"
)

// CoreJSVersion returns the installed core-js version as major.minor, the
// form swc expects for env.coreJs.
func CoreJSVersion(r pkgwalk.Resolver, dir string) (string, error) {
	pkgDir, err := r.Resolve("core-js", dir)
	if err != nil {
		return "", err
	}
	m, err := r.ReadManifest(pkgDir)
	if err != nil {
		return "", err
	}
	v, err := version.NewVersion(m.Version)
	if err != nil {
		return "", fmt.Errorf("core-js version %q: %w", m.Version, err)
	}
	seg := v.Segments()
	return fmt.Sprintf("%d.%d", seg[0], seg[1]), nil
}
