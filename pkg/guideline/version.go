package guideline

import (
	"fmt"
	"strconv"
	"strings"
)

// semver is the Major.Minor.Patch version id assigned to every rebuild.
type semver struct {
	major, minor, patch int
}

func initialVersion() semver { return semver{major: 1, minor: 0, patch: 0} }

func (v semver) String() string { return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch) }

// next bumps the patch component; rebuilds never touch major/minor, which
// are reserved for an operator-driven version bump outside this package.
func (v semver) next() semver { return semver{v.major, v.minor, v.patch + 1} }

func parseSemver(s string) (semver, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return semver{}, fmt.Errorf("invalid version %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return semver{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		nums[i] = n
	}
	return semver{major: nums[0], minor: nums[1], patch: nums[2]}, nil
}
