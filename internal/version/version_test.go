package version

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsVersionGreaterOrEqualThan(t *testing.T) {
	tests := []struct {
		version string
		target  string
		want    bool
	}{
		{"0.3.0", "0.2.0", true},
		{"0.2.0", "0.2.0", true},
		{"0.2.0", "0.10.0", false},
		{"0.10.1", "0.10.0", true},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, IsVersionGreaterOrEqualThan(test.version, test.target), "%s >= %s", test.version, test.target)
	}
}

func TestIsVersionGreaterThan(t *testing.T) {
	tests := []struct {
		version string
		target  string
		want    bool
	}{
		{"0.3.0", "0.2.0", true},
		{"0.2.0", "0.2.0", false},
		{"0.2.0", "0.10.0", false},
		{"1.0.0", "0.99.99", true},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, IsVersionGreaterThan(test.version, test.target), "%s > %s", test.version, test.target)
	}
}

func TestGetMinorVersion(t *testing.T) {
	assert.Equal(t, "0.3", GetMinorVersion("0.3.0"))
	assert.Equal(t, "1.12", GetMinorVersion("1.12.4"))
	assert.Equal(t, "", GetMinorVersion("1.2"))
}

func TestSortVersion(t *testing.T) {
	versionList := []string{"0.10.0", "0.2.0", "0.3.0", "0.1.1"}
	sort.Sort(SortVersion(versionList))
	assert.Equal(t, []string{"0.1.1", "0.2.0", "0.3.0", "0.10.0"}, versionList)
}

func TestGetCurrentVersion(t *testing.T) {
	assert.Equal(t, Version, GetCurrentVersion("prod"))
	assert.Equal(t, DevVersion, GetCurrentVersion("dev"))
	assert.Equal(t, DevVersion, GetCurrentVersion("demo"))
}
