package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionFallsBackToDev(t *testing.T) {
	assert.NotEmpty(t, GetVersion())
}

func TestGetShortVersionWithLdflags(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	Version = "1.2.3"
	GitCommit = "abcdef1234567890"

	assert.Equal(t, "1.2.3 (abcdef1)", GetShortVersion())
}

func TestGetBuildInfoPopulatesPlatform(t *testing.T) {
	info := GetBuildInfo()
	assert.Contains(t, info.Platform, "/")
	assert.NotEmpty(t, info.GoVersion)
}

func TestParseBuildTime(t *testing.T) {
	assert.True(t, parseBuildTime("unknown").IsZero())
	assert.True(t, parseBuildTime("").IsZero())

	ts := parseBuildTime("2026-01-02T15:04:05Z")
	assert.Equal(t, time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC), ts)
}

func TestGetDetailedVersionIncludesGo(t *testing.T) {
	assert.Contains(t, GetDetailedVersion(), "Go: ")
}
