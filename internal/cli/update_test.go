package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"v1.0.0", "1.0.0"},
		{"1.0.0", "1.0.0"},
		{"v2.1.3", "2.1.3"},
		{"dev", "dev"},
	}

	for _, test := range tests {
		result := normalizeVersion(test.input)
		assert.Equal(t, test.expected, result)
	}
}

func TestUpdateCacheOperations(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	updateInfo := &UpdateInfo{
		LastChecked:   time.Now(),
		LatestVersion: "v1.2.3",
		CurrentIsOld:  true,
		DownloadURL:   "https://example.com/download",
	}

	saveUpdateCache(updateInfo)

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(homeDir, updateCacheFile))

	loadedInfo := loadUpdateCache()
	require.NotNil(t, loadedInfo)
	assert.Equal(t, updateInfo.LatestVersion, loadedInfo.LatestVersion)
	assert.Equal(t, updateInfo.CurrentIsOld, loadedInfo.CurrentIsOld)
	assert.Equal(t, updateInfo.DownloadURL, loadedInfo.DownloadURL)
	assert.WithinDuration(t, updateInfo.LastChecked, loadedInfo.LastChecked, time.Second)
}

func TestUpdateCacheExpiry(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	expiredInfo := &UpdateInfo{
		LastChecked:   time.Now().Add(-3 * time.Hour),
		LatestVersion: "v1.0.0",
		CurrentIsOld:  true,
		DownloadURL:   "https://example.com/old",
	}
	saveUpdateCache(expiredInfo)

	assert.Nil(t, ShouldShowUpdateNotification(), "expired cache must not trigger a notification")

	freshInfo := &UpdateInfo{
		LastChecked:   time.Now().Add(-30 * time.Minute),
		LatestVersion: "v1.2.0",
		CurrentIsOld:  true,
		DownloadURL:   "https://example.com/new",
	}
	saveUpdateCache(freshInfo)

	notification := ShouldShowUpdateNotification()
	require.NotNil(t, notification)
	assert.Equal(t, "v1.2.0", notification.LatestVersion)
	assert.True(t, notification.CurrentIsOld)
}

func TestShouldShowUpdateNotification_CurrentVersion(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	saveUpdateCache(&UpdateInfo{
		LastChecked:   time.Now(),
		LatestVersion: "v1.0.0",
		CurrentIsOld:  false,
	})

	assert.Nil(t, ShouldShowUpdateNotification())
}

func TestLoadUpdateCacheWithInvalidJSON(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".qmlfix"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, updateCacheFile), []byte("invalid json"), 0o644))

	assert.Nil(t, loadUpdateCache())
}

func TestLoadUpdateCacheWithNonexistentFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	assert.Nil(t, loadUpdateCache())
}
