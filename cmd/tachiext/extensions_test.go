package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dikkadev/tachiext/pkg/config"
	"github.com/dikkadev/tachiext/pkg/github"
	"github.com/dikkadev/tachiext/pkg/storage"
	"github.com/dikkadev/tachiext/pkg/updater"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyClient fails downloads for the packages in broken
type flakyClient struct {
	broken map[string]bool
}

func (c *flakyClient) FindExtensions(ctx context.Context) ([]github.Extension, error) {
	return nil, github.ErrTransport
}

func (c *flakyClient) ApkURL(ext github.Extension) string {
	return "https://repo.test/apk/" + ext.ApkName
}

func (c *flakyClient) DownloadApk(ctx context.Context, ext github.Extension, destPath string) error {
	if c.broken[ext.PackageName] {
		return github.ErrTransport
	}
	return os.WriteFile(destPath, []byte("apk"), 0644)
}

func TestApplyUpdatesReportsFailures(t *testing.T) {
	ctx := context.Background()

	cfg = config.DefaultConfig()
	cfg.RootDir = t.TempDir()
	require.NoError(t, cfg.EnsureDirectories())

	store, err := storage.NewLibSQL("file:" + filepath.Join(cfg.GetDirectories().DB, dbFilename))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Initialize(ctx))

	var targets []*storage.Extension
	for _, pkg := range []string{"eu.foo", "eu.bar"} {
		ext := &storage.Extension{PackageName: pkg, Name: pkg, VersionName: "1.2.1", VersionCode: 1, Lang: "en"}
		require.NoError(t, store.AddExtension(ctx, ext))
		targets = append(targets, ext)
	}
	catalog := []github.Extension{
		{PackageName: "eu.foo", Name: "eu.foo", VersionName: "1.2.2", VersionCode: 2, Lang: "en", ApkName: "eu.foo-v1.2.2.apk"},
		{PackageName: "eu.bar", Name: "eu.bar", VersionName: "1.2.2", VersionCode: 2, Lang: "en", ApkName: "eu.bar-v1.2.2.apk"},
	}
	client := &flakyClient{broken: map[string]bool{"eu.bar": true}}

	err = applyUpdates(ctx, targets, catalog, store, client, updater.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, github.ErrTransport)
	assert.Contains(t, err.Error(), "eu.bar")
	assert.NotContains(t, err.Error(), "eu.foo")

	foo, err := store.GetExtension(ctx, "eu.foo")
	require.NoError(t, err)
	assert.Equal(t, 2, foo.VersionCode)

	bar, err := store.GetExtension(ctx, "eu.bar")
	require.NoError(t, err)
	assert.Equal(t, 1, bar.VersionCode)

	assert.NoError(t, applyUpdates(ctx, targets[:1], catalog, store, client, updater.Options{}))
}
