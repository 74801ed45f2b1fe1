package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dikkadev/tachiext/pkg/config"
	"github.com/dikkadev/tachiext/pkg/github"
	"github.com/dikkadev/tachiext/pkg/storage"
	"github.com/dikkadev/tachiext/pkg/updater"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var logger = log.New(os.Stdout, "E2E_TEST| ", log.LstdFlags|log.Lmicroseconds)

const webRoot = "/usr/share/nginx/html/repo"

var manifest = []github.ManifestEntry{
	{Name: "Tachiyomi: Foo", Pkg: "eu.foo", Apk: "tachiyomi-en.foo-v1.2.14.apk", Version: "1.2.14", Code: 14, Lang: "en"},
	{Name: "Tachiyomi: Foo JA", Pkg: "eu.foo.ja", Apk: "tachiyomi-ja.foo-v1.2.3.apk", Version: "1.2.3", Code: 3, Lang: "ja"},
	{Name: "Tachiyomi: Future", Pkg: "eu.future", Apk: "tachiyomi-en.future-v2.0.0.apk", Version: "2.0.0", Code: 1, Lang: "en"},
	{Name: "Tachiyomi: Broken", Pkg: "eu.broken", Apk: "tachiyomi-en.broken.apk", Version: "v1.x", Code: 1, Lang: "en"},
}

type testContainer struct {
	container testcontainers.Container
	repoURL   string
}

// writeRepo lays out index.json and the APKs of the manifest in a temp directory
func writeRepo(t *testing.T) map[string]string {
	t.Helper()
	dir := t.TempDir()

	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("Failed to marshal manifest: %v", err)
	}

	files := map[string]string{}
	index := filepath.Join(dir, "index.json")
	if err := os.WriteFile(index, data, 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	files[index] = webRoot + "/index.json"

	for _, entry := range manifest {
		apk := filepath.Join(dir, entry.Apk)
		if err := os.WriteFile(apk, []byte("apk:"+entry.Pkg), 0644); err != nil {
			t.Fatalf("Failed to write apk: %v", err)
		}
		files[apk] = webRoot + "/apk/" + entry.Apk
	}
	return files
}

func setupContainer(ctx context.Context, t *testing.T) (*testContainer, error) {
	logger.Println("Setting up repository container...")

	var containerFiles []testcontainers.ContainerFile
	for host, target := range writeRepo(t) {
		containerFiles = append(containerFiles, testcontainers.ContainerFile{
			HostFilePath:      host,
			ContainerFilePath: target,
			FileMode:          0644,
		})
	}

	req := testcontainers.ContainerRequest{
		Image:        "nginx:alpine",
		ExposedPorts: []string{"80/tcp"},
		Files:        containerFiles,
		WaitingFor: wait.ForHTTP("/repo/index.json").
			WithPort("80/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		logger.Printf("ERROR: Failed to start container: %v\n", err)
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	endpoint, err := container.Endpoint(ctx, "http")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container endpoint: %w", err)
	}

	logger.Printf("Repository served at %s/repo\n", endpoint)
	return &testContainer{container: container, repoURL: endpoint + "/repo"}, nil
}

func (c *testContainer) terminate(ctx context.Context) {
	logger.Println("Terminating container...")
	if err := c.container.Terminate(ctx); err != nil {
		logger.Printf("ERROR: Failed to terminate container: %v\n", err)
	}
}

func (c *testContainer) client() github.Client {
	return github.NewClient(github.Options{
		RepoURL: c.repoURL,
		Timeout: 10 * time.Second,
		Bounds:  github.LibBounds{Min: 1.2, Max: 1.5},
	})
}

func TestCatalogSync(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}

	ctx := context.Background()
	container, err := setupContainer(ctx, t)
	if err != nil {
		t.Fatalf("Failed to setup container: %v", err)
	}
	defer container.terminate(ctx)

	exts, err := container.client().FindExtensions(ctx)
	if err != nil {
		t.Fatalf("FindExtensions failed: %v", err)
	}

	// 2.0 is out of range and the malformed entry is skipped
	if len(exts) != 2 {
		t.Fatalf("Expected 2 compatible extensions, got %d: %+v", len(exts), exts)
	}
	if exts[0].Name != "Foo" || exts[0].PackageName != "eu.foo" {
		t.Errorf("Unexpected first extension: %+v", exts[0])
	}
	if want := container.repoURL + "/icon/tachiyomi-en.foo-v1.2.14.png"; exts[0].IconURL != want {
		t.Errorf("Expected icon %s, got %s", want, exts[0].IconURL)
	}
}

func TestUpdateFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}

	ctx := context.Background()
	container, err := setupContainer(ctx, t)
	if err != nil {
		t.Fatalf("Failed to setup container: %v", err)
	}
	defer container.terminate(ctx)

	cfg := config.DefaultConfig()
	cfg.RootDir = t.TempDir()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("Failed to create directories: %v", err)
	}

	store, err := storage.NewLibSQL("file:" + filepath.Join(cfg.GetDirectories().DB, "tachiext.db"))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer store.Close()
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize storage: %v", err)
	}

	// An old build of eu.foo and an extension the repository does not know
	for _, ext := range []*storage.Extension{
		{PackageName: "eu.foo", Name: "Foo", VersionName: "1.2.10", VersionCode: 10, Lang: "en"},
		{PackageName: "eu.bar", Name: "Bar", VersionName: "1.2.5", VersionCode: 5, Lang: "en"},
	} {
		if err := store.AddExtension(ctx, ext); err != nil {
			t.Fatalf("Failed to seed extension: %v", err)
		}
	}

	client := container.client()
	checker := updater.NewChecker(client, store, store, nil)

	updates, catalog, err := checker.CheckWithCatalog(ctx)
	if err != nil {
		t.Fatalf("CheckWithCatalog failed: %v", err)
	}
	if len(updates) != 1 || updates[0].PackageName != "eu.foo" {
		t.Fatalf("Expected only eu.foo to be upgradable, got %+v", updates)
	}

	if last, _ := store.GetInt64(ctx, storage.PrefLastExtCheck, 0); last == 0 {
		t.Error("Expected last check to be recorded")
	}

	if err := updater.Update(ctx, updates[0], catalog, cfg, store, client, updater.Options{}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, err := store.GetExtension(ctx, "eu.foo")
	if err != nil || updated == nil {
		t.Fatalf("Failed to reload eu.foo: %v", err)
	}
	if updated.VersionCode != 14 {
		t.Errorf("Expected version code 14, got %d", updated.VersionCode)
	}
	data, err := os.ReadFile(updated.ApkPath)
	if err != nil {
		t.Fatalf("Downloaded apk missing: %v", err)
	}
	if string(data) != "apk:eu.foo" {
		t.Errorf("Unexpected apk content %q", data)
	}

	if err := updater.Install(ctx, "eu.foo.ja", cfg, store, client, updater.Options{}); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	updates, err = checker.CheckForUpdates(ctx)
	if err != nil {
		t.Fatalf("CheckForUpdates failed: %v", err)
	}
	if len(updates) != 0 {
		t.Errorf("Expected no updates after upgrading, got %+v", updates)
	}
}
