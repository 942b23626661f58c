package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/tagrelease/pkg/cli/config"
	"github.com/m-mizutani/tagrelease/pkg/domain/model"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "release.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestRelease_Load(t *testing.T) {
	t.Run("flags only", func(t *testing.T) {
		cfg := &config.Release{RepoUser: "BanditSoftware", RepoName: "leankit-mobile"}

		settings, err := cfg.Load()
		gt.NoError(t, err)
		gt.Value(t, settings.Repository).Equal(model.Repository{User: "BanditSoftware", Name: "leankit-mobile"})
		gt.Value(t, settings.DefaultPlatforms).Equal([]string{"ios", "android"})
	})

	t.Run("file overrides flags", func(t *testing.T) {
		path := writeFile(t, `
[repository]
user = "acme"
name = "mobile-app"

[release]
default_platforms = ["ios", "android", "web"]
`)
		cfg := &config.Release{RepoUser: "BanditSoftware", RepoName: "leankit-mobile", ConfigFile: path}

		settings, err := cfg.Load()
		gt.NoError(t, err)
		gt.Value(t, settings.Repository).Equal(model.Repository{User: "acme", Name: "mobile-app"})
		gt.Value(t, settings.DefaultPlatforms).Equal([]string{"ios", "android", "web"})
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		path := writeFile(t, `
[repository]
name = "other-app"
`)
		cfg := &config.Release{RepoUser: "BanditSoftware", RepoName: "leankit-mobile", ConfigFile: path}

		settings, err := cfg.Load()
		gt.NoError(t, err)
		gt.Value(t, settings.Repository).Equal(model.Repository{User: "BanditSoftware", Name: "other-app"})
		gt.Value(t, settings.DefaultPlatforms).Equal([]string{"ios", "android"})
	})

	t.Run("broken file", func(t *testing.T) {
		path := writeFile(t, `[repository`)
		cfg := &config.Release{RepoUser: "u", RepoName: "n", ConfigFile: path}

		_, err := cfg.Load()
		gt.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := &config.Release{RepoUser: "u", RepoName: "n", ConfigFile: filepath.Join(t.TempDir(), "nope.toml")}

		_, err := cfg.Load()
		gt.Error(t, err)
	})

	t.Run("empty repository", func(t *testing.T) {
		cfg := &config.Release{RepoUser: "", RepoName: "n"}

		_, err := cfg.Load()
		gt.Error(t, err)
	})
}

func TestFirestore_NewRepository_Memory(t *testing.T) {
	cfg := &config.Firestore{}

	repo, closeFn, err := cfg.NewRepository(t.Context())
	gt.NoError(t, err)
	gt.Value(t, repo).NotNil()
	closeFn()
}

func TestSentry_Configure_Disabled(t *testing.T) {
	cfg := &config.Sentry{}

	flush, err := cfg.Configure()
	gt.NoError(t, err)
	flush()
}
