package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tagrelease/pkg/domain/model"
)

// Release holds settings of the release workflow
type Release struct {
	RepoUser   string
	RepoName   string
	ConfigFile string
}

// releaseFile is the layout of the optional TOML file given by --release-config
//
//	[repository]
//	user = "BanditSoftware"
//	name = "leankit-mobile"
//
//	[release]
//	default_platforms = ["ios", "android"]
type releaseFile struct {
	Repository *model.Repository `toml:"repository"`
	Release    struct {
		DefaultPlatforms []string `toml:"default_platforms"`
	} `toml:"release"`
}

// Flags returns CLI flags for release configuration
func (c *Release) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repo-user",
			Usage:       "Owner of the repository that releases belong to",
			Value:       "BanditSoftware",
			Destination: &c.RepoUser,
			Sources:     cli.EnvVars("TAGRELEASE_REPO_USER"),
		},
		&cli.StringFlag{
			Name:        "repo-name",
			Usage:       "Name of the repository that releases belong to",
			Value:       "leankit-mobile",
			Destination: &c.RepoName,
			Sources:     cli.EnvVars("TAGRELEASE_REPO_NAME"),
		},
		&cli.StringFlag{
			Name:        "release-config",
			Usage:       "Path to a TOML file overriding repository and release defaults",
			Destination: &c.ConfigFile,
			Sources:     cli.EnvVars("TAGRELEASE_RELEASE_CONFIG"),
		},
	}
}

// Settings is the resolved release configuration
type Settings struct {
	Repository       model.Repository
	DefaultPlatforms []string
}

// Load resolves the settings from flags and the optional config file. Values in the file win.
func (c *Release) Load() (*Settings, error) {
	settings := &Settings{
		Repository: model.Repository{
			User: c.RepoUser,
			Name: c.RepoName,
		},
		DefaultPlatforms: append([]string{}, model.DefaultPlatforms...),
	}

	if c.ConfigFile != "" {
		raw, err := os.ReadFile(c.ConfigFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read release config", goerr.V("path", c.ConfigFile))
		}

		var file releaseFile
		if err := toml.Unmarshal(raw, &file); err != nil {
			return nil, goerr.Wrap(err, "failed to parse release config", goerr.V("path", c.ConfigFile))
		}

		if file.Repository != nil {
			if file.Repository.User != "" {
				settings.Repository.User = file.Repository.User
			}
			if file.Repository.Name != "" {
				settings.Repository.Name = file.Repository.Name
			}
		}
		if len(file.Release.DefaultPlatforms) > 0 {
			settings.DefaultPlatforms = file.Release.DefaultPlatforms
		}
	}

	if settings.Repository.User == "" || settings.Repository.Name == "" {
		return nil, goerr.New("repository user and name are required",
			goerr.V("user", settings.Repository.User),
			goerr.V("name", settings.Repository.Name))
	}

	return settings, nil
}
