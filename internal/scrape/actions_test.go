package scrape

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/bac-archiver/models"
)

func newFlagContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("scrape", flag.ContinueOnError)
	for _, f := range []cli.Flag{
		&cli.StringFlag{Name: "config"},
		&cli.IntFlag{Name: "year"},
		&cli.BoolFlag{Name: "archive-hosts", Value: true},
		&cli.BoolFlag{Name: "s3-ssl", Value: true},
		&cli.StringFlag{Name: "s3-access-key"},
		&cli.StringFlag{Name: "s3-secret-key"},
	} {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func loadTestConfig(t *testing.T, yaml string) (*models.ScrapeConfig, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	cfg, err := models.LoadConfig(path)
	require.NoError(t, err)
	return cfg, path
}

func TestApplyFlags_CredentialsOverrideConfig(t *testing.T) {
	cfg, path := loadTestConfig(t, `s3:
  access_key: file-key
  secret_key: file-secret
`)
	c := newFlagContext(t, "--config", path, "--s3-access-key", "flag-key")

	applyFlags(c, cfg)

	assert.Equal(t, "flag-key", cfg.S3.AccessKey)
	assert.Equal(t, "file-secret", cfg.S3.SecretKey, "unset flag keeps the file value")
	assert.True(t, cfg.S3.UseSSL)
}

func TestApplyFlags_ArchiveHosts(t *testing.T) {
	t.Run("on by default", func(t *testing.T) {
		cfg, err := models.LoadConfig("")
		require.NoError(t, err)
		applyFlags(newFlagContext(t, "--year", "2024"), cfg)

		assert.True(t, cfg.ArchiveHosts)
		assert.Equal(t, "http://subiecte2024.edu.ro/2024/bacalaureat/modeledesubiecte/probescrise/", cfg.PageURLs()[0])
		assert.Equal(t, map[string]string{"subiecte2024.edu.ro": "subiecte.edu.ro"}, cfg.HostFallbacks())
	})

	t.Run("config file turns it off", func(t *testing.T) {
		cfg, path := loadTestConfig(t, "year: 2024\narchive_hosts: false\n")
		applyFlags(newFlagContext(t, "--config", path), cfg)

		assert.False(t, cfg.ArchiveHosts)
		assert.Equal(t, "http://subiecte.edu.ro/2024/bacalaureat/modeledesubiecte/probescrise/", cfg.PageURLs()[0])
	})

	t.Run("flag overrides config file", func(t *testing.T) {
		cfg, path := loadTestConfig(t, "archive_hosts: false\n")
		applyFlags(newFlagContext(t, "--config", path, "--archive-hosts=true"), cfg)

		assert.True(t, cfg.ArchiveHosts)
	})

	t.Run("flag turns it off", func(t *testing.T) {
		cfg, err := models.LoadConfig("")
		require.NoError(t, err)
		applyFlags(newFlagContext(t, "--archive-hosts=false"), cfg)

		assert.False(t, cfg.ArchiveHosts)
	})
}
