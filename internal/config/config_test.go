package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guzmanc1/RikiWiki/internal/markup"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	assert.Error(t, err, "an explicitly named missing file is refused")

	// the default file being absent is fine
	t.Chdir(t.TempDir())
	cfg, err = Load("")
	require.NoError(t, err)

	assert.Equal(t, "Riki", cfg.Title)
	assert.False(t, cfg.Private)
	assert.Equal(t, "content", cfg.ContentDir)
	assert.Equal(t, "user", cfg.UserDir)
	assert.Equal(t, ":5000", cfg.Addr)
	assert.True(t, cfg.Watch)
	assert.True(t, cfg.SearchIgnoreCase)
	assert.Equal(t, markup.Markdown, cfg.Format())
	assert.Equal(t, filepath.Join("content", ".riki", "index.db"), cfg.IndexPath)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
title: Team Wiki
private: true
content_dir: /srv/riki/content
user_dir: /srv/riki/user
addr: 127.0.0.1:8080
watch: false
search_ignore_case: false
default_format: org
auth_method: cleartext
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Team Wiki", cfg.Title)
	assert.True(t, cfg.Private)
	assert.Equal(t, "/srv/riki/content", cfg.ContentDir)
	assert.Equal(t, "/srv/riki/user", cfg.UserDir)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.False(t, cfg.Watch)
	assert.False(t, cfg.SearchIgnoreCase)
	assert.Equal(t, markup.Org, cfg.Format())
	assert.Equal(t, filepath.Join("/srv/riki/content", ".riki", "index.db"), cfg.IndexPath)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "title: From File\nprivate: false\n")

	t.Setenv("RIKI_TITLE", "From Env")
	t.Setenv("RIKI_PRIVATE", "true")
	t.Setenv("RIKI_ADDR", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "From Env", cfg.Title)
	assert.True(t, cfg.Private)
	assert.Equal(t, ":9999", cfg.Addr)
}

func TestExplicitIndexPathKept(t *testing.T) {
	path := writeConfig(t, "index_path: /var/lib/riki/index.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/riki/index.db", cfg.IndexPath)
}

func TestInvalidYAML(t *testing.T) {
	path := writeConfig(t, "title: [unclosed\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	_, err := Load(writeConfig(t, "default_format: textile\n"))
	assert.ErrorContains(t, err, "default_format")

	_, err = Load(writeConfig(t, "auth_method: md5\n"))
	assert.ErrorContains(t, err, "auth_method")

	_, err = Load(writeConfig(t, "content_dir: \"\"\n"))
	assert.ErrorContains(t, err, "content_dir")
}
