package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes into dir for the duration of the test and restores the
// previous working directory on cleanup (t.Chdir requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
}

//
// -----------------------------------------------------------------------------
// loadSpec
// -----------------------------------------------------------------------------

// TestLoadSpec_YAMLAndJSONEquivalent verifies the two spec encodings decode
// to the same structure.
func TestLoadSpec_YAMLAndJSONEquivalent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	yamlPath := writeTempFile(t, dir, "m.proxygen.yaml", `
type: Mailer
proxyName: LazyMailer
package: mail
skip: [Port]
`)
	jsonPath := writeTempFile(t, dir, "m.proxygen.json", `{
  "type": "Mailer",
  "proxyName": "LazyMailer",
  "package": "mail",
  "skip": ["Port"]
}`)

	fromYAML, err := loadSpec(yamlPath)
	require.NoError(t, err)
	fromJSON, err := loadSpec(jsonPath)
	require.NoError(t, err)

	assert.Equal(t, fromYAML, fromJSON)
	assert.Equal(t, "Mailer", fromYAML.Type)
	assert.Equal(t, "LazyMailer", fromYAML.ProxyName)
	assert.Equal(t, []string{"Port"}, fromYAML.Skip)
}

// TestLoadSpec_Errors verifies unreadable files and unknown extensions fail.
func TestLoadSpec_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := loadSpec(dir + "/missing.yaml")
	require.Error(t, err)

	badExt := writeTempFile(t, dir, "spec.toml", "type = 'Mailer'")
	_, err = loadSpec(badExt)
	require.ErrorContains(t, err, "unsupported spec extension")
}

//
// -----------------------------------------------------------------------------
// validateSpec
// -----------------------------------------------------------------------------

// TestValidateSpec_Defaults verifies the derived proxy name.
func TestValidateSpec_Defaults(t *testing.T) {
	t.Parallel()

	spec := Spec{Type: "Mailer"}
	validateSpec(&spec)
	assert.Equal(t, "MailerProxy", spec.ProxyName)

	spec = Spec{Type: "Mailer", ProxyName: "LazyMailer"}
	validateSpec(&spec)
	assert.Equal(t, "LazyMailer", spec.ProxyName)
}

// TestValidateSpec_Panics verifies the fail-fast paths.
func TestValidateSpec_Panics(t *testing.T) {
	t.Parallel()

	mustPanicContains(t, "missing required field: type", func() {
		validateSpec(&Spec{})
	})
	mustPanicContains(t, "duplicate skip entry", func() {
		validateSpec(&Spec{Type: "Mailer", Skip: []string{"Port", "Port"}})
	})
	mustPanicContains(t, "non-empty member names", func() {
		validateSpec(&Spec{Type: "Mailer", Skip: []string{" "}})
	})
}

//
// -----------------------------------------------------------------------------
// loadOptions
// -----------------------------------------------------------------------------

// TestLoadOptions_Defaults verifies built-in defaults when no config file
// exists anywhere.
func TestLoadOptions_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	opts, err := loadOptions("")
	require.NoError(t, err)
	assert.Equal(t, defaultCoreImport, opts.CoreImport)
	assert.Empty(t, opts.HeaderNote)
}

// TestLoadOptions_WorkingDirConfig verifies a .proxygen.yaml in the working
// directory is picked up.
func TestLoadOptions_WorkingDirConfig(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, ".proxygen.yaml", "header_note: refreshed by go generate\n")
	chdir(t, dir)

	opts, err := loadOptions("")
	require.NoError(t, err)
	assert.Equal(t, defaultCoreImport, opts.CoreImport)
	assert.Equal(t, "refreshed by go generate", opts.HeaderNote)
}

// TestLoadOptions_ExplicitFile verifies -config overrides and that a missing
// explicit file is an error rather than a silent skip.
func TestLoadOptions_ExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeTempFile(t, dir, "gen.yaml", "core_import: example.com/fork/proxy\n")

	opts, err := loadOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, "example.com/fork/proxy", opts.CoreImport)

	_, err = loadOptions(dir + "/nope.yaml")
	require.Error(t, err)
}

//
// -----------------------------------------------------------------------------
// run / CLI plumbing
// -----------------------------------------------------------------------------

// TestRun_MissingFlags verifies the usage error path exits non-zero.
func TestRun_MissingFlags(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run([]string{"generate"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "usage: proxygen generate")
}

// TestRun_UnknownCommand verifies cobra rejects unknown subcommands.
func TestRun_UnknownCommand(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	code := run([]string{"frobnicate"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
}

// TestRun_EndToEnd verifies the full flow: spec + owner package in, valid
// generated Go out.
func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTempFile(t, dir, "mailer.go", ownerSource())
	spec := writeTempFile(t, dir, "mailer.proxygen.yaml", minimalSpecYAML())
	out := dir + "/mailer_proxy.gen.go"

	var stdout, stderr bytes.Buffer
	code := run([]string{"generate", "--spec", spec, "--out", out}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	generated := readFileString(t, out)
	assert.Contains(t, generated, "// Code generated by proxygen; DO NOT EDIT.")
	assert.Contains(t, generated, "package mail")
	assert.Contains(t, generated, "func NewMailerProxy(f *proxy.Factory, init proxy.Initializer[Mailer]) (*MailerProxy, error)")
	assert.Contains(t, generated, "func (p *MailerProxy) Send(to string, body string) (r0 int, err error)")
	assert.Contains(t, generated, "func (p *MailerProxy) Broadcast(body string, to ...string) (r0 int, err error)")
	assert.Contains(t, generated, "func (p *MailerProxy) GetHost() (val string, err error)")
	assert.Contains(t, generated, "func (p *MailerProxy) SetRetry(val time.Duration) error")
	assert.Contains(t, generated, `"time"`)

	// Unexported and embedded members never surface.
	assert.NotContains(t, generated, "secret")
	assert.NotContains(t, generated, "backoff")
}
