// test_helpers.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// Shared fixtures
// -----------------------------------------------------------------------------

// minimalSpecYAML returns a minimal proxygen spec that passes validateSpec.
func minimalSpecYAML() string {
	return "type: Mailer\n"
}

// ownerSource returns a small but representative owner package: exported and
// unexported fields, embedding, value/pointer receivers, variadic and
// unnamed parameters.
func ownerSource() string {
	return `package mail

import "time"

type backoff struct{ d time.Duration }

// Mailer sends rendered messages.
type Mailer struct {
	Host  string
	Port  int
	Retry time.Duration

	secret string

	backoff
}

// Send delivers a message and reports the byte count.
func (m *Mailer) Send(to string, body string) (int, error) {
	return len(body), nil
}

// Broadcast delivers to many recipients.
func (m *Mailer) Broadcast(body string, to ...string) int {
	return len(to)
}

// Ping checks connectivity.
func (m Mailer) Ping(_ int) {}

func (m *Mailer) reset() {}
`
}

//
// -----------------------------------------------------------------------------
// Small helpers
// -----------------------------------------------------------------------------

// writeTempFile writes a file under dir/name and returns its full path.
func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// readFileString reads a file and returns its contents as string (fatal on
// error).
func readFileString(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

// mustPanicContains asserts fn panics and the panic message contains wantSub.
func mustPanicContains(t *testing.T, wantSub string, fn func()) {
	t.Helper()

	defer func() {
		r := recover()
		require.NotNil(t, r)

		var msg string
		switch v := r.(type) {
		case error:
			msg = v.Error()
		case string:
			msg = v
		default:
			msg = fmt.Sprintf("%v", v)
		}
		require.Contains(t, msg, wantSub)
	}()

	fn()
}

//
// -----------------------------------------------------------------------------
// writeFileAtomic() seam helpers
// -----------------------------------------------------------------------------

// fakeTempFile is a controllable file-like object for writeFileAtomic tests.
// It lets tests force errors on Write and Close without touching real files.
type fakeTempFile struct {
	fileName string
	writeErr error
	closeErr error
}

func (f *fakeTempFile) Name() string { return f.fileName }

func (f *fakeTempFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return len(p), nil
}

func (f *fakeTempFile) Close() error { return f.closeErr }

// restoreWriteSeams resets the global file seams after a test overrode them.
func restoreWriteSeams(t *testing.T) {
	t.Helper()

	origCreate, origRemove := createTempFile, removeFile
	origChmod, origRename := chmodFile, renameFile
	t.Cleanup(func() {
		createTempFile = origCreate
		removeFile = origRemove
		chmodFile = origChmod
		renameFile = origRename
	})
}
