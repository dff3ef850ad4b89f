package builtin

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type fakeHost struct {
	home    string
	hasHome bool
	waits   int
}

func (h *fakeHost) HomeDir() (string, bool)     { return h.home, h.hasHome }
func (h *fakeHost) WaitAll(ctx context.Context) { h.waits++ }

func run(t *testing.T, b Builtin, h Host, args ...string) (status int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	status = b.Run(context.Background(), h, args, &out, &errOut)
	return status, out.String(), errOut.String()
}

func TestDefaults(t *testing.T) {
	reg := Defaults()

	var names []string
	for _, b := range reg.All() {
		names = append(names, b.Name())
	}
	assert.Equal(t, []string{"cd", "dirs", "wait"}, names)

	cd, ok := reg.Lookup("cd")
	require.True(t, ok)
	assert.Equal(t, InProcess, cd.Placement())

	dirs, ok := reg.Lookup("dirs")
	require.True(t, ok)
	assert.Equal(t, Child, dirs.Placement())

	_, ok = reg.Lookup("ls")
	assert.False(t, ok)

	var none *Registry
	_, ok = none.Lookup("cd")
	assert.False(t, ok)
}

func TestPlacementText(t *testing.T) {
	for _, p := range []Placement{InProcess, Child} {
		back, err := ParsePlacement(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, back)
	}
	_, err := ParsePlacement("elsewhere")
	assert.Error(t, err)
}

func TestValidateUsage(t *testing.T) {
	assert.NoError(t, Cd{}.Validate(nil))
	assert.NoError(t, Cd{}.Validate([]string{"/tmp"}))
	assert.EqualError(t, Cd{}.Validate([]string{"a", "b"}), "usage: cd  OR  cd <directory-name>")

	assert.NoError(t, Wait{}.Validate(nil))
	assert.EqualError(t, Wait{}.Validate([]string{"1"}), "usage: wait")

	assert.NoError(t, Dirs{}.Validate(nil))
	assert.EqualError(t, Dirs{}.Validate([]string{"-v"}), "usage: dirs")
}

func TestCdToArgument(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PWD", "")
	target := t.TempDir()

	status, _, stderr := run(t, Cd{}, &fakeHost{}, target)
	assert.Equal(t, 0, status)
	assert.Empty(t, stderr)

	wd, err := os.Getwd()
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(wd)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, wd, os.Getenv("PWD"))
}

func TestCdHome(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PWD", "")
	home := t.TempDir()

	status, _, _ := run(t, Cd{}, &fakeHost{home: home, hasHome: true})
	assert.Equal(t, 0, status)

	wd, err := os.Getwd()
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(home)
	got, _ := filepath.EvalSymlinks(wd)
	assert.Equal(t, want, got)
}

func TestCdWithoutHome(t *testing.T) {
	start := t.TempDir()
	t.Chdir(start)

	status, _, stderr := run(t, Cd{}, &fakeHost{})
	assert.Equal(t, 1, status)
	assert.Equal(t, "cd: $HOME variable not set\n", stderr)

	wd, err := os.Getwd()
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(start)
	got, _ := filepath.EvalSymlinks(wd)
	assert.Equal(t, want, got)
}

func TestCdMissingDirectory(t *testing.T) {
	t.Chdir(t.TempDir())
	missing := filepath.Join(t.TempDir(), "nope")

	status, _, stderr := run(t, Cd{}, &fakeHost{}, missing)
	assert.Equal(t, int(unix.ENOENT), status)
	assert.Contains(t, stderr, missing)
}

func TestWaitDelegatesToHost(t *testing.T) {
	h := &fakeHost{}
	status, stdout, stderr := run(t, Wait{}, h)
	assert.Equal(t, 0, status)
	assert.Equal(t, 1, h.waits)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}

func TestDirsPrintsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	status, stdout, _ := run(t, Dirs{}, &fakeHost{})
	assert.Equal(t, 0, status)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd+"\n", stdout)
}
