package provider

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"

	"github.com/ready-set-deploy/rsd/internal/component"
	"github.com/ready-set-deploy/rsd/internal/rsderrors"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("external provider scripts are POSIX shell fixtures")
	}
	path := filepath.Join(t.TempDir(), "fakeprovider.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestExternalGatherParsesEmptySystem(t *testing.T) {
	path := writeScript(t, `echo "version: 1"
echo "mode: full"
echo "components: []"
`)
	p := NewExternal("fake", path)
	sys, err := p.Gather(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, sys.Len(), 0)
}

func TestExternalGatherFailurePropagatesStderr(t *testing.T) {
	path := writeScript(t, `echo "boom" 1>&2
exit 1
`)
	p := NewExternal("fake", path)
	_, err := p.Gather(context.Background(), nil)
	require.Error(t, err)
	assert.Assert(t, errors.Is(err, rsderrors.ErrGatherFailed))
	assert.ErrorContains(t, err, "boom")
}

func TestExternalRenderScansCommandLines(t *testing.T) {
	path := writeScript(t, `cat > /dev/null
echo "untap x/y"
echo "untap homebrew/core"
`)
	p := NewExternal("brew", path)
	diff := component.Component{Key: component.Key{Type: "brew", Qualifier: []string{"tap"}}, Mode: component.ABSENT}
	cmds, err := p.Render(context.Background(), diff)
	require.NoError(t, err)
	assert.DeepEqual(t, cmds, []string{"untap x/y", "untap homebrew/core"})
}

func TestExternalRenderFailurePropagatesStderr(t *testing.T) {
	path := writeScript(t, `cat > /dev/null
echo "render failed: disk full" 1>&2
exit 2
`)
	p := NewExternal("brew", path)
	diff := component.Component{Key: component.Key{Type: "brew", Qualifier: []string{"tap"}}, Mode: component.ABSENT}
	_, err := p.Render(context.Background(), diff)
	require.Error(t, err)
	assert.Assert(t, errors.Is(err, rsderrors.ErrRenderFailed))
	assert.ErrorContains(t, err, "disk full")
}
