package fileset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"

	"github.com/ready-set-deploy/rsd/internal/component"
	"github.com/ready-set-deploy/rsd/internal/element"
)

func writeFile(t *testing.T, root, rel, content string, perm os.FileMode) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), perm))
}

func TestGatherReadsLinesAndMode(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "etc/hosts", "127.0.0.1 localhost\n::1 localhost\n", 0o644)

	p := New(root, "etc/hosts")
	sys, err := p.Gather(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, sys.Len())

	c, ok := sys.Get(component.Key{Type: ProviderID, Qualifier: []string{"etc", "hosts"}})
	require.True(t, ok)
	assert.Equal(t, c.Mode, component.FULL)

	lines, mode, err := fullElements(c)
	require.NoError(t, err)
	assert.DeepEqual(t, lines.Strings(), []string{"127.0.0.1 localhost", "::1 localhost"})
	assert.Equal(t, string(mode), "0644")
}

func TestGatherWithQualifierRestrictsToOnePath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a", "one\n", 0o644)
	writeFile(t, root, "b", "two\n", 0o644)

	p := New(root, "a", "b")
	sys, err := p.Gather(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, sys.Len(), 1)
	_, ok := sys.Get(component.Key{Type: ProviderID, Qualifier: []string{"a"}})
	assert.Assert(t, ok)
}

func TestGatherMissingFileFails(t *testing.T) {
	root := t.TempDir()
	p := New(root, "missing")
	_, err := p.Gather(context.Background(), nil)
	require.Error(t, err)
}

func TestRenderFullWritesContentAndMode(t *testing.T) {
	p := New("/srv")
	diff := component.Component{
		Key:  component.Key{Type: ProviderID, Qualifier: []string{"etc", "motd"}},
		Mode: component.FULL,
		Elements: []component.NamedElement{
			{Name: "lines", Value: element.NewList("hello", "world")},
			{Name: "mode", Value: element.Atom("0644")},
		},
	}
	cmds, err := p.Render(context.Background(), diff)
	require.NoError(t, err)
	require.Equal(t, 3, len(cmds))
	assert.Assert(t, cmds[0] == "mkdir -p '/srv/etc'")
	assert.Assert(t, cmds[1] == "cat > '/srv/etc/motd' <<'RSD_FILESET_EOF'\nhello\nworld\nRSD_FILESET_EOF")
	assert.Assert(t, cmds[2] == "chmod 0644 '/srv/etc/motd'")
}

func TestRenderAbsentRemoves(t *testing.T) {
	p := New("/srv")
	diff := component.Component{Key: component.Key{Type: ProviderID, Qualifier: []string{"tmp", "stale"}}, Mode: component.ABSENT}
	cmds, err := p.Render(context.Background(), diff)
	require.NoError(t, err)
	assert.DeepEqual(t, cmds, []string{"rm -f '/srv/tmp/stale'"})
}

func TestRenderDiffEmitsPatchAndChmod(t *testing.T) {
	before := element.NewList("one", "two", "three")
	after := element.NewList("one", "TWO", "three")
	full := component.Component{
		Key:      component.Key{Type: ProviderID, Qualifier: []string{"f"}},
		Mode:     component.FULL,
		Elements: []component.NamedElement{{Name: "lines", Value: before}, {Name: "mode", Value: element.Atom("0644")}},
	}
	target := component.Component{
		Key:      component.Key{Type: ProviderID, Qualifier: []string{"f"}},
		Mode:     component.FULL,
		Elements: []component.NamedElement{{Name: "lines", Value: after}, {Name: "mode", Value: element.Atom("0600")}},
	}

	diff, err := component.Diff(&full, &target)
	require.NoError(t, err)

	p := New("/srv")
	cmds, err := p.Render(context.Background(), diff)
	require.NoError(t, err)
	require.Equal(t, 2, len(cmds))
	assert.Assert(t, cmds[0] == "chmod 0600 '/srv/f'" || cmds[1] == "chmod 0600 '/srv/f'")

	var patchCmd string
	for _, c := range cmds {
		if strings.HasPrefix(c, "patch") {
			patchCmd = c
		}
	}
	require.NotEmpty(t, patchCmd)
	assert.Assert(t, strings.Contains(patchCmd, "-two"))
	assert.Assert(t, strings.Contains(patchCmd, "+TWO"))
}
