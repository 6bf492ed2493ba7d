// Package fileset is RSD's in-tree reference provider: it tracks a small,
// caller-configured set of files under a root directory, purely to exercise
// the Provider contract end to end (gather, diff, combine, serialize,
// render) in tests and as a worked example for anyone writing a real
// external provider. It is not a claim that file-set management is RSD's
// domain.
package fileset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ready-set-deploy/rsd/internal/component"
	"github.com/ready-set-deploy/rsd/internal/element"
	"github.com/ready-set-deploy/rsd/internal/rsderrors"
	"github.com/ready-set-deploy/rsd/internal/system"
)

// ProviderID is the component type this provider gathers and renders.
const ProviderID = "fileset"

// Provider tracks Paths, each relative to Root, as "fileset" components with
// two elements: "lines" (the file's content, one Atom per line) and "mode"
// (its POSIX permission bits, zero-padded octal).
type Provider struct {
	Root  string
	Paths []string
}

// New builds a Provider rooted at root, tracking the given paths (each
// relative to root).
func New(root string, paths ...string) *Provider {
	return &Provider{Root: root, Paths: paths}
}

func (p *Provider) ID() string { return ProviderID }

// Gather reads each tracked path (or just the one named by qualifier, if
// given) off disk into a FULL fileset component.
func (p *Provider) Gather(ctx context.Context, qualifier []string) (system.System, error) {
	paths := p.Paths
	if len(qualifier) > 0 {
		paths = []string{filepath.Join(qualifier...)}
	}

	var comps []component.Component
	for _, rel := range paths {
		c, err := p.gatherOne(rel)
		if err != nil {
			return system.System{}, err
		}
		comps = append(comps, c)
	}
	return system.New(comps...), nil
}

func (p *Provider) gatherOne(rel string) (component.Component, error) {
	key := keyFor(rel)
	full := filepath.Join(p.Root, rel)

	data, err := os.ReadFile(full)
	if err != nil {
		return component.Component{}, rsderrors.Wrap(rsderrors.ErrGatherFailed, rsderrors.Key{Type: ProviderID, Qualifier: key.Qualifier}, "reading %s: %s", full, err)
	}
	info, err := os.Stat(full)
	if err != nil {
		return component.Component{}, rsderrors.Wrap(rsderrors.ErrGatherFailed, rsderrors.Key{Type: ProviderID, Qualifier: key.Qualifier}, "stat %s: %s", full, err)
	}

	return component.Component{
		Key:  key,
		Mode: component.FULL,
		Elements: []component.NamedElement{
			{Name: "lines", Value: element.NewList(splitLines(string(data))...)},
			{Name: "mode", Value: element.Atom(fmt.Sprintf("%04o", info.Mode().Perm()))},
		},
	}, nil
}

func keyFor(rel string) component.Key {
	return component.Key{Type: ProviderID, Qualifier: strings.Split(filepath.ToSlash(rel), "/")}
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

// Render turns a fileset diff/full/absent component into shell commands that
// effect the change on the host: a FULL component is written out whole and
// chmod'd, an ABSENT one is removed, and a DIFF component is translated into
// a context-anchored `patch` invocation for "lines" and a `chmod` for "mode"
// -- the renderer never reads the current file, so context (not line
// numbers) is what lets the command locate its target at execution time.
func (p *Provider) Render(ctx context.Context, diff component.Component) ([]string, error) {
	path := filepath.Join(p.Root, filepath.Join(diff.Key.Qualifier...))

	switch diff.Mode {
	case component.ABSENT:
		return []string{fmt.Sprintf("rm -f %s", shellQuote(path))}, nil
	case component.FULL:
		return renderFull(path, diff)
	case component.DIFF:
		return renderDiff(path, diff)
	default:
		return nil, rsderrors.Wrap(rsderrors.ErrRenderFailed, rsderrors.Key{Type: ProviderID, Qualifier: diff.Key.Qualifier}, "fileset: unknown component mode %s", diff.Mode)
	}
}

func renderFull(path string, diff component.Component) ([]string, error) {
	lines, mode, err := fullElements(diff)
	if err != nil {
		return nil, err
	}

	content := strings.Join(lines.Strings(), "\n")
	if len(lines) > 0 {
		content += "\n"
	}

	return []string{
		fmt.Sprintf("mkdir -p %s", shellQuote(filepath.Dir(path))),
		fmt.Sprintf("cat > %s <<'RSD_FILESET_EOF'\n%sRSD_FILESET_EOF", shellQuote(path), content),
		fmt.Sprintf("chmod %s %s", string(mode), shellQuote(path)),
	}, nil
}

func fullElements(diff component.Component) (element.List, element.Atom, error) {
	var lines element.List
	var mode element.Atom
	for _, e := range diff.Elements {
		switch e.Name {
		case "lines":
			l, ok := e.Value.(element.List)
			if !ok {
				return nil, "", rsderrors.Wrap(rsderrors.ErrSchemaMismatch, rsderrors.Key{Type: ProviderID, Element: "lines"}, "fileset: lines element is not a List")
			}
			lines = l
		case "mode":
			m, ok := e.Value.(element.Atom)
			if !ok {
				return nil, "", rsderrors.Wrap(rsderrors.ErrSchemaMismatch, rsderrors.Key{Type: ProviderID, Element: "mode"}, "fileset: mode element is not an Atom")
			}
			mode = m
		}
	}
	return lines, mode, nil
}

func renderDiff(path string, diff component.Component) ([]string, error) {
	var cmds []string
	for _, e := range diff.Elements {
		switch e.Name {
		case "mode":
			d, ok := e.Value.(element.AtomDiff)
			if !ok {
				return nil, rsderrors.Wrap(rsderrors.ErrSchemaMismatch, rsderrors.Key{Type: ProviderID, Element: "mode"}, "fileset: mode diff is not an AtomDiff")
			}
			cmds = append(cmds, fmt.Sprintf("chmod %s %s", string(d), shellQuote(path)))
		case "lines":
			d, ok := e.Value.(element.ListDiff)
			if !ok {
				return nil, rsderrors.Wrap(rsderrors.ErrSchemaMismatch, rsderrors.Key{Type: ProviderID, Element: "lines"}, "fileset: lines diff is not a ListDiff")
			}
			if patch := unifiedDiff(path, d); patch != "" {
				cmds = append(cmds, fmt.Sprintf("patch --fuzz=3 --no-backup-if-mismatch %s <<'RSD_FILESET_PATCH'\n%sRSD_FILESET_PATCH", shellQuote(path), patch))
			}
		}
	}
	return cmds, nil
}

// unifiedDiff renders a ListDiff's hunks as a standard unified diff, one @@
// section per hunk. The line-number pair in each hunk header is a
// placeholder (patch relies on the surrounding context, not these numbers,
// to locate its target -- the renderer has no access to the host's current
// content to compute real ones).
func unifiedDiff(path string, d element.ListDiff) string {
	if len(d.Script.Hunks) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", path, path)
	for _, h := range d.Script.Hunks {
		oldLen := len(h.Pre) + len(h.Old) + len(h.Post)
		newLen := len(h.Pre) + len(h.New) + len(h.Post)
		fmt.Fprintf(&b, "@@ -1,%d +1,%d @@\n", oldLen, newLen)
		for _, l := range h.Pre {
			fmt.Fprintf(&b, " %s\n", l)
		}
		for _, l := range h.Old {
			fmt.Fprintf(&b, "-%s\n", l)
		}
		for _, l := range h.New {
			fmt.Fprintf(&b, "+%s\n", l)
		}
		for _, l := range h.Post {
			fmt.Fprintf(&b, " %s\n", l)
		}
	}
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
