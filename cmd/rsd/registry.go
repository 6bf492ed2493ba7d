package main

import (
	"os"
	"strings"

	"github.com/ready-set-deploy/rsd/internal/provider"
	"github.com/ready-set-deploy/rsd/providers/fileset"
)

// StaticRegistry builds the process's static provider registry
// (SPEC_FULL.md section 6): the in-tree fileset reference provider, plus any
// out-of-tree executables named in RSD_PROVIDERS ("id=/path/to/exe,...").
// fileset is only registered when RSD_FILESET_ROOT is set, since it has no
// sensible default tracked-path set on an arbitrary host.
func StaticRegistry() *provider.Registry {
	reg := provider.NewRegistry()

	if root := os.Getenv("RSD_FILESET_ROOT"); root != "" {
		var paths []string
		if list := os.Getenv("RSD_FILESET_PATHS"); list != "" {
			paths = strings.Split(list, ",")
		}
		reg.Register(fileset.New(root, paths...))
	}

	for _, entry := range splitNonEmpty(os.Getenv("RSD_PROVIDERS"), ",") {
		id, path, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		reg.Register(provider.NewExternal(id, path))
	}

	return reg
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}
