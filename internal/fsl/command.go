// Package fsl locates and runs FSL command-line tools.
package fsl

import (
	"os"
	"path/filepath"
)

// ResolveProgram finds the executable for an FSL tool name. The directory
// containing the running binary is searched first, so an updated bundle
// can be run in-situ without installation, then $FSLDIR/bin. If neither
// holds the tool the bare name is returned for normal PATH lookup.
func ResolveProgram(name string) string {
	if exe, err := os.Executable(); err == nil {
		local := filepath.Join(filepath.Dir(exe), name)
		if _, err := os.Stat(local); err == nil {
			return local
		}
	}
	if fsldir := os.Getenv("FSLDIR"); fsldir != "" {
		p := filepath.Join(fsldir, "bin", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return name
}
