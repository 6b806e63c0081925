// Package filetest provides golden-file helpers for tests: enumerate
// source files of a directory and diff actual output against the recorded
// expected output, with flags to regenerate the golden files.
package filetest

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/kylelemons/godebug/diff"
)

var testUpdateAll = flag.Bool("test.update-all-tests", false, "If set, replace all expected test results with actual results.")

// SourceFiles returns the regular files of dir with the given extension
// (leading dot optional).
func SourceFiles(t *testing.T, dir, ext string) []string {
	t.Helper()

	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	dents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, dent := range dents {
		if !dent.Type().IsRegular() {
			continue
		}
		if ext != "" && filepath.Ext(dent.Name()) != ext {
			continue
		}
		names = append(names, dent.Name())
	}
	return names
}

// DiffOutput compares output against the golden file name+".want" in
// resultDir, or rewrites the golden file when the update flag is set.
func DiffOutput(t *testing.T, name, output, resultDir string, updateFlag *bool) {
	t.Helper()
	DiffCustom(t, name, "output", ".want", output, resultDir, updateFlag)
}

// DiffErrors compares error output against the golden file name+".err" in
// resultDir. A missing golden file stands for no expected errors.
func DiffErrors(t *testing.T, name, output, resultDir string, updateFlag *bool) {
	t.Helper()
	DiffCustom(t, name, "errors", ".err", output, resultDir, updateFlag)
}

// DiffCustom is the general form of DiffOutput and DiffErrors: label names
// the kind of output in failure logs and ext is the golden-file extension,
// including the leading dot.
func DiffCustom(t *testing.T, name, label, ext, output, resultDir string, updateFlag *bool) {
	t.Helper()

	goldFile := filepath.Join(resultDir, name+ext)
	if *updateFlag || *testUpdateAll {
		if output == "" && ext == ".err" {
			_ = os.Remove(goldFile)
			return
		}
		if err := os.WriteFile(goldFile, []byte(output), 0600); err != nil {
			t.Fatal(err)
		}
		return
	}

	wantb, err := os.ReadFile(goldFile)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	if patch := diff.Diff(string(wantb), output); patch != "" {
		t.Errorf("diff %s:\n%s\n", label, patch)
	}
}
