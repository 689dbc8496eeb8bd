// loader.go - Load replay scripts from a JSON file or a ZIP bundle holding
// script.json and its photo.
package script

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BundleScriptName is the script file inside a ZIP bundle.
const BundleScriptName = "script.json"

// Load reads a replay script. A ".zip" path is treated as a bundle: it is
// extracted to a temp directory and its script.json parsed. Relative image
// paths are resolved against the script's directory. The returned cleanup
// function removes any temp directory.
func Load(path string) (*Script, func(), error) {
	noop := func() {}

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return loadBundle(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, noop, fmt.Errorf("read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, noop, err
	}
	resolvePaths(s, filepath.Dir(path))
	return s, noop, nil
}

func loadBundle(path string) (*Script, func(), error) {
	noop := func() {}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, noop, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	tmpDir, err := os.MkdirTemp("", "facetex-*")
	if err != nil {
		return nil, noop, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	if err := extractZip(r, tmpDir); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("extract %s: %w", path, err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, BundleScriptName))
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("read %s: %w", BundleScriptName, err)
	}
	s, err := Parse(data)
	if err != nil {
		cleanup()
		return nil, noop, err
	}
	resolvePaths(s, tmpDir)
	return s, cleanup, nil
}

// resolvePaths makes relative input paths absolute using baseDir. Output
// paths stay relative to the working directory.
func resolvePaths(s *Script, baseDir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}
	s.Image = resolve(s.Image)
	s.Video.Font = resolve(s.Video.Font)
}

// extractZip extracts all files from a zip reader into destDir.
func extractZip(r *zip.ReadCloser, destDir string) error {
	for _, f := range r.File {
		target := filepath.Join(destDir, f.Name)

		// Guard against zip slip.
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("illegal path in zip: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

// extractFile writes a single zip entry to disk.
func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}
