package source

import (
	"archive/tar"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/fmatten/fhir-mdr/core"
)

// ReadPackage reads an NPM-style FHIR package from a directory or a
// gzip-compressed tar archive. Archives are extracted into a private
// temporary directory that is removed before this call returns, on every
// path. All *.json files except package.json and .index.json are
// considered; files that fail to parse or lack a resourceType are skipped
// silently, since packages may carry non-resource JSON metadata. Bundles
// inside package files contribute their entries to the stream without a
// bundle record of their own.
func ReadPackage(path string) (*Stream, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: missing package path: %s", core.ErrInvalidSource, path)
	}

	root := path
	if !info.IsDir() {
		if !isArchivePath(path) {
			return nil, fmt.Errorf("%w: not a package directory or .tgz archive: %s", core.ErrInvalidSource, path)
		}
		tmp, err := os.MkdirTemp("", "fhir-package-*")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(tmp)
		if err := extractArchive(path, tmp); err != nil {
			return nil, fmt.Errorf("%w: invalid archive %s: %v", core.ErrInvalidSource, path, err)
		}
		root = tmp
	}

	// npm packages conventionally wrap their content in a package/ dir.
	if nested := filepath.Join(root, "package"); dirExists(nested) {
		root = nested
	}

	files, err := packageJSONFiles(root)
	if err != nil {
		return nil, err
	}

	var items []Item
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		resource, err := core.DecodeJSONObject(data)
		if err != nil {
			continue
		}
		fields := core.ExtractFields(resource)
		if fields.ResourceType == "" {
			continue
		}

		if fields.ResourceType == "Bundle" {
			var envelope bundleEnvelope
			if err := json.Unmarshal(data, &envelope); err != nil {
				continue
			}
			nested, err := bundleItems(envelope)
			if err != nil {
				return nil, err
			}
			items = append(items, nested...)
			continue
		}

		sha, err := core.HashResource(resource)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{
			Payload: strings.TrimSpace(string(data)),
			JSON:    resource,
			Fields:  fields,
			SHA256:  sha,
		})
	}

	return &Stream{Kind: core.SourceKindPackage, Items: items}, nil
}

func isArchivePath(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(name, ".tgz") ||
		strings.HasSuffix(name, ".tar.gz") ||
		strings.HasSuffix(name, ".gz")
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// packageJSONFiles walks root recursively and collects candidate resource
// files in lexical order.
func packageJSONFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			return nil
		}
		if name == "package.json" || name == ".index.json" {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// extractArchive unpacks a gzip-compressed tar archive under dest. Entries
// escaping dest and non-regular files are skipped.
func extractArchive(archivePath string, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		target, ok := safeJoin(dest, header.Name)
		if !ok {
			continue
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}

// safeJoin resolves an archive member name under dest, rejecting absolute
// paths and parent traversal.
func safeJoin(dest string, name string) (string, bool) {
	cleaned := filepath.Clean(name)
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", false
	}
	return filepath.Join(dest, cleaned), true
}
