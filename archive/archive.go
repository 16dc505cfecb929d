// Package archive bundles a category's collection and its image files into a zip.
package archive

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sidhant-sriv/gallery-api/models"
)

type Summary struct {
	Items   int
	Assets  int
	Missing []string
}

// Filename is the download name offered for a category archive.
func Filename(cat models.Category) string {
	return cat.Name + "_data.zip"
}

// Write streams the archive to w. Item urls are resolved against publicRoot, the
// directory served under the "public/" url prefix. Assets that no longer exist are
// listed in Summary.Missing rather than failing the export.
func Write(w io.Writer, cat models.Category, items []models.Item, publicRoot string) (Summary, error) {
	sum := Summary{Items: len(items)}
	zw := zip.NewWriter(w)

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return sum, err
	}
	f, err := zw.Create(cat.Name + ".json")
	if err != nil {
		return sum, err
	}
	if _, err := f.Write(data); err != nil {
		return sum, err
	}

	seen := make(map[string]bool)
	for _, it := range items {
		local := localPath(it.URL, publicRoot)
		name := "assets/" + path.Base(it.URL)
		if local == "" || seen[name] {
			continue
		}
		seen[name] = true

		if err := addFile(zw, name, local); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				sum.Missing = append(sum.Missing, it.URL)
				continue
			}
			return sum, fmt.Errorf("adding %s: %w", it.URL, err)
		}
		sum.Assets++
	}

	return sum, zw.Close()
}

func localPath(url, publicRoot string) string {
	rel := strings.TrimPrefix(path.Clean("/"+url), "/")
	rel = strings.TrimPrefix(rel, "public/")
	if rel == "" || rel == "." {
		return ""
	}
	return filepath.Join(publicRoot, filepath.FromSlash(rel))
}

func addFile(zw *zip.Writer, name, local string) error {
	src, err := os.Open(local)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Store

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}
