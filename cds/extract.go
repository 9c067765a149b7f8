package cds

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks the retrieved .nc.zip into dir and returns the paths of
// the extracted members.
func Extract(zipfp, dir string) ([]string, error) {
	r, err := zip.OpenReader(zipfp)
	if err != nil {
		return nil, fmt.Errorf("cds: %v", err)
	}
	defer r.Close()

	var out []string
	for _, zf := range r.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(zf.Name) // archives carry no useful directory structure
		if strings.HasPrefix(name, ".") {
			continue
		}
		fp := filepath.Join(dir, name)
		if err := extractOne(zf, fp); err != nil {
			return nil, fmt.Errorf("cds: extracting %s: %v", zf.Name, err)
		}
		out = append(out, fp)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("cds: %s: empty archive", zipfp)
	}
	return out, nil
}

func extractOne(zf *zip.File, fp string) error {
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	f, err := os.Create(fp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
