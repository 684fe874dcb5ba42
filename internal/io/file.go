// Package ioutils provides local file access and image processing for the
// asset loader.
package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FileTransport reads assets from the local file system.
//
// URLs may be file:// URLs or plain paths. Relative paths are resolved
// against Root. FileTransport satisfies fetch.Transport.
//
// Example:
//
//	ft := &FileTransport{Root: "./assets"}
//	data, err := ft.Fetch(ctx, "images/hero.png", nil)
type FileTransport struct {
	// Root is the directory relative paths are resolved against.
	// Empty means the working directory.
	Root string
}

// Fetch reads the file named by rawURL.
//
// Progress is reported as the file is copied into memory. The context is
// checked before the file is opened; reads themselves are not interruptible.
func (t *FileTransport) Fetch(ctx context.Context, rawURL string, onProgress func(written, total int64)) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := t.Resolve(rawURL)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	total := int64(-1)
	if info, err := f.Stat(); err == nil {
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}
		total = info.Size()
	}

	var buf bytes.Buffer
	var w io.Writer = &buf
	if onProgress != nil {
		w = &progressWriter{w: &buf, total: total, onUpdate: onProgress}
	}

	if _, err := io.Copy(w, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Resolve maps rawURL to a file system path.
func (t *FileTransport) Resolve(rawURL string) (string, error) {
	path := rawURL
	if strings.HasPrefix(rawURL, "file:") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", err
		}
		path = u.Path
	} else if i := strings.IndexAny(path, "?#"); i >= 0 {
		// version and cache-busting parameters mean nothing on disk
		path = path[:i]
	}

	path = filepath.FromSlash(path)
	if !filepath.IsAbs(path) && t.Root != "" {
		path = filepath.Join(t.Root, path)
	}
	return path, nil
}

type progressWriter struct {
	w        io.Writer
	written  int64
	total    int64
	onUpdate func(written, total int64)
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written += int64(n)
	pw.onUpdate(pw.written, pw.total)
	return n, err
}
