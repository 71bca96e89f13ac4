package fetch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
)

// Dir serves resources from a local directory.
type Dir struct {
	root string
	fsys fs.FS
}

func NewDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("content root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s is not a directory", root)
	}
	return &Dir{root: root, fsys: os.DirFS(root)}, nil
}

// Root returns the directory path.
func (d *Dir) Root() string { return d.root }

// FS exposes the directory for static file serving.
func (d *Dir) FS() fs.FS { return d.fsys }

// Fetch reads ref from the directory. Missing files yield a 404 response and
// refs escaping the root a 400, mirroring what an HTTP origin would answer.
func (d *Dir) Fetch(ctx context.Context, ref string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, ok := cleanRef(ref)
	if !ok {
		return &Response{Ref: ref, Status: http.StatusBadRequest}, nil
	}
	info, err := fs.Stat(d.fsys, name)
	if err != nil || info.IsDir() {
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return &Response{Ref: ref, Status: http.StatusNotFound}, nil
		}
		return nil, fmt.Errorf("stat %s: %w", ref, err)
	}
	body, err := fs.ReadFile(d.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return &Response{
		Ref:         ref,
		Status:      http.StatusOK,
		ContentType: mime.TypeByExtension(path.Ext(name)),
		Body:        body,
	}, nil
}

// cleanRef turns an href into an fs.FS path: query and fragment dropped,
// leading "./" and "/" removed, ".." segments rejected.
func cleanRef(ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	p := strings.TrimPrefix(u.Path, "/")
	if p == "" {
		return "", false
	}
	p = path.Clean(p)
	if !fs.ValidPath(p) {
		return "", false
	}
	return p, true
}
