// Package fetch loads manifests and page fragments from a content root,
// either a local directory or an http(s) base URL. Every fetch bypasses
// caches so edits show up on the next navigation.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned by ReadOK when the resource answered 404.
var ErrNotFound = errors.New("resource not found")

// Source fetches a resource by reference (a relative href).
type Source interface {
	Fetch(ctx context.Context, ref string) (*Response, error)
}

// Response is a completed fetch.
type Response struct {
	Ref         string
	Status      int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// ReadOK fetches ref and returns its body, turning non-success statuses
// into errors.
func ReadOK(ctx context.Context, src Source, ref string) ([]byte, error) {
	resp, err := src.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if resp.Status == 404 {
		return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%s: status %d", ref, resp.Status)
	}
	return resp.Body, nil
}

// IsRemote reports whether root is an http(s) base URL rather than a
// directory.
func IsRemote(root string) bool {
	return strings.HasPrefix(root, "http://") || strings.HasPrefix(root, "https://")
}

// New picks a Client for http(s) roots and a Dir otherwise.
func New(root string, timeout time.Duration) (Source, error) {
	if IsRemote(root) {
		return NewClient(root, timeout)
	}
	return NewDir(root)
}

// Measured wraps a Source and records every fetch with its outcome.
type Measured struct {
	Source
	Stats *Stats
}

func WithStats(src Source, stats *Stats) *Measured {
	return &Measured{Source: src, Stats: stats}
}

func (m *Measured) Fetch(ctx context.Context, ref string) (*Response, error) {
	start := time.Now()
	resp, err := m.Source.Fetch(ctx, ref)
	if m.Stats != nil {
		m.Stats.Record(ref, time.Since(start), resp, err)
	}
	return resp, err
}
