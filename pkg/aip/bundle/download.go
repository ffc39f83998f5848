package bundle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	aiperrors "github.com/provide-io/aipman/pkg/aip/errors"
)

// download copies the bundle at location into the application directory
// under a unique name and returns that path. The original file name is kept
// as a suffix so the archive format stays recognizable.
func (m *Materializer) download(ctx context.Context, location, id string) (string, error) {
	dest := m.paths.Download(id, "-"+sourceBaseName(location))

	var err error
	if local, ok := localSource(location); ok {
		m.logger.Debug("📂 Copying local bundle", "path", local)
		err = copyFile(local, dest)
		if err != nil {
			err = fmt.Errorf("%w: %s: %v", aiperrors.ErrDownloadFailed, local, err)
		}
	} else {
		err = m.fetch(ctx, location, dest)
	}
	if err != nil {
		os.Remove(dest)
		return "", err
	}
	return dest, nil
}

func (m *Materializer) fetch(ctx context.Context, location, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", aiperrors.ErrDownloadFailed, err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", aiperrors.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned status %d", aiperrors.ErrDownloadFailed, location, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", aiperrors.ErrDownloadFailed, dest, err)
	}
	written, err := io.Copy(out, resp.Body)
	if err != nil {
		out.Close()
		return fmt.Errorf("%w: reading response: %v", aiperrors.ErrDownloadFailed, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %v", aiperrors.ErrDownloadFailed, err)
	}

	m.logger.Debug("📥 Download complete", "url", location, "bytes", written)
	return nil
}

// localSource reports whether location names a file on disk: a file:// URL
// or anything without an http(s) scheme.
func localSource(location string) (string, bool) {
	if strings.HasPrefix(location, "file://") {
		if u, err := url.Parse(location); err == nil && u.Path != "" {
			return filepath.FromSlash(u.Path), true
		}
		return strings.TrimPrefix(location, "file://"), true
	}
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return "", false
	}
	return location, true
}

// sourceBaseName returns the last path element of a URL or path, ignoring
// query strings.
func sourceBaseName(location string) string {
	p := location
	if u, err := url.Parse(location); err == nil && u.Scheme != "" {
		p = u.Path
	}
	base := path.Base(filepath.ToSlash(p))
	if base == "." || base == "/" || base == "" {
		return "bundle"
	}
	return base
}
