// Package catalog fetches the list of installable packages from a remote URL
// or a local file.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"

	"github.com/provide-io/aipman/pkg/aip"
	aiperrors "github.com/provide-io/aipman/pkg/aip/errors"
	"github.com/provide-io/aipman/pkg/aip/version"
)

// DefaultURL is the community package list.
const DefaultURL = "https://raw.githubusercontent.com/blueOkiris/aip-man-pkg-list/main/pkgs.json"

// maxCatalogBytes bounds how much of a catalog response is read.
const maxCatalogBytes = 32 << 20

// Source reads catalogs over HTTP or from disk.
type Source struct {
	location string
	client   *http.Client
	logger   hclog.Logger
}

// NewSource creates a Source whose default location is location (DefaultURL
// when empty).
func NewSource(location string, client *http.Client, logger hclog.Logger) *Source {
	if location == "" {
		location = DefaultURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Source{location: location, client: client, logger: logger}
}

// Location returns the location Fetch uses when no override is given.
func (s *Source) Location() string {
	return s.location
}

// Fetch downloads and parses the catalog. A non-empty override replaces the
// default location for this call. Any transport, status or parse failure is
// returned; a partial catalog is never produced.
func (s *Source) Fetch(ctx context.Context, override string) ([]aip.Package, error) {
	location := s.location
	if override != "" {
		location = override
	}

	var (
		data []byte
		err  error
	)
	if path, ok := LocalPath(location); ok {
		s.logger.Debug("📂 Reading local catalog", "path", path)
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", aiperrors.ErrCatalogFetch, path, err)
		}
	} else {
		s.logger.Debug("🌐 Fetching remote catalog", "url", location)
		data, err = s.fetchRemote(ctx, location)
		if err != nil {
			return nil, err
		}
	}

	pkgs, err := Parse(data, location)
	if err != nil {
		return nil, err
	}
	s.logger.Info("📚 Catalog loaded", "location", location, "packages", len(pkgs))
	return pkgs, nil
}

func (s *Source) fetchRemote(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", aiperrors.ErrCatalogFetch, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", aiperrors.ErrCatalogFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", aiperrors.ErrCatalogFetch, location, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", aiperrors.ErrCatalogFetch, err)
	}
	return data, nil
}

// LocalPath reports whether location refers to the local filesystem and
// returns the path. "file://" URLs and absolute paths are local.
func LocalPath(location string) (string, bool) {
	if strings.HasPrefix(location, "file://") {
		if u, err := url.Parse(location); err == nil && u.Path != "" {
			return filepath.FromSlash(u.Path), true
		}
		return strings.TrimPrefix(location, "file://"), true
	}
	if filepath.IsAbs(location) {
		return location, true
	}
	return "", false
}

// Parse decodes a catalog. Locations ending in .yaml or .yml are decoded as
// YAML, everything else as a JSON array.
func Parse(data []byte, location string) ([]aip.Package, error) {
	var pkgs []aip.Package

	lower := strings.ToLower(location)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		if err := yaml.Unmarshal(data, &pkgs); err != nil {
			return nil, fmt.Errorf("%w: %v", aiperrors.ErrCatalogParse, err)
		}
	} else if err := json.Unmarshal(data, &pkgs); err != nil {
		return nil, fmt.Errorf("%w: %v", aiperrors.ErrCatalogParse, err)
	}

	for i, pkg := range pkgs {
		if err := pkg.Validate(); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", aiperrors.ErrCatalogParse, i, err)
		}
	}
	if pkgs == nil {
		pkgs = []aip.Package{}
	}
	return pkgs, nil
}

// Lookup returns the catalog entry for name. When several entries share the
// name the one with the highest version wins; entries whose versions cannot
// be compared keep the earlier choice.
func Lookup(pkgs []aip.Package, name string) (aip.Package, bool) {
	var (
		best  aip.Package
		found bool
	)
	for _, pkg := range pkgs {
		if pkg.Name != name {
			continue
		}
		if !found {
			best, found = pkg, true
			continue
		}
		if cmp, err := version.Compare(best.Version, pkg.Version); err == nil && cmp < 0 {
			best = pkg
		}
	}
	return best, found
}
