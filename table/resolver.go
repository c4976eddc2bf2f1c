package table

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/010m010/PMSChartAnalyzer/chart"
)

// Resolver turns a table entry into raw chart bytes. Resolution is the only
// blocking point of a batch run; the runner wraps each call in the configured
// timeout. Retry policy, if any, belongs to the resolver, not the core.
type Resolver interface {
	Resolve(ctx context.Context, entry DifficultyEntry) ([]byte, error)
}

// FileResolver reads chart files relative to a base directory. Absolute paths
// in the table are used as-is.
type FileResolver struct {
	BaseDir string
}

func (r *FileResolver) Resolve(_ context.Context, entry DifficultyEntry) ([]byte, error) {
	path := NormalizePath(entry.Path)
	if !filepath.IsAbs(path) && r.BaseDir != "" {
		path = filepath.Join(r.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", chart.ErrUnreadableFile, path, err)
	}
	return data, nil
}

// HTTPResolver fetches chart bytes over HTTP(S). The request inherits the
// caller's context, so the runner's per-entry timeout applies.
type HTTPResolver struct {
	Client *http.Client
}

func (r *HTTPResolver) Resolve(ctx context.Context, entry DifficultyEntry) ([]byte, error) {
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entry.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("build chart request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch chart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch chart: unexpected status %s for %s", resp.Status, entry.Path)
	}
	return io.ReadAll(resp.Body)
}

// AutoResolver dispatches per entry: URLs go over HTTP, everything else is
// read from the filesystem.
type AutoResolver struct {
	File FileResolver
	HTTP HTTPResolver
}

// NewAutoResolver creates an AutoResolver rooted at baseDir for relative
// filesystem entries.
func NewAutoResolver(baseDir string) *AutoResolver {
	return &AutoResolver{File: FileResolver{BaseDir: baseDir}}
}

func (r *AutoResolver) Resolve(ctx context.Context, entry DifficultyEntry) ([]byte, error) {
	if strings.HasPrefix(entry.Path, "http://") || strings.HasPrefix(entry.Path, "https://") {
		return r.HTTP.Resolve(ctx, entry)
	}
	return r.File.Resolve(ctx, entry)
}
