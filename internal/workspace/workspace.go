// Package workspace implements the "editor host may run many scripts in
// parallel, one task per script" concurrency model of spec §5: a bounded
// worker pool over internal/analyzer, de-duplicating concurrent
// re-analysis of the same script version and memoizing results by
// content hash. Grounded on the yaegi snapshots' reliance on
// golang.org/x/sync for worker-pool/de-dup primitives (this corpus's
// only concurrency-library lineage), generalized into a per-workspace
// scheduler since no single retrieved file exposes one directly.
package workspace

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/minio/highwayhash"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/gscls/analyzer/internal/analyzer"
	"github.com/gscls/analyzer/internal/config"
)

// highwayKey is a fixed 32-byte key for content-hash memoization keys;
// these hashes identify script versions within one process run, not
// across a security boundary, so a static key is sufficient.
var highwayKey = []byte("gscls-workspace-content-hash-key")

func contentHash(src string) (string, error) {
	h, err := highwayhash.New64(highwayKey)
	if err != nil {
		return "", fmt.Errorf("workspace: init content hash: %w", err)
	}
	if _, err := h.Write([]byte(src)); err != nil {
		return "", fmt.Errorf("workspace: hash content: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// Manager schedules analysis across many scripts, bounding how many run
// concurrently and collapsing duplicate in-flight requests for the same
// (path, content) pair (spec §5).
type Manager struct {
	opts analyzer.Options
	cfg  config.Config
	fs   afs.Service

	sem   *semaphore.Weighted
	group singleflight.Group

	mu    sync.Mutex
	cache map[string]*analyzer.Result // keyed by content hash
}

// NewManager builds a Manager allowing at most maxConcurrency analyses to
// run at once.
func NewManager(maxConcurrency int64, opts analyzer.Options, cfg config.Config) *Manager {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Manager{
		opts: opts, cfg: cfg, fs: afs.New(),
		sem: semaphore.NewWeighted(maxConcurrency), cache: make(map[string]*analyzer.Result),
	}
}

// AnalyzeSource analyzes one buffer: src for path, de-duplicating
// concurrent calls for the same content hash and memoizing the result
// for subsequent calls with the same content.
func (m *Manager) AnalyzeSource(ctx context.Context, path, src string) (*analyzer.Result, error) {
	hash, err := contentHash(src)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if cached, ok := m.cache[hash]; ok {
		m.mu.Unlock()
		return cached, nil
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do(hash, func() (any, error) {
		if err := m.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer m.sem.Release(1)

		res, err := analyzer.Analyze(ctx, path, src, m.opts)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.cache[hash] = res
		m.mu.Unlock()
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*analyzer.Result), nil
}

// AnalyzeFile reads path through the configured file service and
// analyzes its contents.
func (m *Manager) AnalyzeFile(ctx context.Context, path string) (*analyzer.Result, error) {
	data, err := m.fs.DownloadWithURL(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("workspace: read %s: %w", path, err)
	}
	return m.AnalyzeSource(ctx, path, string(data))
}

// Discover walks root (via the configured afs.Service, so it works
// against any scheme afs supports, not just the local disk) for files
// whose path matches pattern (a doublestar glob, e.g. "**/*.gsc"),
// excluding anything the configured Ignore patterns match.
func (m *Manager) Discover(ctx context.Context, root, pattern string) ([]string, error) {
	var matches []string
	visitor := func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return true, nil
		}
		rel := url.Join(parent, info.Name())
		ok, err := doublestar.Match(pattern, rel)
		if err != nil || !ok {
			return true, nil
		}
		if m.cfg.IsIgnored(rel) {
			return true, nil
		}
		matches = append(matches, rel)
		return true, nil
	}
	if err := m.fs.Walk(ctx, root, storage.OnVisit(visitor)); err != nil {
		return nil, fmt.Errorf("workspace: walk %s: %w", root, err)
	}
	return matches, nil
}

// AnalyzeAll discovers every file under root matching pattern and
// analyzes them concurrently, bounded by the Manager's semaphore.
func (m *Manager) AnalyzeAll(ctx context.Context, root, pattern string) (map[string]*analyzer.Result, error) {
	paths, err := m.Discover(ctx, root, pattern)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make(map[string]*analyzer.Result, len(paths))
	var firstErr error

	for _, rel := range paths {
		wg.Add(1)
		go func(rel string) {
			defer wg.Done()
			full := url.Join(root, rel)
			res, err := m.AnalyzeFile(ctx, full)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			results[rel] = res
		}(rel)
	}
	wg.Wait()
	if firstErr != nil {
		return results, firstErr
	}
	return results, nil
}
