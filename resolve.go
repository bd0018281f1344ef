package skills

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/prettyhe/baoyu-skills/internal/fileutil"
)

// imageResolver materializes every manifest entry as a readable local file.
type imageResolver interface {
	Resolve(ctx context.Context, run *Run, dir string, refs []ImageReference) error
	ResolveCover(ctx context.Context, run *Run, dir, source string) (string, error)
}

// httpResolver fetches remote references into the run's scratch directory
// and verifies local ones in place.
type httpResolver struct {
	client  *http.Client
	workers int
	logger  *slog.Logger
}

// Compile-time interface implementation check.
var _ imageResolver = (*httpResolver)(nil)

func newHTTPResolver(client *http.Client, workers int, logger *slog.Logger) *httpResolver {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if workers < 1 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &httpResolver{client: client, workers: workers, logger: logger}
}

// Resolve fills LocalPath on every reference, fetching remote sources
// concurrently. References keep their manifest positions and each worker
// writes only its own index, so no locking is needed. The first failure in
// document order is returned.
func (r *httpResolver) Resolve(ctx context.Context, run *Run, dir string, refs []ImageReference) error {
	if len(refs) == 0 {
		return nil
	}

	concurrency := r.workers
	if concurrency > len(refs) {
		concurrency = len(refs)
	}

	errs := make([]error, len(refs))
	var wg sync.WaitGroup
	jobs := make(chan int, len(refs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range jobs {
				if ctx.Err() != nil {
					errs[idx] = ctx.Err()
					continue
				}
				errs[idx] = r.resolveOne(ctx, run, dir, &refs[idx], idx+1)
			}
		}()
	}

	for i := range refs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// resolveOne handles one reference. seq is the 1-based manifest position used
// for the deterministic scratch name.
func (r *httpResolver) resolveOne(ctx context.Context, run *Run, dir string, ref *ImageReference, seq int) error {
	if fileutil.IsURL(ref.SourceURI) {
		name := fmt.Sprintf("image_%03d%s", seq, fileutil.ImageExt(ref.SourceURI))
		local, err := r.fetch(ctx, run, ref.SourceURI, name)
		if err != nil {
			return err
		}
		ref.LocalPath = local
		return nil
	}

	local := ref.SourceURI
	if !filepath.IsAbs(local) {
		local = filepath.Join(dir, local)
	}
	if !fileutil.FileExists(local) {
		return fmt.Errorf("%w: %s", ErrResourceNotFound, ref.SourceURI)
	}
	ref.LocalPath = local
	return nil
}

// fetch downloads uri into the scratch directory under name. An existing
// scratch file short-circuits the download, which keeps re-runs after a
// partial failure cheap.
func (r *httpResolver) fetch(ctx context.Context, run *Run, uri, name string) (string, error) {
	dest := run.ScratchPath(name)
	if fileutil.FileExists(dest) {
		r.logger.Debug("reusing fetched image", "path", dest)
		return dest, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrResourceFetch, uri, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %s: %v", ErrResourceFetch, uri, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: status %d", ErrResourceFetch, uri, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrResourceFetch, uri, err)
	}
	if err := os.WriteFile(dest, data, 0600); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrResourceFetch, uri, err)
	}

	r.logger.Debug("fetched image", "uri", uri, "path", dest, "bytes", len(data))
	return dest, nil
}

// ResolveCover materializes a cover source as a local file. The cover is not
// part of the image manifest: it never gets a placeholder and never appears
// in body HTML, so it is resolved on its own.
func (r *httpResolver) ResolveCover(ctx context.Context, run *Run, dir, source string) (string, error) {
	if fileutil.IsURL(source) {
		return r.fetch(ctx, run, source, "cover"+fileutil.ImageExt(source))
	}

	local := source
	if !filepath.IsAbs(local) {
		local = filepath.Join(dir, local)
	}
	if !fileutil.FileExists(local) {
		return "", fmt.Errorf("%w: %s", ErrResourceNotFound, source)
	}
	return local, nil
}
