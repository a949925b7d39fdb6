package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"mermaidviz/internal/diagram"
	"mermaidviz/internal/source"
	"mermaidviz/internal/trace"
)

// Document is a Markdown document that lives only in memory, e.g. a gist file.
// Name stands in for the path in records and diagnostics.
type Document struct {
	Name    string
	Content []byte
}

// ExtractResult is the outcome for one input.
type ExtractResult struct {
	Path    string           // path or document name as given
	File    source.FileID    // valid only when Err is nil
	Records []diagram.Record // nil when Err is set
	Err     error            // *diagram.DocumentError on load failure
	Cached  bool             // served from a cache
}

// Extractor runs document extraction with optional caches.
type Extractor struct {
	Disk   *DiskCache
	Memory *MemoryCache
	// OnCacheError is called when the disk cache fails; extraction continues without it.
	OnCacheError func(path string, err error)
}

// Extract loads paths and then docs into one FileSet and extracts every document
// concurrently. Results follow the same order (paths first) and a failing document never
// aborts the batch; the returned error is non-nil only on cancellation. The FileSet is
// returned for later stages and is read-only from here on.
func (e *Extractor) Extract(ctx context.Context, paths []string, docs []Document, jobs int) (*source.FileSet, []ExtractResult, error) {
	fileSet := source.NewFileSet()
	total := len(paths) + len(docs)
	if total == 0 {
		return fileSet, nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	ctx, span := trace.Start(ctx, trace.ScopeStage, "extract")
	defer span.End("")

	// FileSet не потокобезопасен на запись: загружаем всё до запуска горутин
	results := make([]ExtractResult, total)
	for i, path := range paths {
		results[i].Path = path
		id, err := fileSet.Load(path)
		if err != nil {
			results[i].Err = &diagram.DocumentError{Path: path, Err: err}
			trace.Error(ctx, trace.ScopeFile, "load", results[i].Err)
			continue
		}
		results[i].File = id
	}
	for j, doc := range docs {
		i := len(paths) + j
		results[i].Path = doc.Name
		results[i].File = fileSet.AddVirtual(doc.Name, doc.Content)
	}
	trace.Logf(ctx, trace.ScopeDriver, "load", "%d documents loaded", fileSet.Len())
	if err := ctx.Err(); err != nil {
		return fileSet, results, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, total))

	for i := range results {
		if results[i].Err != nil {
			continue
		}
		g.Go(func(i int) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				// индекс i уникален для горутины, мьютекс не нужен
				e.extractOne(gctx, fileSet.Get(results[i].File), &results[i])
				return nil
			}
		}(i))
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

func (e *Extractor) extractOne(ctx context.Context, f *source.File, res *ExtractResult) {
	content := Digest(f.Hash)

	if recs, ok := e.Memory.Get(f.Path, content); ok {
		res.Records, res.Cached = recs, true
		trace.Logf(ctx, trace.ScopeFile, "extract", "%s: memory hit", f.Path)
		return
	}

	key := CacheKey(f.Path, content)
	var payload DiskPayload
	hit, err := e.Disk.Get(key, &payload)
	if err != nil && e.OnCacheError != nil {
		e.OnCacheError(res.Path, err)
	}
	if hit && payload.SourceFile == f.Path && payload.ContentHash == content {
		res.Records, res.Cached = payload.Records, true
		e.Memory.Put(f.Path, content, payload.Records)
		trace.Logf(ctx, trace.ScopeFile, "extract", "%s: disk hit", f.Path)
		return
	}

	res.Records = diagram.ExtractFile(f)
	e.Memory.Put(f.Path, content, res.Records)
	if e.Disk != nil {
		err := e.Disk.Put(key, &DiskPayload{SourceFile: f.Path, ContentHash: content, Records: res.Records})
		if err != nil && e.OnCacheError != nil {
			e.OnCacheError(res.Path, err)
		}
	}
	trace.Logf(ctx, trace.ScopeFile, "extract", "%s: %d lines, %d diagrams", f.Path, f.LineCount(), len(res.Records))
}

// Records flattens successful results in input order.
func Records(results []ExtractResult) []diagram.Record {
	var out []diagram.Record
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Records...)
		}
	}
	return out
}
