// Package pipeline drives a generate run: extraction, naming, rendering and the
// outputs recorded for each processed document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mermaidviz/internal/diag"
	"mermaidviz/internal/diagram"
	"mermaidviz/internal/driver"
	"mermaidviz/internal/mapping"
	"mermaidviz/internal/naming"
	"mermaidviz/internal/render"
	"mermaidviz/internal/source"
	"mermaidviz/internal/trace"
)

const (
	// DefaultLevelsUp is how far above a document its project directory sits.
	DefaultLevelsUp = 3
	// DefaultMaxDiagnostics bounds the diagnostics kept for a run.
	DefaultMaxDiagnostics = 1000
)

// Request configures a generate run.
type Request struct {
	Files     []string // Markdown documents, already discovered
	OutputDir string   // root for mappings, galleries and (without LinkedMarkdown) images
	Renderer  render.Renderer
	Options   render.Options
	Strategy  naming.Strategy
	// LinkedMarkdown writes images next to each document and a <stem>_linked copy
	// that references them.
	LinkedMarkdown bool
	LevelsUp       int
	Index          bool // write index.html next to each mapping file
	Jobs           int
	DryRun         bool // derive names only; nothing is rendered or written
	// Documents are in-memory Markdown documents (gist files), extracted after Files.
	// They cannot be combined with LinkedMarkdown.
	Documents      []driver.Document
	Extractor      *driver.Extractor
	Progress       ProgressSink
	MaxDiagnostics int
}

// Output is one planned or rendered diagram.
type Output struct {
	Record diagram.Record
	Path   string
	Err    error
}

// Result summarises a run.
type Result struct {
	RunID             string
	FilesProcessed    int
	DiagramsGenerated int
	DiagramsFailed    int
	Outputs           []Output
	Mappings          []mapping.DiagramMapping
	Diagnostics       *diag.Bag
	Timings           Timings
	// Sources holds every document that loaded, for quoting diagnostic lines.
	Sources *source.FileSet
}

// Generate runs the whole pipeline. Per-document and per-diagram failures are reported
// through Result.Diagnostics; the error is reserved for invalid requests and cancellation.
func Generate(ctx context.Context, req *Request) (Result, error) {
	var result Result
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing generate request")
	}
	if req.Renderer == nil && !req.DryRun {
		return result, fmt.Errorf("missing renderer")
	}
	if req.OutputDir == "" && !req.LinkedMarkdown {
		return result, fmt.Errorf("missing output directory")
	}
	if req.LinkedMarkdown && len(req.Documents) > 0 {
		return result, fmt.Errorf("linked markdown needs documents on disk")
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	levelsUp := req.LevelsUp
	if levelsUp <= 0 {
		levelsUp = DefaultLevelsUp
	}

	maxDiag := req.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = DefaultMaxDiagnostics
	}

	result.RunID = uuid.NewString()
	result.Diagnostics = diag.NewBag(maxDiag)

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "generate")
	defer span.End(result.RunID)

	inputs := req.Inputs()
	emitAll(req.Progress, inputs, StageExtract, StatusQueued)

	// извлечение
	start := time.Now()
	extractor := req.Extractor
	if extractor == nil {
		extractor = &driver.Extractor{}
	}
	emitAll(req.Progress, inputs, StageExtract, StatusWorking)
	sources, extracted, err := extractor.Extract(ctx, req.Files, req.Documents, jobs)
	result.Sources = sources
	result.Timings.Set(StageExtract, time.Since(start))
	if err != nil {
		return result, err
	}

	var records []diagram.Record
	for _, res := range extracted {
		if res.Err != nil {
			result.Diagnostics.Errorf(loadCode(res.Err), res.Path, 0, res.Err.Error())
			emit(req.Progress, Event{File: res.Path, Stage: StageExtract, Status: StatusError, Err: res.Err})
			continue
		}
		result.FilesProcessed++
		if len(res.Records) == 0 {
			result.Diagnostics.Add(diag.Diagnostic{Severity: diag.SevInfo, Code: diag.ExtNoDiagrams, Message: "no mermaid diagrams", File: res.Path})
			emit(req.Progress, Event{File: res.Path, Stage: StageExtract, Status: StatusSkipped})
			continue
		}
		emit(req.Progress, Event{File: res.Path, Stage: StageExtract, Status: StatusDone})
		records = append(records, res.Records...)
	}

	// имена
	start = time.Now()
	outputs, err := planOutputs(records, req, levelsUp, result.Diagnostics)
	result.Timings.Set(StageName, time.Since(start))
	if err != nil {
		return result, err
	}
	result.Outputs = outputs
	if req.DryRun {
		return result, nil
	}

	// рендеринг
	start = time.Now()
	err = renderAll(ctx, req, jobs, result.Outputs)
	result.Timings.Set(StageRender, time.Since(start))
	if err != nil {
		return result, err
	}
	for _, out := range result.Outputs {
		if out.Err != nil {
			result.DiagramsFailed++
			result.Diagnostics.Errorf(renderCode(out.Err), out.Record.SourceFile, out.Record.StartLine,
				fmt.Sprintf("diagram %d (%s): %v", out.Record.Index, out.Record.DiagramType, out.Err))
			continue
		}
		result.DiagramsGenerated++
	}

	// запись
	start = time.Now()
	result.Mappings = writeOutputs(ctx, req, sources, result.RunID, levelsUp, result.Outputs, result.Diagnostics)
	result.Timings.Set(StageWrite, time.Since(start))

	result.Diagnostics.Sort()
	return result, nil
}

// Inputs lists Files then Document names, the order extraction reports them in.
func (req *Request) Inputs() []string {
	names := make([]string, 0, len(req.Files)+len(req.Documents))
	names = append(names, req.Files...)
	for _, doc := range req.Documents {
		names = append(names, doc.Name)
	}
	return names
}

// writeLinked writes the linked copy of src from the text extraction loaded.
func writeLinked(sources *source.FileSet, src string, byIndex map[int]string) (string, error) {
	id, ok := sources.GetLatest(src)
	if !ok {
		return "", fmt.Errorf("%s was not loaded", src)
	}
	return mapping.CreateLinkedMarkdown(sources.Get(id), byIndex, true)
}

// targetDir is where a record's image goes.
func targetDir(rec *diagram.Record, req *Request, levelsUp int) string {
	if req.LinkedMarkdown {
		return filepath.Dir(rec.SourceFile)
	}
	return filepath.Join(req.OutputDir, driver.ProjectName(rec.SourceFile, levelsUp))
}

// planOutputs derives a unique path for every record. Names sharing a target
// directory are de-duplicated in record order.
func planOutputs(records []diagram.Record, req *Request, levelsUp int, bag *diag.Bag) ([]Output, error) {
	outputs := make([]Output, len(records))
	byDir := make(map[string][]int)
	var dirs []string
	for i := range records {
		rec := &records[i]
		name, err := naming.Derive(req.Strategy, rec, req.Options.Format)
		if err != nil {
			return nil, err
		}
		dir := targetDir(rec, req, levelsUp)
		if _, seen := byDir[dir]; !seen {
			dirs = append(dirs, dir)
		}
		byDir[dir] = append(byDir[dir], i)
		outputs[i] = Output{Record: *rec, Path: name}
	}

	for _, dir := range dirs {
		idx := byDir[dir]
		names := make([]string, len(idx))
		for j, i := range idx {
			names[j] = outputs[i].Path
		}
		resolved := naming.ResolveCollisions(names)
		for j, i := range idx {
			if resolved[j] != names[j] {
				rec := &outputs[i].Record
				bag.Warnf(diag.ExtNameCollision, rec.SourceFile, rec.StartLine,
					fmt.Sprintf("%s renamed to %s", names[j], resolved[j]))
			}
			outputs[i].Path = filepath.Join(dir, resolved[j])
		}
	}
	return outputs, nil
}

// renderAll renders outputs in place. A failing diagram never stops the others;
// the returned error is non-nil only on cancellation.
func renderAll(ctx context.Context, req *Request, jobs int, outputs []Output) error {
	if len(outputs) == 0 {
		return nil
	}
	ctx, span := trace.Start(ctx, trace.ScopeStage, "render")
	defer span.End("")

	tracker := newFileTracker(req.Progress, outputs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(outputs)))

	for i := range outputs {
		g.Go(func(i int) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				out := &outputs[i]
				tracker.start(out.Record.SourceFile)
				began := time.Now()
				out.Err = req.Renderer.Render(gctx, out.Record.Content, out.Path, req.Options)
				if out.Err != nil {
					trace.Error(gctx, trace.ScopeFile, "render", fmt.Errorf("%s: %w", out.Path, out.Err))
				} else {
					trace.Logf(gctx, trace.ScopeFile, "render", "%s in %s", out.Path, time.Since(began))
				}
				tracker.finish(out.Record.SourceFile, out.Err)
				return nil
			}
		}(i))
	}
	return g.Wait()
}

// fileTracker turns per-diagram completions into per-file render events.
type fileTracker struct {
	sink    ProgressSink
	mu      sync.Mutex
	pending map[string]int
	started map[string]time.Time
	failed  map[string]error
}

func newFileTracker(sink ProgressSink, outputs []Output) *fileTracker {
	t := &fileTracker{
		sink:    sink,
		pending: make(map[string]int),
		started: make(map[string]time.Time),
		failed:  make(map[string]error),
	}
	for i := range outputs {
		t.pending[outputs[i].Record.SourceFile]++
	}
	return t
}

func (t *fileTracker) start(file string) {
	t.mu.Lock()
	_, seen := t.started[file]
	if !seen {
		t.started[file] = time.Now()
	}
	t.mu.Unlock()
	if !seen {
		emit(t.sink, Event{File: file, Stage: StageRender, Status: StatusWorking})
	}
}

func (t *fileTracker) finish(file string, err error) {
	t.mu.Lock()
	t.pending[file]--
	if err != nil && t.failed[file] == nil {
		t.failed[file] = err
	}
	done := t.pending[file] == 0
	failed := t.failed[file]
	elapsed := time.Since(t.started[file])
	t.mu.Unlock()
	if !done {
		return
	}
	status := StatusDone
	if failed != nil {
		status = StatusError
	}
	emit(t.sink, Event{File: file, Stage: StageRender, Status: status, Err: failed, Elapsed: elapsed})
}

// writeOutputs builds a mapping per document with at least one image, writes linked
// documents when requested, then saves mappings and galleries per project directory.
func writeOutputs(ctx context.Context, req *Request, sources *source.FileSet, runID string, levelsUp int, outputs []Output, bag *diag.Bag) []mapping.DiagramMapping {
	ctx, span := trace.Start(ctx, trace.ScopeStage, "write")
	defer span.End("")

	var order []string
	images := make(map[string]map[int]string)
	for _, out := range outputs {
		if out.Err != nil {
			continue
		}
		src := out.Record.SourceFile
		if images[src] == nil {
			images[src] = make(map[int]string)
			order = append(order, src)
		}
		images[src][out.Record.Index] = out.Path
	}

	mappings := make([]mapping.DiagramMapping, 0, len(order))
	for _, src := range order {
		byIndex := images[src]
		indexes := make([]int, 0, len(byIndex))
		for idx := range byIndex {
			indexes = append(indexes, idx)
		}
		sort.Ints(indexes)
		files := make([]string, 0, len(indexes))
		for _, idx := range indexes {
			files = append(files, byIndex[idx])
		}

		m := mapping.New(src, files, runID)
		m.Title = documentTitle(sources, src)
		mappings = append(mappings, m)

		if req.LinkedMarkdown {
			linked, err := writeLinked(sources, src, byIndex)
			if err != nil {
				bag.Warnf(diag.OutLinkedWrite, src, 0, err.Error())
				emit(req.Progress, Event{File: src, Stage: StageWrite, Status: StatusError, Err: err})
				continue
			}
			trace.Logf(ctx, trace.ScopeFile, "linked", "%s", linked)
		}
		emit(req.Progress, Event{File: src, Stage: StageWrite, Status: StatusDone})
	}

	// группируем по проектам, порядок проектов как в исходном списке
	var projects []string
	byProject := make(map[string][]mapping.DiagramMapping)
	for _, m := range mappings {
		name := driver.ProjectName(m.SourceFile, levelsUp)
		if _, seen := byProject[name]; !seen {
			projects = append(projects, name)
		}
		byProject[name] = append(byProject[name], m)
	}
	if req.OutputDir == "" {
		return mappings
	}
	for _, name := range projects {
		dir := filepath.Join(req.OutputDir, name)
		if err := mapping.Save(byProject[name], dir); err != nil {
			bag.Errorf(diag.OutMappingWrite, dir, 0, err.Error())
			continue
		}
		if !req.Index {
			continue
		}
		if _, err := mapping.WriteIndex(byProject[name], dir); err != nil {
			bag.Errorf(diag.OutGalleryWrite, dir, 0, err.Error())
		}
	}
	return mappings
}

func loadCode(err error) diag.Code {
	switch {
	case errors.Is(err, diagram.ErrNotFile):
		return diag.IONotFile
	case errors.Is(err, diagram.ErrDecode):
		return diag.IODecode
	default:
		return diag.IONotFound
	}
}

func renderCode(err error) diag.Code {
	switch {
	case errors.Is(err, render.ErrInvalidSyntax):
		return diag.RndBadSyntax
	case errors.Is(err, render.ErrTooLarge):
		return diag.RndTooLarge
	case errors.Is(err, render.ErrRateLimited):
		return diag.RndRateLimited
	case errors.Is(err, render.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return diag.RndTimeout
	default:
		return diag.RndFailed
	}
}
