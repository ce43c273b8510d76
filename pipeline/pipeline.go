// Package pipeline runs the parser and the generator over a batch of pages.
//
// Pages are parsed and generated concurrently with a bounded number of
// workers. A failing (or panicking) page is recorded as a [PageError] and
// excluded from the result without affecting its siblings. Results are
// always ordered by page title and id, so the folded declaration tree is
// reproducible regardless of completion order.
package pipeline

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"go.jacobcolvin.com/wikitypes/document"
	"go.jacobcolvin.com/wikitypes/generator"
	"go.jacobcolvin.com/wikitypes/parser"
)

// ErrPanic is wrapped by the [PageError] of a page whose processing
// panicked.
var ErrPanic = errors.New("panic")

// Stage names the step a [PageError] occurred in.
type Stage string

// Pipeline stages.
const (
	StageDecode   Stage = "decode"
	StageParse    Stage = "parse"
	StageGenerate Stage = "generate"
	StageFold     Stage = "fold"
)

// PageError reports a page that failed one stage.
type PageError struct {
	Err   error
	Title string
	Stage Stage
	ID    int
}

func (e *PageError) Error() string {
	return fmt.Sprintf("%s %q (%d): %v", e.Stage, e.Title, e.ID, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// MarshalJSON encodes the error with its message.
func (e *PageError) MarshalJSON() ([]byte, error) {
	//nolint:wrapcheck // Plain struct encoding.
	return json.Marshal(struct {
		Title string `json:"title"`
		Stage Stage  `json:"stage"`
		Error string `json:"error"`
		ID    int    `json:"id"`
	}{
		Title: e.Title,
		Stage: e.Stage,
		Error: e.Err.Error(),
		ID:    e.ID,
	})
}

// Runner runs batches of pages through the parser and the generator. A
// Runner is safe for concurrent use.
type Runner struct {
	parser      *parser.Parser
	generator   *generator.Generator
	log         *slog.Logger
	concurrency int
}

// Option configures a Runner.
type Option func(*Runner)

// WithParser sets the parser. The default is [parser.New] without options.
func WithParser(p *parser.Parser) Option {
	return func(r *Runner) {
		r.parser = p
	}
}

// WithGenerator sets the generator. The default is [generator.New] without
// options.
func WithGenerator(g *generator.Generator) Option {
	return func(r *Runner) {
		r.generator = g
	}
}

// WithConcurrency sets the maximum number of pages processed at once. Values
// below one select [runtime.GOMAXPROCS].
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		r.concurrency = n
	}
}

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// New creates a Runner with the given options.
func New(opts ...Option) *Runner {
	r := &Runner{}

	for _, opt := range opts {
		opt(r)
	}

	if r.parser == nil {
		r.parser = parser.New()
	}

	if r.generator == nil {
		r.generator = generator.New()
	}

	if r.log == nil {
		r.log = slog.Default()
	}

	if r.concurrency < 1 {
		r.concurrency = runtime.GOMAXPROCS(0)
	}

	return r
}

// Result is the outcome of [Runner.Run].
type Result struct {
	Tree      *generator.Tree
	Documents []*document.Document
	Symbols   []*generator.Symbol
	Errors    []*PageError
	Pages     int
}

// Failed returns the number of pages with at least one error.
func (r *Result) Failed() int {
	seen := map[pageKey]bool{}

	for _, e := range r.Errors {
		seen[pageKey{e.Title, e.ID}] = true
	}

	return len(seen)
}

// Succeeded returns the number of pages without errors.
func (r *Result) Succeeded() int {
	return r.Pages - r.Failed()
}

type pageKey struct {
	title string
	id    int
}

// Run parses pages, generates their symbols and folds them into a tree.
// The returned error is only set when ctx is canceled; page failures are
// reported in [Result.Errors].
func (r *Runner) Run(ctx context.Context, pages []document.Page) (*Result, error) {
	docs, parseErrs, err := r.ParseAll(ctx, pages)
	if err != nil {
		return nil, err
	}

	res, err := r.build(ctx, docs)
	if err != nil {
		return nil, err
	}

	res.Errors = slices.Concat(parseErrs, res.Errors)
	res.Pages = len(pages)
	r.logResult(res)

	return res, nil
}

// Build generates and folds documents that were parsed earlier, such as
// documents decoded from their JSON form. Documents are sorted by (title, id)
// first.
func (r *Runner) Build(ctx context.Context, docs []*document.Document) (*Result, error) {
	docs = slices.Clone(docs)
	slices.SortStableFunc(docs, func(a, b *document.Document) int {
		return comparePages(a.Page, b.Page)
	})

	res, err := r.build(ctx, docs)
	if err != nil {
		return nil, err
	}

	r.logResult(res)

	return res, nil
}

func (r *Runner) build(ctx context.Context, docs []*document.Document) (*Result, error) {
	symbols, genErrs, err := r.GenerateAll(ctx, docs)
	if err != nil {
		return nil, err
	}

	tree, foldErrs := r.Fold(symbols)

	return &Result{
		Tree:      tree,
		Documents: docs,
		Symbols:   symbols,
		Errors:    slices.Concat(genErrs, foldErrs),
		Pages:     len(docs),
	}, nil
}

func (r *Runner) logResult(res *Result) {
	r.log.Info("run complete",
		slog.Int("pages", res.Pages),
		slog.Int("succeeded", res.Succeeded()),
		slog.Int("failed", res.Failed()),
		slog.Int("symbols", len(res.Symbols)),
	)
}

// ParseAll parses pages concurrently. Documents are returned in (title, id)
// order; failed pages are left out and reported as errors in the same
// order.
func (r *Runner) ParseAll(ctx context.Context, pages []document.Page) ([]*document.Document, []*PageError, error) {
	pages = slices.Clone(pages)
	slices.SortStableFunc(pages, comparePages)

	docs := make([]*document.Document, len(pages))
	errs := make([]*PageError, len(pages))

	err := r.each(ctx, len(pages), func(i int) {
		page := pages[i]

		perr := protect(func() error {
			doc, err := r.parser.Parse(page)
			docs[i] = doc

			return err //nolint:wrapcheck // Wrapped by PageError.
		})
		if perr != nil {
			errs[i] = r.pageError(page.Title, page.ID, StageParse, perr)
		}
	})
	if err != nil {
		return nil, nil, err
	}

	docs, failed := compact(docs, errs)

	return docs, failed, nil
}

// GenerateAll builds the symbols of docs concurrently. Symbols keep the
// order of docs, and within one document the order the generator emits
// them.
func (r *Runner) GenerateAll(ctx context.Context, docs []*document.Document) ([]*generator.Symbol, []*PageError, error) {
	symbols := make([][]*generator.Symbol, len(docs))
	errs := make([]*PageError, len(docs))

	err := r.each(ctx, len(docs), func(i int) {
		doc := docs[i]

		perr := protect(func() error {
			symbols[i] = r.generator.Generate(doc)

			return nil
		})
		if perr != nil {
			var page document.Page
			if doc != nil {
				page = doc.Page
			}

			errs[i] = r.pageError(page.Title, page.ID, StageGenerate, perr)
		}
	})
	if err != nil {
		return nil, nil, err
	}

	_, failed := compact(docs, errs)

	return slices.Concat(symbols...), failed, nil
}

// Fold merges symbols into a tree in order. Symbols rejected by the tree
// are reported as errors.
func (r *Runner) Fold(symbols []*generator.Symbol) (*generator.Tree, []*PageError) {
	tree := generator.NewTree(r.generator.Preamble())

	var errs []*PageError

	for _, sym := range symbols {
		err := tree.Add(sym)
		if err != nil {
			var (
				title string
				id    int
			)

			if sym != nil {
				title, id = sym.Title, sym.ID
			}

			errs = append(errs, r.pageError(title, id, StageFold, err))
		}
	}

	return tree, errs
}

// each calls fn for every index in [0, n) with at most r.concurrency calls
// running at once. It stops scheduling and returns the context error once
// ctx is done.
func (r *Runner) each(ctx context.Context, n int, fn func(i int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i := range n {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			err := gctx.Err()
			if err != nil {
				return err //nolint:wrapcheck // Wrapped below.
			}

			fn(i)

			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	return nil
}

func (r *Runner) pageError(title string, id int, stage Stage, err error) *PageError {
	r.log.Warn("page failed",
		slog.String("title", title),
		slog.Int("id", id),
		slog.String("stage", string(stage)),
		slog.Any("error", err),
	)

	return &PageError{Title: title, ID: id, Stage: stage, Err: err}
}

// protect runs fn, converting a panic into an error wrapping [ErrPanic].
func protect(fn func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = errors.Wrapf(ErrPanic, "%v", v)
		}
	}()

	return fn()
}

// compact splits items into those without an error and the errors of the
// rest, keeping order.
func compact[T any](items []*T, errs []*PageError) ([]*T, []*PageError) {
	var (
		kept   []*T
		failed []*PageError
	)

	for i, item := range items {
		if errs[i] != nil {
			failed = append(failed, errs[i])

			continue
		}

		kept = append(kept, item)
	}

	return kept, failed
}

func comparePages(a, b document.Page) int {
	return cmp.Or(strings.Compare(a.Title, b.Title), cmp.Compare(a.ID, b.ID))
}
