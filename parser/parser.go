package parser

import (
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"

	"go.jacobcolvin.com/wikitypes/document"
	"go.jacobcolvin.com/wikitypes/infer"
	"go.jacobcolvin.com/wikitypes/overrides"
	"go.jacobcolvin.com/wikitypes/scan"
	"go.jacobcolvin.com/wikitypes/textnorm"
)

// Sentinel errors wrapped by [ParseError].
var (
	ErrUnknownDirective    = errors.New("unknown directive")
	ErrUnknownSubDirective = errors.New("unknown sub directive")
)

// ParseError reports a page that could not be parsed.
type ParseError struct {
	Err       error
	Title     string
	Directive string
}

func (e *ParseError) Error() string {
	if e.Directive == "" {
		return fmt.Sprintf("parse %q: %v", e.Title, e.Err)
	}

	return fmt.Sprintf("parse %q: directive %q: %v", e.Title, e.Directive, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser converts pages into documents. A Parser holds no per-page state and
// is safe for concurrent use.
type Parser struct {
	table  *overrides.Table
	engine *infer.Engine
	log    *slog.Logger
	strict bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithOverrides sets the override table. The default is [overrides.Default].
func WithOverrides(t *overrides.Table) Option {
	return func(p *Parser) {
		p.table = t
	}
}

// WithStrict makes unterminated directive blocks fail the page with
// [scan.ErrMalformedBlock] instead of being dropped.
func WithStrict(strict bool) Option {
	return func(p *Parser) {
		p.strict = strict
	}
}

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(p *Parser) {
		p.log = log
	}
}

// New creates a Parser with the given options.
func New(opts ...Option) *Parser {
	p := &Parser{}

	for _, opt := range opts {
		opt(p)
	}

	if p.table == nil {
		p.table = overrides.Default()
	}

	if p.log == nil {
		p.log = slog.Default()
	}

	p.engine = infer.New(p.table, p.log)

	return p
}

// Parse interprets every directive on page. Pages on the override table's
// parser skip list are returned with only their page fields set.
func (p *Parser) Parse(page document.Page) (*document.Document, error) {
	doc := &document.Document{Page: page}

	if p.table.SkipParse(page.Title) {
		p.log.Debug("skipping page", slog.String("title", page.Title))

		return doc, nil
	}

	pp := &pageParser{Parser: p, doc: doc}
	pp.parent, pp.name = page.Path()

	text := textnorm.Clean(page.Raw, textnorm.Entities, textnorm.Comments, textnorm.Tags)
	text = scan.Replace(text, scan.ExternalLink, externalLink)
	text = scan.Replace(text, scan.WikiLink, escapeWikiLink)

	_, err := scan.Scan(text, scan.Directive, pp.resolve, pp.scanOptions()...)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, pe
		}

		return nil, &ParseError{Title: page.Title, Err: err}
	}

	return doc, nil
}

// pageParser holds the state of one Parse call.
type pageParser struct {
	*Parser

	doc     *document.Document
	parent  string
	name    string
	pending pending
}

// pending holds field-like records waiting for the directive that claims
// them.
type pending struct {
	args   []document.Field
	fields []document.Field
	enums  []document.EnumField
}

// drainArgs returns and clears the pending arguments.
func (a *pending) drainArgs() []document.Field {
	args := a.args
	a.args = nil

	return args
}

// drain returns and clears every pending record.
func (a *pending) drain() ([]document.Field, []document.EnumField) {
	fields, enums := a.fields, a.enums
	*a = pending{}

	return fields, enums
}

// addEnum appends e, replacing an earlier member with the same key.
func (a *pending) addEnum(e document.EnumField) {
	for i := range a.enums {
		if a.enums[i].Key == e.Key {
			a.enums[i] = e

			return
		}
	}

	a.enums = append(a.enums, e)
}

func (pp *pageParser) scanOptions() []scan.Option {
	return []scan.Option{
		scan.WithStrict(pp.strict),
		scan.WithDanglingHook(func(span string) {
			pp.log.Debug("dropping unterminated directive",
				slog.String("title", pp.doc.Title),
				slog.String("span", truncate(span, 64)),
			)
		}),
	}
}

// resolve is the [scan.Resolver] for directive blocks. Nested blocks are
// resolved first.
func (pp *pageParser) resolve(inner string) (string, error) {
	if inner == "" {
		return "", nil
	}

	block, err := scan.Scan(inner, scan.Directive, pp.resolve, pp.scanOptions()...)
	if err != nil {
		return "", err
	}

	return pp.dispatch(splitParts(block))
}

func (pp *pageParser) fail(directive string, err error) error {
	return &ParseError{Title: pp.doc.Title, Directive: directive, Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
