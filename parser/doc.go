// Package parser interprets the directive markup of one wiki page into a
// [document.Document].
//
// Parsing runs three [scan] passes over the cleaned page text. The first two
// rewrite links: single-bracket external links become markdown links, and
// the pipes inside double-bracket wiki links become '@' so they never split
// directive arguments. The third pass resolves "{{...}}" directives inside
// out: every directive nested in a block is resolved to plain text before the
// block itself is split on '|' and dispatched by name.
//
// Directives come in three shapes:
//
//   - Inline directives ("!", "eq", "type", "truefalse", ...) return
//     replacement text. Directives that mention another symbol leave a
//     backreference such as "@Color structure" for [infer] to read.
//   - Annotation directives ("note", "warning", "deprecated", ...) set a
//     field on the document and resolve to nothing.
//   - Structural directives either push a record onto the page's pending
//     accumulator ("funcarg", "structurefield", "enumfield",
//     "shaderparameter") or claim the pending records ("structure",
//     "enumeration", "shader", "arg", "ret") and write the finished record
//     to the document.
//
// An unknown directive fails the page with a [*ParseError] wrapping
// [ErrUnknownDirective] or [ErrUnknownSubDirective].
package parser
