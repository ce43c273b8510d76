// Package generator turns parsed documents into declarations.
//
// Generation runs in three steps:
//
//  1. [Generator.Generate] builds the [Symbol] records for one document. Each
//     populated function-like, structure, shader or enumeration slot yields
//     one Symbol, together with the auxiliary declarations synthesized for
//     composite arguments and returns.
//  2. [Generator.Fold] merges symbols into a [Tree]. Folding is a sequential
//     left fold: a later symbol with the same name replaces an earlier one in
//     place, while distinct members of a namespace, class, interface or enum
//     accumulate in fold order. Callers that want reproducible output must
//     fold in a stable order.
//  3. [Tree.Render] writes the merged tree as one declaration document.
//
// Per-member overrides from an [overrides.Table] take precedence over
// inferred names and types at every level.
package generator
