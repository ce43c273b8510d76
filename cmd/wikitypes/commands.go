package main

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/wikitypes/document"
	"go.jacobcolvin.com/wikitypes/generator"
	"go.jacobcolvin.com/wikitypes/pipeline"
	"go.jacobcolvin.com/wikitypes/version"
)

var (
	errDrift       = errors.New("declaration file is out of date")
	errCheckStdout = errors.New("--check needs an --output file")
)

func (a *app) parseCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "parse [flags] <pages-dir>",
		Short: "Parse raw wiki pages into documents",
		Long: `parse reads every raw page file in pages-dir and writes one parsed document
per page into the output directory. Pages that fail are listed in
_meta/err_parse.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "parsed", "output directory for parsed documents")

	return cmd
}

func (a *app) runParse(cmd *cobra.Command, dir, output string) error {
	r, err := a.runner()
	if err != nil {
		return err
	}

	pages, decodeErrs, err := readPages(dir)
	if err != nil {
		return err
	}

	res, err := r.Run(cmd.Context(), pages)
	if err != nil {
		return err
	}

	res.Errors = slices.Concat(decodeErrs, res.Errors)
	res.Pages += len(decodeErrs)

	written := map[string]bool{}

	for _, doc := range res.Documents {
		name := documentFile(doc)
		if written[name] {
			res.Errors = append(res.Errors, &pipeline.PageError{
				Title: doc.Title,
				ID:    doc.ID,
				Stage: pipeline.StageParse,
				Err:   fmt.Errorf("%w: %s", errDuplicateFile, name),
			})

			continue
		}

		written[name] = true

		err := writeJSON(filepath.Join(output, name), doc)
		if err != nil {
			return err
		}
	}

	err = writeJSON(filepath.Join(output, metaDir, "err_parse.json"), errorList(res.Errors))
	if err != nil {
		return err
	}

	a.summarize(cmd, res)

	return nil
}

type generateOptions struct {
	output string
	check  bool
}

// generatedMeta is written to _meta/generated.json after a generate run.
type generatedMeta struct {
	Symbols   []*generator.Symbol `json:"symbols"`
	Build     version.Info        `json:"build"`
	Pages     int                 `json:"pages"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

func (a *app) generateCommand() *cobra.Command {
	opts := generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [flags] <parsed-dir>",
		Short: "Generate the declaration file from parsed documents",
		Long: `generate validates every parsed document in parsed-dir against the document
schema, builds its declarations, and writes the merged declaration file.
Generated symbols and failures are written to parsed-dir/_meta.

With --check, nothing is written; the command prints a unified diff and fails
when the output file differs from what would be generated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "declaration file path (- for stdout)")
	cmd.Flags().BoolVar(&opts.check, "check", false, "fail if the output file is out of date")

	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, dir string, opts generateOptions) error {
	if opts.check && (opts.output == "" || opts.output == "-") {
		return errCheckStdout
	}

	r, err := a.runner()
	if err != nil {
		return err
	}

	docs, decodeErrs, err := readDocuments(dir)
	if err != nil {
		return err
	}

	res, err := r.Build(cmd.Context(), docs)
	if err != nil {
		return err
	}

	res.Errors = slices.Concat(decodeErrs, res.Errors)
	res.Pages += len(decodeErrs)

	out := res.Tree.Render()

	if opts.check {
		return check(cmd, opts.output, out)
	}

	if opts.output == "" || opts.output == "-" {
		_, err = res.Tree.WriteTo(cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("%w: %w", errWriteOutput, err)
		}
	} else {
		err = writeFile(opts.output, []byte(out))
		if err != nil {
			return err
		}
	}

	err = writeJSON(filepath.Join(dir, metaDir, "generated.json"), generatedMeta{
		Symbols:   res.Symbols,
		Build:     version.Get(),
		Pages:     res.Pages,
		Succeeded: res.Succeeded(),
		Failed:    res.Failed(),
	})
	if err != nil {
		return err
	}

	err = writeJSON(filepath.Join(dir, metaDir, "errors.json"), errorList(res.Errors))
	if err != nil {
		return err
	}

	a.summarize(cmd, res)

	return nil
}

// check compares the file at path with want and prints a unified diff when
// they differ. A missing file counts as empty.
func check(cmd *cobra.Command, path, want string) error {
	got, err := os.ReadFile(path) //nolint:gosec // Output path from CLI flag is expected.
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", errReadInput, err)
	}

	if string(got) == want {
		return nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(got)),
		B:        difflib.SplitLines(want),
		FromFile: path,
		ToFile:   "generated",
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("diff %s: %w", path, err)
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), diff)
	if err != nil {
		return fmt.Errorf("%w: %w", errWriteOutput, err)
	}

	return fmt.Errorf("%w: %s", errDrift, path)
}

func (a *app) schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of parsed documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := json.MarshalIndent(document.Schema(), "", "  ")
			if err != nil {
				return fmt.Errorf("%w: %w", errWriteOutput, err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
			if err != nil {
				return fmt.Errorf("%w: %w", errWriteOutput, err)
			}

			return nil
		},
	}
}

func (a *app) versionCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()

			if !asJSON {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), info)
				if err != nil {
					return fmt.Errorf("%w: %w", errWriteOutput, err)
				}

				return nil
			}

			data, err := json.Marshal(info)
			if err != nil {
				return fmt.Errorf("%w: %w", errWriteOutput, err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
			if err != nil {
				return fmt.Errorf("%w: %w", errWriteOutput, err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}
