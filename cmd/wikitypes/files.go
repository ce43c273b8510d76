package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"go.jacobcolvin.com/wikitypes/document"
	"go.jacobcolvin.com/wikitypes/pipeline"
)

// metaDir is the directory, relative to an output directory, that holds run
// metadata.
const metaDir = "_meta"

var (
	errReadInput     = errors.New("read input")
	errWriteOutput   = errors.New("write output")
	errDuplicateFile = errors.New("duplicate document file")
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// jsonFiles lists the .json files directly inside dir, sorted by name.
func jsonFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errReadInput, err)
	}

	var files []string

	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}

		files = append(files, filepath.Join(dir, e.Name()))
	}

	slices.Sort(files)

	return files, nil
}

// readPages decodes every raw page file in dir. Files that cannot be
// decoded are reported as page errors.
func readPages(dir string) ([]document.Page, []*pipeline.PageError, error) {
	files, err := jsonFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	var (
		pages []document.Page
		errs  []*pipeline.PageError
	)

	for _, path := range files {
		data, err := os.ReadFile(path) //nolint:gosec // Paths come from the input directory.
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", errReadInput, err)
		}

		var page document.Page

		err = json.Unmarshal(data, &page)
		if err != nil {
			errs = append(errs, decodeError(path, err))

			continue
		}

		pages = append(pages, page)
	}

	return pages, errs, nil
}

// readDocuments decodes and validates every parsed document in dir.
func readDocuments(dir string) ([]*document.Document, []*pipeline.PageError, error) {
	files, err := jsonFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	var (
		docs []*document.Document
		errs []*pipeline.PageError
	)

	for _, path := range files {
		data, err := os.ReadFile(path) //nolint:gosec // Paths come from the input directory.
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", errReadInput, err)
		}

		doc, err := document.Decode(data)
		if err != nil {
			errs = append(errs, decodeError(path, err))

			continue
		}

		docs = append(docs, doc)
	}

	return docs, errs, nil
}

func decodeError(path string, err error) *pipeline.PageError {
	return &pipeline.PageError{
		Title: filepath.Base(path),
		Stage: pipeline.StageDecode,
		Err:   err,
	}
}

// documentFile returns the file name of a parsed document. The page id
// keeps titles that sanitize to the same name apart.
func documentFile(doc *document.Document) string {
	name := unsafeFileChars.ReplaceAllString(doc.Title, "_")
	if name == "" {
		name = "page"
	}

	return fmt.Sprintf("%s-%d.json", name, doc.ID)
}

// writeJSON writes v as indented JSON to path, creating parent directories.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errWriteOutput, path, err)
	}

	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return fmt.Errorf("%w: %w", errWriteOutput, err)
	}

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", errWriteOutput, err)
	}

	return nil
}

// errorList returns errs, or an empty list, so that the errors file is
// always a JSON array.
func errorList(errs []*pipeline.PageError) []*pipeline.PageError {
	if errs == nil {
		return []*pipeline.PageError{}
	}

	return errs
}
