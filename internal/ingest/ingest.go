// Package ingest turns uploaded background documents into plain text.
//
// Extraction never fails from the caller's point of view: unsupported or
// unreadable files contribute empty text. The reason is logged.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Media types understood by the ingestor.
const (
	TypePDF   = "application/pdf"
	TypeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypeDOC   = "application/msword"
	TypeText  = "text/plain"
	TypeOctet = "application/octet-stream"
)

// MaxConcurrency bounds how many files are extracted at once.
const MaxConcurrency = 4

// File is an uploaded document.
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

// ErrorKind classifies extraction failures.
type ErrorKind string

const (
	KindUnsupported ErrorKind = "unsupported"
	KindCorrupt     ErrorKind = "corrupt"
	KindEncoding    ErrorKind = "encoding"
	KindPanic       ErrorKind = "panic"
	KindCanceled    ErrorKind = "canceled"
)

// ExtractError describes why a file produced no text.
type ExtractError struct {
	File      string
	MediaType string
	Kind      ErrorKind
	Err       error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s (%s): %s: %v", e.File, e.MediaType, e.Kind, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

type extractor func(data []byte) (string, error)

var extractors = map[string]extractor{
	TypePDF:  extractPDF,
	TypeDOCX: extractDOCX,
	// Legacy binary .doc files are read as DOCX, which only succeeds for
	// mislabelled OOXML documents.
	TypeDOC:  extractDOCX,
	TypeText: extractText,
}

var extensionTypes = map[string]string{
	".pdf":  TypePDF,
	".docx": TypeDOCX,
	".doc":  TypeDOC,
	".txt":  TypeText,
}

// ExtractText returns the plain text of f, or "" if it cannot be read.
func ExtractText(ctx context.Context, f File) string {
	text, err := Extract(ctx, f)
	if err != nil {
		var kind ErrorKind
		var ee *ExtractError
		if errors.As(err, &ee) {
			kind = ee.Kind
		}
		slog.Warn("Document extraction failed",
			"file", f.Name,
			"media_type", f.MediaType,
			"kind", kind,
			"error", err,
		)
		return ""
	}
	return text
}

// Extract is ExtractText with the failure reported as an *ExtractError.
func Extract(ctx context.Context, f File) (text string, err error) {
	mediaType := resolveType(f)
	fail := func(kind ErrorKind, cause error) error {
		return &ExtractError{File: f.Name, MediaType: mediaType, Kind: kind, Err: cause}
	}

	if err := ctx.Err(); err != nil {
		return "", fail(KindCanceled, err)
	}

	fn, ok := extractors[mediaType]
	if !ok {
		return "", fail(KindUnsupported, errors.New("unsupported media type"))
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fail(KindPanic, fmt.Errorf("%v", r))
		}
	}()

	text, err = fn(f.Data)
	if err != nil {
		kind := KindCorrupt
		if errors.Is(err, errInvalidUTF8) {
			kind = KindEncoding
		}
		return "", fail(kind, err)
	}
	return text, nil
}

// ExtractAll extracts every file concurrently and joins the non-empty texts
// with a single space, preserving input order.
func ExtractAll(ctx context.Context, files []File) string {
	if len(files) == 0 {
		return ""
	}

	texts := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrency)
	for i, f := range files {
		g.Go(func() error {
			texts[i] = ExtractText(gctx, f)
			return nil
		})
	}
	_ = g.Wait()

	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// FromPaths loads files from disk for extraction. The media type is left
// empty so it is inferred from the extension.
func FromPaths(paths []string) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}
		files = append(files, File{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

// resolveType normalizes the declared media type, falling back to the file
// extension when the declaration carries no information.
func resolveType(f File) string {
	mediaType := strings.TrimSpace(f.MediaType)
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	mediaType = strings.ToLower(mediaType)

	if mediaType == "" || mediaType == TypeOctet {
		if t, ok := extensionTypes[strings.ToLower(filepath.Ext(f.Name))]; ok {
			return t
		}
	}
	return mediaType
}
