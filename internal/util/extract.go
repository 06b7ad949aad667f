package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/go-fitz"
)

const maxDocumentSize = 10 * 1024 * 1024

var ErrDocumentTooLarge = errors.New("document exceeds size limit")

// Document is an opaque handle to an uploaded file.
type Document interface {
	Open() (io.ReadCloser, error)
	Name() string
}

// FileDocument is a Document stored on the local filesystem.
type FileDocument struct {
	Path string
}

func (d FileDocument) Open() (io.ReadCloser, error) { return os.Open(d.Path) }
func (d FileDocument) Name() string                 { return d.Path }

// ExtractText reads doc, parses it as a PDF and concatenates the text of every
// page in page order. The handle is closed on every return path.
func ExtractText(doc Document) (string, error) {
	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxDocumentSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	if len(data) > maxDocumentSize {
		return "", ErrDocumentTooLarge
	}

	mt := mimetype.Detect(data)
	if !mt.Is("application/pdf") {
		return "", fmt.Errorf("unsupported document type %s", mt.String())
	}

	pdf, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer pdf.Close()

	var fullText strings.Builder
	for n := 0; n < pdf.NumPage(); n++ {
		pageText, err := pdf.Text(n)
		if err != nil {
			return "", fmt.Errorf("page %d: failed to extract text: %w", n+1, err)
		}
		if fullText.Len() > 0 {
			fullText.WriteString("\n")
		}
		fullText.WriteString(pageText)
	}

	return strings.TrimSpace(fullText.String()), nil
}

func ExtractionDiagnostic(err error) string {
	return fmt.Sprintf("Error extracting text: %v", err)
}
