package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/matsen/learner/internal/record"
)

var (
	// ErrNoPDFURL indicates a record without a pdf_url.
	ErrNoPDFURL = errors.New("record has no pdf_url")

	// ErrNotPDF indicates the downloaded content is not a PDF, typically
	// an HTML landing or paywall page.
	ErrNotPDF = errors.New("downloaded content is not a PDF")
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

var pdfMagic = []byte("%PDF-")

// Downloader streams a URL into w.
type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// Result describes a completed download.
type Result struct {
	Path    string `json:"path"`
	Bytes   int64  `json:"bytes"`
	Skipped bool   `json:"skipped,omitempty"` // file already present
}

// Filename returns the file name used for a record's PDF:
// <source>_<identifier>.pdf with unsafe characters replaced.
func Filename(source, identifier string) string {
	name := unsafeFilenameChars.ReplaceAllString(source+"_"+identifier, "_")
	return name + ".pdf"
}

// Download fetches the record's PDF into dir. An existing file is kept
// unless overwrite is set.
func Download(ctx context.Context, d Downloader, rec *record.Record, dir string, overwrite bool) (*Result, error) {
	url := rec.PDFURL()
	if url == "" {
		return nil, fmt.Errorf("%w: %s %s", ErrNoPDFURL, rec.Source(), rec.SourceIdentifier())
	}

	path := filepath.Join(dir, Filename(rec.Source(), rec.SourceIdentifier()))
	if info, err := os.Stat(path); err == nil && !overwrite {
		slog.Debug("pdf already present", "path", path)
		return &Result{Path: path, Bytes: info.Size(), Skipped: true}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating pdf directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	sniff := &headSniffer{}
	n, err := d.Download(ctx, url, io.MultiWriter(tmp, sniff))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(sniff.head, pdfMagic) {
		return nil, fmt.Errorf("%w: %s", ErrNotPDF, url)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("saving pdf: %w", err)
	}
	slog.Info("downloaded pdf", "url", url, "path", path, "bytes", n)
	return &Result{Path: path, Bytes: n}, nil
}

// headSniffer keeps the first bytes written to it.
type headSniffer struct {
	head []byte
}

func (s *headSniffer) Write(p []byte) (int, error) {
	if need := len(pdfMagic) - len(s.head); need > 0 {
		if need > len(p) {
			need = len(p)
		}
		s.head = append(s.head, p[:need]...)
	}
	return len(p), nil
}
