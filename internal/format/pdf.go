package format

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"krakenreport/internal/types"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const defaultRenderTimeout = 30 * time.Second

// FileFormatter renders a report straight to a file on disk.
type FileFormatter interface {
	FormatToFile(ctx context.Context, path string, r *types.ConsolidatedReport) error
}

// PDFFormatter prints the HTML index through headless Chrome.
type PDFFormatter struct {
	html    *HTMLFormatter
	timeout time.Duration
}

func NewPDFFormatter(html *HTMLFormatter, timeout time.Duration) *PDFFormatter {
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	return &PDFFormatter{html: html, timeout: timeout}
}

// FormatToFile writes the PDF rendering of r to path.
func (f *PDFFormatter) FormatToFile(ctx context.Context, path string, r *types.ConsolidatedReport) error {
	if f.html == nil {
		return fmt.Errorf("pdf formatter: html formatter missing")
	}
	doc, err := f.html.Format(r)
	if err != nil {
		return err
	}
	pdf, err := f.Print(ctx, doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, pdf, 0o644)
}

// Print renders an HTML document to PDF bytes.
func (f *PDFFormatter) Print(ctx context.Context, html []byte) ([]byte, error) {
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return nil, fmt.Errorf("headless chrome unavailable: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, f.timeout)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var out []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			out = buf
			return nil
		}),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return out, nil
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable starts a throwaway browser once and caches the outcome.
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		targetCtx := ctx
		if targetCtx == nil {
			targetCtx = context.Background()
		}
		parent, cancel := chromedp.NewContext(targetCtx)
		defer cancel()
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}
