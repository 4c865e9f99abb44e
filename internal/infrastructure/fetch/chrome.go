package fetch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"

	"PolicyCrawler/internal/domain"
	"PolicyCrawler/internal/ports"
)

// ChromeRenderer loads pages in headless Chrome so script-built listings
// are present in the returned markup.
type ChromeRenderer struct {
	settle    time.Duration
	timeout   time.Duration
	userAgent string
}

var _ ports.Fetcher = (*ChromeRenderer)(nil)

// NewChromeRenderer waits settle after navigation before reading the DOM.
func NewChromeRenderer(settle, timeout time.Duration, userAgent string) *ChromeRenderer {
	return &ChromeRenderer{settle: settle, timeout: timeout, userAgent: userAgent}
}

// Fetch starts a fresh browser for every page and returns the outer HTML.
func (r *ChromeRenderer) Fetch(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Headless)
	if r.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.userAgent))
	}
	if os.Geteuid() == 0 {
		// Chrome refuses to start as root with the sandbox enabled.
		opts = append(opts, chromedp.NoSandbox)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if r.timeout > 0 {
		var cancelTimeout context.CancelFunc
		browserCtx, cancelTimeout = context.WithTimeout(browserCtx, r.timeout+r.settle)
		defer cancelTimeout()
	}

	var markup string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(r.settle),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("%w: render %s: %v", domain.ErrFetch, pageURL, err)
	}

	return markup, nil
}
