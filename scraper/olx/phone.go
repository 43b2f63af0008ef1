package olx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"olx-car-scraper/utils"
)

// PhoneRevealer obtains the seller's phone number, which the site only shows
// after a user clicks a button.
type PhoneRevealer interface {
	RevealPhone(ctx context.Context, url string) (string, error)
}

const (
	cookieButtonSelector = `div[data-testid="cookies-overlay__container"] button`
	showPhoneSelector    = `button[data-testid="show-phone"]`
	phoneLinkSelector    = `a[data-testid="contact-phone"]`
)

// ChromePhoneRevealer drives a headless Chrome through the reveal flow.
type ChromePhoneRevealer struct {
	chromeBin string
	userAgent string
	timeout   time.Duration
	logger    *utils.Logger
}

// NewChromePhoneRevealer returns a revealer bounded by timeout per ad.
func NewChromePhoneRevealer(chromeBin, userAgent string, timeout time.Duration, logger *utils.Logger) *ChromePhoneRevealer {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	return &ChromePhoneRevealer{
		chromeBin: chromeBin,
		userAgent: userAgent,
		timeout:   timeout,
		logger:    logger,
	}
}

// RevealPhone opens url, dismisses the cookie overlay if there is one, clicks
// "show phone" and reads the number from the tel: link.
func (r *ChromePhoneRevealer) RevealPhone(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.WindowSize(1200, 800),
		chromedp.UserAgent(r.userAgent),
	)
	if r.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(r.chromeBin))
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, r.timeout)
	defer cancelTimeout()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx, chromedp.Navigate(url)); err != nil {
		return "", fmt.Errorf("phone: open %s: %w", url, err)
	}

	if err := runWithin(browserCtx, 5*time.Second,
		chromedp.Click(cookieButtonSelector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		r.logger.Debug("[phone] No cookie overlay on %s", url)
	}

	if err := runWithin(browserCtx, 10*time.Second,
		chromedp.Click(showPhoneSelector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return "", fmt.Errorf("phone: click show-phone: %w", err)
	}

	var (
		href string
		ok   bool
	)
	if err := runWithin(browserCtx, 15*time.Second,
		chromedp.WaitReady(phoneLinkSelector, chromedp.ByQuery),
		chromedp.AttributeValue(phoneLinkSelector, "href", &href, &ok, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("phone: wait for phone link: %w", err)
	}

	return phoneFromHref(href, ok)
}

func runWithin(ctx context.Context, d time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

var errNoTelLink = errors.New("phone link has no tel: href")

func phoneFromHref(href string, ok bool) (string, error) {
	if !ok || !strings.HasPrefix(href, "tel:") {
		return "", errNoTelLink
	}
	phone := strings.TrimSpace(strings.TrimPrefix(href, "tel:"))
	if phone == "" {
		return "", errNoTelLink
	}
	return phone, nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
