package browser

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Browser wraps a single headless Chromium instance shared by all
// platform scrapers. One instance per run; pages are cheap, browsers
// are not.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	timeout time.Duration
	logger  *slog.Logger
}

type Options struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
	ExtraHeaders   map[string]string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Timeout:        30 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		AcceptLanguage: "en-US,en;q=0.9,ar;q=0.8",
		TimezoneID:     "Asia/Riyadh",
		Locale:         "en-US",
		ExtraHeaders: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Encoding": "gzip, deflate, br",
			"DNT":             "1",
		},
	}
}

func New(opts *Options) (*Browser, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--window-size=1920,1080",
			"--user-agent=" + opts.UserAgent,
		},
	}

	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	headers := make(map[string]string, len(opts.ExtraHeaders)+1)
	for k, v := range opts.ExtraHeaders {
		headers[k] = v
	}
	if opts.AcceptLanguage != "" {
		headers["Accept-Language"] = opts.AcceptLanguage
	}

	contextOpts := playwright.BrowserNewContextOptions{
		UserAgent:         &opts.UserAgent,
		AcceptDownloads:   playwright.Bool(false),
		JavaScriptEnabled: playwright.Bool(true),
		Locale:            &opts.Locale,
		TimezoneId:        &opts.TimezoneID,
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
		ExtraHttpHeaders: headers,
	}

	context, err := b.NewContext(contextOpts)
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	return &Browser{
		pw:      pw,
		browser: b,
		context: context,
		timeout: resolveTimeout(opts.Timeout),
		logger:  slog.Default().With("component", "browser"),
	}, nil
}

// resolveTimeout substitutes the default page timeout for unset values.
func resolveTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultOptions().Timeout
	}
	return d
}

func (b *Browser) NewPage() (playwright.Page, error) {
	page, err := b.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}

	page.SetDefaultTimeout(float64(b.timeout.Milliseconds()))

	return page, nil
}

func (b *Browser) Close() error {
	var errs []error

	if b.context != nil {
		if err := b.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}

	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	return nil
}

// NavigateWithRetry loads a URL, retrying with a linear backoff. After a
// successful load it checks for a bot interstitial and tries to click
// through it.
func (b *Browser) NavigateWithRetry(page playwright.Page, url string, maxRetries int) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			b.logger.Info("retrying navigation", "attempt", i+1, "url", url)
			time.Sleep(time.Duration(i+1) * time.Second)
		}

		_, err := page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(30000),
		})

		if err == nil {
			bypassed, err := b.checkBotInterstitial(page)
			if err != nil {
				b.logger.Error("failed to check bot interstitial", "error", err)
				lastErr = err
				continue
			}
			if bypassed {
				b.logger.Info("bot interstitial bypassed")
			}
			return nil
		}

		lastErr = err
		b.logger.Error("navigation failed", "error", err, "attempt", i+1)
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// checkBotInterstitial detects the "Continue shopping" gate Amazon's
// Gulf storefronts show to suspected automation and clicks through it.
func (b *Browser) checkBotInterstitial(page playwright.Page) (bool, error) {
	time.Sleep(2 * time.Second)

	title, err := page.Title()
	if err != nil {
		return false, fmt.Errorf("failed to get page title: %w", err)
	}

	content, err := page.Content()
	if err != nil {
		return false, fmt.Errorf("failed to get page content: %w", err)
	}

	if strings.Contains(content, "Click the button below to continue shopping") ||
		strings.Contains(content, "Continue shopping") {
		b.logger.Info("bot interstitial detected, attempting bypass")

		buttonSelectors := []string{
			`button:has-text("Continue shopping")`,
			`input[type="submit"][value*="Continue"]`,
			`.a-button-primary`,
			`button.a-button-text`,
		}

		for _, selector := range buttonSelectors {
			button := page.Locator(selector).First()

			count, err := button.Count()
			if err != nil || count == 0 {
				continue
			}

			b.logger.Info("found interstitial button", "selector", selector)

			if err := button.Click(); err != nil {
				b.logger.Error("failed to click button", "error", err)
				continue
			}

			time.Sleep(3 * time.Second)

			newContent, _ := page.Content()
			if !strings.Contains(newContent, "Continue shopping") {
				return true, nil
			}
		}

		return false, fmt.Errorf("could not find button to bypass interstitial")
	}

	if strings.Contains(title, "Sorry!") || strings.Contains(content, "Sorry! Something went wrong") {
		return false, fmt.Errorf("platform error page detected")
	}

	return false, nil
}

// HumanizeInteraction adds a little mouse movement and scrolling so the
// session looks less like a script.
func (b *Browser) HumanizeInteraction(page playwright.Page) {
	for i := 0; i < 3; i++ {
		x := float64(100 + i*200)
		y := float64(100 + i*150)
		page.Mouse().Move(x, y)
		time.Sleep(time.Millisecond * time.Duration(200+i*100))
	}

	page.Evaluate(`window.scrollBy(0, Math.random() * 300)`)
	time.Sleep(time.Second)
}
