// Package fluentwait provides a top-level convenience entry point for
// polling waits on page elements.
//
// Usage:
//
//	import "github.com/BaSui01/fluentwait"
//
//	w := fluentwait.FromHTML(page).AtMost(10 * time.Second)
//	err := w.UntilSelector("li.item").WithClass("active").IsDisplayed(ctx)
//	err = w.Until(fluentwait.ByID("spinner")).Not().IsPresent(ctx)
//
// This is a thin wrapper around [wait.New] and the search packages; use
// them directly for finer control.
package fluentwait

import (
	"net/http"
	"time"

	"github.com/BaSui01/fluentwait/internal/tlsutil"
	"github.com/BaSui01/fluentwait/locator"
	"github.com/BaSui01/fluentwait/search"
	"github.com/BaSui01/fluentwait/search/htmlsearch"
	"github.com/BaSui01/fluentwait/wait"
)

// Option configures the wait created by [New].
type Option = wait.Option

// New creates a [wait.FluentWait] over any search.
func New(s search.Search, opts ...Option) *wait.FluentWait {
	return wait.New(s, opts...)
}

// FromHTML waits on a fixed HTML document.
func FromHTML(html string, opts ...Option) *wait.FluentWait {
	return wait.New(htmlsearch.New(htmlsearch.StringSource("inline", html)), opts...)
}

// FromURL waits on the document served at url, fetched again before every
// lookup. A nil client uses a hardened client with a 10s request timeout.
func FromURL(url string, client *http.Client, opts ...Option) *wait.FluentWait {
	if client == nil {
		client = tlsutil.DocumentClient(tlsutil.ClientOptions{Timeout: 10 * time.Second})
	}
	s := htmlsearch.New(htmlsearch.URLSource(url, client), htmlsearch.WithRefreshOnFind(true))
	return wait.New(s, opts...)
}

// Re-export wait options and locator constructors so callers rarely need
// the sub packages.

// WithLogger sets a custom zap logger.
var WithLogger = wait.WithLogger

// WithTimeout sets the default timeout.
var WithTimeout = wait.WithTimeout

// WithPolling sets the default polling interval.
var WithPolling = wait.WithPolling

// WithObserver sets the poll/wait observer.
var WithObserver = wait.WithObserver

// WithCapturer sets the diagnostics capturer used on timeout.
var WithCapturer = wait.WithCapturer

// ByCSS locates elements with a CSS selector.
var ByCSS = locator.ByCSS

// ByXPath locates elements with an XPath expression.
var ByXPath = locator.ByXPath

// ByID locates elements by id.
var ByID = locator.ByID

// ByName locates elements by name attribute.
var ByName = locator.ByName

// ByClassName locates elements carrying a class.
var ByClassName = locator.ByClassName

// ByTagName locates elements by tag.
var ByTagName = locator.ByTagName

// ByLinkText locates links by exact text.
var ByLinkText = locator.ByLinkText
