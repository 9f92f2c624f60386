package browser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Options struct {
	// Timeout bounds each request and is the default for WaitForElement.
	Timeout          time.Duration
	PollInterval     time.Duration
	UserAgent        string
	CloudflareBypass bool
	Logger           *slog.Logger
}

// HTTPPage is a Page backed by plain HTTP requests. Documents are parsed
// with goquery, cookies persist across navigations, and forms are
// submitted by serializing their fields the way a browser would.
type HTTPPage struct {
	http   *resty.Client
	opts   Options
	log    *slog.Logger
	url    *url.URL
	doc    *goquery.Document
	closed bool
	once   sync.Once
}

func NewHTTPPage(opts Options) (*HTTPPage, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	if opts.CloudflareBypass {
		client.SetTransport(cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport))
	}

	return &HTTPPage{
		http: client,
		opts: opts,
		log:  logger,
	}, nil
}

func (p *HTTPPage) resolve(raw string) (*url.URL, error) {
	target, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", raw, err)
	}
	if p.url != nil {
		target = p.url.ResolveReference(target)
	}
	if !target.IsAbs() {
		return nil, fmt.Errorf("cannot resolve relative url %q without a loaded page", raw)
	}
	return target, nil
}

func (p *HTTPPage) load(res *resty.Response, requested *url.URL) error {
	if res.IsError() {
		return fmt.Errorf("%s %s: unexpected status %d", res.Request.Method, requested, res.StatusCode())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return fmt.Errorf("failed to parse html from %s: %w", requested, err)
	}

	final := requested
	if res.RawResponse != nil && res.RawResponse.Request != nil && res.RawResponse.Request.URL != nil {
		final = res.RawResponse.Request.URL
	}
	doc.Url = final
	p.url = final
	p.doc = doc
	return nil
}

func (p *HTTPPage) Navigate(ctx context.Context, raw string) error {
	if p.closed {
		return ErrClosed
	}
	target, err := p.resolve(raw)
	if err != nil {
		return err
	}

	p.log.Debug("navigate", "url", target.String())
	res, err := p.http.R().
		SetContext(ctx).
		Get(target.String())
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	return p.load(res, target)
}

func (p *HTTPPage) WaitForElement(ctx context.Context, selector string, timeout time.Duration) error {
	if p.closed {
		return ErrClosed
	}
	if p.doc == nil {
		return ErrNoDocument
	}
	if timeout <= 0 {
		timeout = p.opts.Timeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	for {
		if p.doc.Find(selector).Length() > 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return &TimeoutError{Selector: selector, After: timeout}
		case <-ticker.C:
		}

		p.log.Debug("element not rendered yet, reloading", "selector", selector, "url", p.CurrentURL())
		err := p.Navigate(ctx, p.url.String())
		if err != nil {
			if ctx.Err() != nil {
				return &TimeoutError{Selector: selector, After: timeout}
			}
			return err
		}
	}
}

func (p *HTTPPage) find(selector string) (*goquery.Selection, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if p.doc == nil {
		return nil, ErrNoDocument
	}
	sel := p.doc.Find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return sel, nil
}

func (p *HTTPPage) Evaluate(ctx context.Context, selector string, fn func(sel *goquery.Selection) error) error {
	sel, err := p.find(selector)
	if err != nil {
		return err
	}
	return fn(sel)
}

// Type sets the value of the first input matching selector.
func (p *HTTPPage) Type(ctx context.Context, selector, text string) error {
	sel, err := p.find(selector)
	if err != nil {
		return err
	}
	input := sel.First()
	switch goquery.NodeName(input) {
	case "input":
		input.SetAttr("value", text)
	case "textarea":
		input.SetText(text)
	default:
		return fmt.Errorf("cannot type into <%s> %s", goquery.NodeName(input), selector)
	}
	return nil
}

// Click follows links and submits the form owning a button.
func (p *HTTPPage) Click(ctx context.Context, selector string) error {
	sel, err := p.find(selector)
	if err != nil {
		return err
	}
	el := sel.First()

	if goquery.NodeName(el) == "a" {
		href, ok := el.Attr("href")
		if !ok {
			return fmt.Errorf("link %s has no href", selector)
		}
		return p.Navigate(ctx, href)
	}

	form := el.Closest("form")
	if form.Length() == 0 {
		return fmt.Errorf("%s is neither a link nor inside a form", selector)
	}
	return p.submit(ctx, form, el)
}

func (p *HTTPPage) submit(ctx context.Context, form, submitter *goquery.Selection) error {
	values := formValues(form, submitter)

	action := form.AttrOr("action", "")
	if action == "" {
		action = p.url.String()
	}
	target, err := p.resolve(action)
	if err != nil {
		return err
	}

	method := strings.ToUpper(form.AttrOr("method", "GET"))
	p.log.Debug("submit form", "method", method, "url", target.String())

	var res *resty.Response
	if method == "POST" {
		res, err = p.http.R().
			SetContext(ctx).
			SetFormDataFromValues(values).
			Post(target.String())
	} else {
		q := *target
		q.RawQuery = values.Encode()
		target = &q
		res, err = p.http.R().
			SetContext(ctx).
			Get(target.String())
	}
	if err != nil {
		return fmt.Errorf("failed to submit form to %s: %w", target, err)
	}
	return p.load(res, target)
}

func formValues(form, submitter *goquery.Selection) url.Values {
	values := url.Values{}
	form.Find("input[name], textarea[name], select[name]").Each(func(_ int, field *goquery.Selection) {
		name := field.AttrOr("name", "")
		if _, disabled := field.Attr("disabled"); disabled {
			return
		}

		switch goquery.NodeName(field) {
		case "textarea":
			values.Add(name, field.Text())
		case "select":
			opt := field.Find("option[selected]").First()
			if opt.Length() == 0 {
				opt = field.Find("option").First()
			}
			if opt.Length() > 0 {
				values.Add(name, opt.AttrOr("value", strings.TrimSpace(opt.Text())))
			}
		default:
			switch strings.ToLower(field.AttrOr("type", "text")) {
			case "submit", "button", "image", "reset", "file":
				return
			case "checkbox", "radio":
				if _, checked := field.Attr("checked"); !checked {
					return
				}
				values.Add(name, field.AttrOr("value", "on"))
			default:
				values.Add(name, field.AttrOr("value", ""))
			}
		}
	})

	if name, ok := submitter.Attr("name"); ok && name != "" {
		values.Add(name, submitter.AttrOr("value", ""))
	}
	return values
}

func (p *HTTPPage) CurrentURL() string {
	if p.url == nil {
		return ""
	}
	return p.url.String()
}

func (p *HTTPPage) Close() error {
	p.once.Do(func() {
		p.closed = true
		p.doc = nil
		p.http.GetClient().CloseIdleConnections()
		p.log.Debug("page closed")
	})
	return nil
}
