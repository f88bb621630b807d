// Package cppref searches the cppreference wiki.
package cppref

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

const (
	searchPath = "/w/cpp/index.php"
	pathPrefix = "/w/cpp"

	headingClass = "mw-search-result-heading"
)

// languagePrefixes mark pages describing the core language rather than the library.
var languagePrefixes = []string{"/w/cpp/language", "/w/cpp/concept"}

// Link is a single search hit.
type Link struct {
	Title string
	URL   string
}

// Result is the outcome of a search.
type Result struct {
	// URL is the page the search ended on.
	URL string

	// Redirected is true when the wiki sent the query straight to an article.
	// Language and Library are empty in that case.
	Redirected bool

	Language []Link
	Library  []Link
}

// ClientOption defines a function signature for Client's functional options.
type ClientOption func(client *Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = httpClient
	}
}

// Client queries the wiki's search page.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new Client with the given Config and options.
func NewClient(config *Config, options ...ClientOption) *Client {
	client := &Client{
		config: config,
	}

	for _, opt := range options {
		opt(client)
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: config.Timeout}
	}

	return client
}

// SearchURL returns the search page URL for the query.
func (c *Client) SearchURL(query string) string {
	params := url.Values{}
	params.Set("title", "Special:Search")
	params.Set("search", query)
	return c.baseURL() + searchPath + "?" + params.Encode()
}

// Search runs the query and scrapes the result headings.
// A non-200 answer is reported as *StatusError.
func (c *Client) Search(ctx context.Context, query string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	final := resp.Request.URL
	if final.Path != searchPath {
		return &Result{URL: final.String(), Redirected: true}, nil
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	result := &Result{URL: final.String()}
	for _, a := range headingLinks(doc) {
		href := getAttr(a, "href")
		if !strings.HasPrefix(href, pathPrefix) {
			continue
		}

		link := Link{Title: textContent(a), URL: c.baseURL() + href}
		if isLanguagePage(href) {
			result.Language = append(result.Language, link)
		} else {
			result.Library = append(result.Library, link)
		}
	}

	return result, nil
}

func (c *Client) baseURL() string {
	return strings.TrimRight(c.config.BaseURL, "/")
}

func isLanguagePage(href string) bool {
	for _, prefix := range languagePrefixes {
		if href == prefix || strings.HasPrefix(href, prefix+"/") {
			return true
		}
	}
	return false
}

// headingLinks collects the anchors directly under result heading divs, in document order.
func headingLinks(doc *html.Node) []*html.Node {
	var links []*html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, headingClass) {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && c.Data == "a" {
					links = append(links, c)
				}
			}
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return links
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return strings.TrimSpace(sb.String())
}
