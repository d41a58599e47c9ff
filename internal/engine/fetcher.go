package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/tartampluch/go-yeartiles/internal/config"
)

// VCardFetcher downloads a vCard address book.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher implements VCardFetcher on top of a resty client.
type HTTPFetcher struct {
	Client *resty.Client
}

// NewHTTPFetcher returns a fetcher with the shared timeout and User-Agent.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: resty.New().
			SetTimeout(config.HTTPTimeout).
			SetHeader(config.HeaderUserAgent, config.UserAgent).
			SetHeader(config.HeaderAccept, config.AcceptVCard),
	}
}

// redactURL drops the query and user info, which may carry credentials.
func redactURL(u *url.URL) string {
	clean := url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}
	return clean.String()
}

// Fetch opens the address book at rawURL. The caller closes the returned
// body, which yields at most MaxHTTPResponseSize bytes.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	switch u.Scheme {
	case config.SchemeHTTP, config.SchemeHTTPS:
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		config.LogKeyComponent, config.CompFetcher,
		config.LogKeyURL, redactURL(u),
	)
	log.Debug(config.MsgFetchStart)

	req := f.Client.R().SetContext(ctx).SetDoNotParseResponse(true)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := req.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchNetwork, err)
	}

	body := resp.RawBody()
	if code := resp.StatusCode(); code != http.StatusOK {
		_ = body.Close()
		log.Warn(config.MsgFetchStatus, config.LogKeyStatus, code)
		return nil, fmt.Errorf("%s: %d %s", config.ErrFetchStatus, code, http.StatusText(code))
	}

	log.Info(config.MsgFetchOpen, config.LogKeySizeBytes, resp.RawResponse.ContentLength)

	return limitedBody{
		Reader: io.LimitReader(body, config.MaxHTTPResponseSize),
		Closer: body,
	}, nil
}

// limitedBody bounds reads while closing the underlying connection.
type limitedBody struct {
	io.Reader
	io.Closer
}
