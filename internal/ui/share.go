package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
	"github.com/tartampluch/go-yeartiles/internal/render"
)

// ShareRequest is the client state published by "Generate link".
type ShareRequest struct {
	TimeZone    string
	SpecialDays []engine.SpecialDay
	ProfileID   string
	Preset      string
}

// ShareResult is the link handed to the user.
// ProfileID is empty when the link embeds the special days inline.
type ShareResult struct {
	URL       string
	ProfileID string
	Inline    bool
}

// ShareClient talks to the profile API over HTTP.
type ShareClient struct {
	BaseURL string
	Client  *resty.Client
}

type profileBody struct {
	TimeZone    string              `json:"timeZone"`
	SpecialDays []engine.SpecialDay `json:"specialDays"`
}

type idResponse struct {
	ID string `json:"id"`
}

// NewShareClient creates a client for the API served at baseURL.
func NewShareClient(baseURL string) *ShareClient {
	return &ShareClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: resty.New().
			SetTimeout(config.HTTPTimeout).
			SetHeader(config.HeaderUserAgent, config.UserAgent),
	}
}

// Generate upserts the profile and builds the wallpaper URL.
// A failed create degrades to an inline link; a failed update keeps the
// previous profile id. Generate never fails.
func (c *ShareClient) Generate(ctx context.Context, req ShareRequest) ShareResult {
	log := slog.With(config.LogKeyComponent, config.CompShare)

	width, height, err := render.ParsePreset(req.Preset)
	if err != nil {
		width, height = config.DefaultWidth, config.DefaultHeight
	}

	id, err := c.upsert(ctx, req)
	if err != nil {
		log.Warn(config.MsgShareFallback, config.LogKeyError, err)
		id = req.ProfileID
	}

	link := c.ImageURL(id, req.TimeZone, req.SpecialDays, width, height)
	log.Info(config.MsgShareReady,
		config.LogKeyProfileID, id,
		config.LogKeyInline, id == "")

	return ShareResult{URL: link, ProfileID: id, Inline: id == ""}
}

// upsert returns the id the server assigned. Updates may come back with a
// different id (encoded profiles), which callers adopt.
func (c *ShareClient) upsert(ctx context.Context, req ShareRequest) (string, error) {
	specials := req.SpecialDays
	if specials == nil {
		specials = []engine.SpecialDay{}
	}

	var out idResponse
	r := c.Client.R().
		SetContext(ctx).
		SetHeader(config.HeaderContentType, config.MimeJSON).
		SetBody(profileBody{TimeZone: req.TimeZone, SpecialDays: specials}).
		SetResult(&out)

	var (
		resp *resty.Response
		err  error
	)
	if req.ProfileID != "" {
		resp, err = r.SetPathParam(config.PathVarID, req.ProfileID).Put(c.BaseURL + config.RouteProfileByID)
	} else {
		resp, err = r.Post(c.BaseURL + config.RouteProfile)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrShareRequest, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%s: %d", config.ErrShareStatus, resp.StatusCode())
	}

	if out.ID == "" {
		if req.ProfileID != "" {
			return req.ProfileID, nil
		}
		return "", errors.New(config.ErrShareStatus)
	}
	return out.ID, nil
}

// ImageURL builds the wallpaper endpoint link. With an id the profile drives
// the render; without one the zone and the compact special days ride along.
func (c *ShareClient) ImageURL(id, timeZone string, specials []engine.SpecialDay, width, height int) string {
	q := url.Values{}
	q.Set(config.QueryWidth, strconv.Itoa(width))
	q.Set(config.QueryHeight, strconv.Itoa(height))

	if id != "" {
		q.Set(config.QueryID, id)
	} else {
		q.Set(config.QueryTZ, timeZone)
		if len(specials) > 0 {
			q.Set(config.QueryCompact, engine.EncodeCompact(specials))
		}
	}
	return c.BaseURL + config.RouteImage + "?" + q.Encode()
}
