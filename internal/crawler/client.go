package crawler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"shipscan/internal/config"
	"shipscan/internal/logger"
	"shipscan/internal/models"
	"shipscan/pkg/utils"
)

// LinesSeparator joins the shipping lines of one port.
const LinesSeparator = ", "

// ErrInvalidPortLink indicates a port entry whose link cannot be followed.
var ErrInvalidPortLink = errors.New("invalid port link")

// Fetcher retrieves the body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Failure records a port page that could not be scraped.
type Failure struct {
	ISO  string
	Port string
	URL  string
	Err  error
}

// EnrichStats summarizes one enrichment pass.
type EnrichStats struct {
	Failures  []Failure
	Countries int
	Skipped   int
	Ports     int
}

// Client scrapes seaport details for a set of countries.
type Client struct {
	fetcher Fetcher
	http    *utils.HTTPHelper
	log     *logger.Logger
	cfg     config.ScraperConfig
}

// NewClient creates a client that fetches pages through f.
func NewClient(cfg config.ScraperConfig, f Fetcher, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}

	if f == nil {
		f = NewScraperWithConfig(&cfg, log)
	}

	return &Client{
		fetcher: f,
		http:    utils.NewHTTPHelper(cfg.UserAgent),
		log:     log,
		cfg:     cfg,
	}
}

// Enrich scrapes the ports of every code in isoCodes, visited in sorted order.
// Only a failure to load the index page is returned as an error.
func (c *Client) Enrich(ctx context.Context, isoCodes []string) ([]models.PortInfo, EnrichStats, error) {
	var stats EnrichStats

	indexURL := c.cfg.IndexURL()

	body, err := c.fetcher.Fetch(ctx, indexURL)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to fetch index page %s: %w", indexURL, err)
	}

	index, err := ParseIndex(strings.NewReader(body))
	if err != nil {
		return nil, stats, err
	}

	codes := slices.Clone(isoCodes)
	slices.Sort(codes)
	codes = slices.Compact(codes)

	var ports []models.PortInfo

	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		if code == "" || code == models.CountryNotFound {
			stats.Skipped++
			c.log.Debug("skipping unresolved country", "iso", code)

			continue
		}

		links, err := index.Ports(code)
		if err != nil {
			stats.Skipped++
			c.log.Warn("no port block for country", "iso", code, "error", err)

			continue
		}

		stats.Countries++

		for _, link := range links {
			info, err := c.scrapePort(ctx, code, link)
			if err != nil {
				if ctx.Err() != nil {
					return nil, stats, ctx.Err()
				}

				stats.Failures = append(stats.Failures, Failure{ISO: code, Port: link.Name, URL: info.Website, Err: err})
				c.log.Error("failed to scrape port", "iso", code, "port", link.Name, "url", info.Website, "error", err)

				continue
			}

			ports = append(ports, info)
		}
	}

	stats.Ports = len(ports)

	c.log.Info("port enrichment complete",
		"countries", stats.Countries,
		"skipped", stats.Skipped,
		"ports", stats.Ports,
		"failures", len(stats.Failures),
	)

	return ports, stats, nil
}

// scrapePort fetches one port page. The returned info carries Website even on error.
func (c *Client) scrapePort(ctx context.Context, iso string, link PortLink) (models.PortInfo, error) {
	info := models.PortInfo{ISO: iso, Seaport: link.Name}

	if link.Href == "" {
		return info, fmt.Errorf("%w: port entry has no link", ErrInvalidPortLink)
	}

	website, err := c.http.ResolveURL(c.cfg.BaseURL, link.Href)
	if err != nil {
		return info, fmt.Errorf("%w %q: %w", ErrInvalidPortLink, link.Href, err)
	}

	info.Website = website

	if !c.http.IsValidURL(website) {
		return info, fmt.Errorf("%w %q: not an http(s) URL", ErrInvalidPortLink, link.Href)
	}

	body, err := c.fetcher.Fetch(ctx, website)
	if err != nil {
		return info, err
	}

	page, err := ParsePortPage(strings.NewReader(body), PageOptions{
		ImportClass: c.cfg.ImportClass,
		ExportClass: c.cfg.ExportClass,
		LinesStride: c.cfg.LinesStride,
	})
	if err != nil {
		return info, err
	}

	info.Lines = strings.Join(page.Lines, LinesSeparator)
	info.ImportRestrictions = page.ImportRestrictions
	info.ExportRestrictions = page.ExportRestrictions

	c.log.Debug("scraped port", "iso", iso, "port", link.Name, "lines", len(page.Lines))

	return info, nil
}
