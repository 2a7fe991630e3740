package chartcsv

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/ukaji3/chartcsv-go/pkg/chartcsv/models"
)

// DefaultDownloadLabel is the menu label used when no language override is set.
const DefaultDownloadLabel = "Download CSV"

// Lang holds language overrides for menu labels.
type Lang struct {
	// DownloadCSV overrides the "Download CSV" label.
	DownloadCSV string
}

// DownloadOptions configures the download action.
type DownloadOptions struct {
	// URL is the endpoint the CSV is posted to. When empty, the URL of the
	// CSV options is used.
	URL string
	// BeforeDownloadCSV is called before each download (optional).
	BeforeDownloadCSV func()
	// Lang holds label overrides.
	Lang Lang
	// CSV configures the export. When nil, the chart's own options are used.
	CSV *models.CSVOptions
	// Logger receives download events (nil uses slog.Default()).
	Logger *slog.Logger
}

// Label returns the menu label for the download action.
func (o DownloadOptions) Label() string {
	if o.Lang.DownloadCSV != "" {
		return o.Lang.DownloadCSV
	}
	return DefaultDownloadLabel
}

// endpoint resolves the download URL: the explicit URL, then the override
// options, then the chart's own export options.
func (o DownloadOptions) endpoint(chart *models.Chart) string {
	if o.URL != "" {
		return o.URL
	}
	if o.CSV != nil && o.CSV.URL != "" {
		return o.CSV.URL
	}
	return chart.Exporting.CSV.URL
}

// MenuItem is an entry in a chart's export menu.
type MenuItem struct {
	Text    string
	OnClick func(ctx context.Context) error
}

// ExportMenu is implemented by hosts that provide an export menu.
type ExportMenu interface {
	AddItem(item MenuItem)
}

// Poster sends form fields to a URL.
type Poster interface {
	Post(ctx context.Context, url string, fields url.Values) error
}

// RegisterDownloadCSV adds a "Download CSV" item to the menu. It returns
// false and registers nothing when the host has no export menu.
func RegisterDownloadCSV(menu ExportMenu, chart *models.Chart, opts DownloadOptions, poster Poster) bool {
	if menu == nil {
		return false
	}
	menu.AddItem(MenuItem{
		Text: opts.Label(),
		OnClick: func(ctx context.Context) error {
			return DownloadCSV(ctx, chart, opts, poster)
		},
	})
	return true
}

// DownloadCSV builds the chart's CSV and posts it with its filename.
// A missing URL fails with ErrMissingURL before anything is posted.
func DownloadCSV(ctx context.Context, chart *models.Chart, opts DownloadOptions, poster Poster) error {
	if opts.BeforeDownloadCSV != nil {
		opts.BeforeDownloadCSV()
	}

	target := opts.endpoint(chart)
	if target == "" {
		return &ConfigError{Key: "url", Err: ErrMissingURL}
	}

	csvOpts := chart.Exporting.CSV
	if opts.CSV != nil {
		csvOpts = *opts.CSV
	}
	export := NewBuilder(opts.Logger).Build(chart, csvOpts)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("posting CSV export",
		slog.String("url", target),
		slog.String("filename", export.Filename),
		slog.Int("bytes", len(export.CSV)))

	fields := url.Values{}
	fields.Set("csv", export.CSV)
	fields.Set("filename", export.Filename)

	if err := poster.Post(ctx, target, fields); err != nil {
		return fmt.Errorf("download csv: %w", err)
	}
	return nil
}

// HTTPPoster posts form-encoded fields over HTTP.
type HTTPPoster struct {
	// Client is the HTTP client (nil uses http.DefaultClient).
	Client *http.Client
	// OnResponse receives successful responses (optional). The body is
	// closed after it returns.
	OnResponse func(resp *http.Response) error
}

// Post sends fields as an application/x-www-form-urlencoded POST.
func (p *HTTPPoster) Post(ctx context.Context, target string, fields url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(fields.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Request-ID", uuid.NewString())

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &PostError{URL: target, StatusCode: resp.StatusCode}
	}

	if p.OnResponse != nil {
		return p.OnResponse(resp)
	}
	return nil
}
