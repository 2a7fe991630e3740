// Package main provides the CLI entry point for chartcsv.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/ukaji3/chartcsv-go/internal/config"
	"github.com/ukaji3/chartcsv-go/pkg/chartcsv"
	"github.com/ukaji3/chartcsv-go/pkg/chartcsv/models"
	"github.com/ukaji3/chartcsv-go/pkg/chartcsv/server"
)

var (
	configPath string
	verbose    bool

	outputPath    string
	format        string
	chartSelector string
	dateFormat    string
	itemDelimiter string
	lineDelimiter string
	percentages   bool
	bom           bool

	downloadURL string
	addr        string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chartcsv",
		Short: "Export chart series data as CSV",
		Long: `chartcsv turns the series of a chart definition (JSON, YAML or an xlsx
workbook) into CSV text, posts it to a download endpoint, or serves that endpoint.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	buildCmd := &cobra.Command{
		Use:   "build [chart-file]",
		Short: "Write the CSV of a chart",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}
	buildCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	buildCmd.Flags().StringVar(&format, "format", "csv", "Output format: csv, xlsx")
	addExportFlags(buildCmd)

	downloadCmd := &cobra.Command{
		Use:   "download [chart-file]",
		Short: "Post the CSV of a chart to the download endpoint",
		Args:  cobra.ExactArgs(1),
		RunE:  runDownload,
	}
	downloadCmd.Flags().StringVar(&downloadURL, "url", "", "Download endpoint (overrides config and chart)")
	downloadCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Save the endpoint response to this path (default: <filename>.csv)")
	addExportFlags(downloadCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the download endpoint",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	rootCmd.AddCommand(buildCmd, downloadCmd, serveCmd)
	return rootCmd
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&chartSelector, "chart", "", "Chart name or index in an xlsx workbook")
	cmd.Flags().StringVar(&dateFormat, "date-format", "", "strftime pattern for datetime axes")
	cmd.Flags().StringVar(&itemDelimiter, "item-delimiter", "", `Cell delimiter, Go escapes allowed (use ';' for Excel)`)
	cmd.Flags().StringVar(&lineDelimiter, "line-delimiter", "", `Row delimiter, Go escapes allowed (e.g. '\r\n')`)
	cmd.Flags().BoolVar(&percentages, "include-pie-percentages", false, "Add a percentage column to pie series")
	cmd.Flags().BoolVar(&bom, "bom", false, "Prefix the CSV with a UTF-8 BOM")
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		NoColor:    runtime.GOOS == "windows",
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// loadChart loads the chart and applies export flags over its own options.
func loadChart(cmd *cobra.Command, path string) (*models.Chart, error) {
	chart, err := chartcsv.LoadChart(path, chartcsv.LoadOptions{Chart: chartSelector})
	if err != nil {
		return nil, err
	}

	opts := &chart.Exporting.CSV
	if cmd.Flags().Changed("date-format") {
		opts.DateFormat = dateFormat
	}
	if cmd.Flags().Changed("item-delimiter") {
		opts.ItemDelimiter = unescape(itemDelimiter)
	}
	if cmd.Flags().Changed("line-delimiter") {
		opts.LineDelimeter = unescape(lineDelimiter)
	}
	if cmd.Flags().Changed("include-pie-percentages") {
		opts.IncludePiePercentages = percentages
	}
	if cmd.Flags().Changed("bom") {
		opts.BOM = bom
	}
	return chart, nil
}

// unescape interprets Go escape sequences such as \t or \r\n in a flag
// value. Values that do not unquote are used as typed.
func unescape(s string) string {
	if v, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return v
	}
	return s
}

func runBuild(cmd *cobra.Command, args []string) error {
	_, logger, err := setup()
	if err != nil {
		return err
	}

	chart, err := loadChart(cmd, args[0])
	if err != nil {
		return err
	}

	export := chartcsv.NewBuilder(logger).Build(chart, chart.Exporting.CSV)

	var data []byte
	switch format {
	case "csv":
		data = []byte(export.CSV)
	case "xlsx":
		var buf bytes.Buffer
		if err := chartcsv.WriteXLSX(&buf, export.Table); err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		data = buf.Bytes()
	default:
		return fmt.Errorf("invalid format: %s (must be csv or xlsx)", format)
	}

	if outputPath == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info("wrote export",
		slog.String("path", outputPath),
		slog.String("filename", export.Filename),
		slog.Int("columns", len(export.Table.Columns)))
	return nil
}

// cliMenu is the export menu of the command line host.
type cliMenu struct {
	items []chartcsv.MenuItem
}

func (m *cliMenu) AddItem(item chartcsv.MenuItem) {
	m.items = append(m.items, item)
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	chart, err := loadChart(cmd, args[0])
	if err != nil {
		return err
	}

	target := chart.Exporting.CSV.URL
	if cfg.URL != "" {
		target = cfg.URL
	}
	if downloadURL != "" {
		target = downloadURL
	}

	poster := &chartcsv.HTTPPoster{
		Client: &http.Client{Timeout: cfg.Timeout},
		OnResponse: func(resp *http.Response) error {
			return saveResponse(resp, responsePath(chart), logger)
		},
	}

	menu := &cliMenu{}
	chartcsv.RegisterDownloadCSV(menu, chart, chartcsv.DownloadOptions{
		URL:  target,
		Lang: chartcsv.Lang{DownloadCSV: cfg.DownloadLabel},
		BeforeDownloadCSV: func() {
			logger.Debug("preparing download", slog.String("chart", chart.Name))
		},
		Logger: logger,
	}, poster)

	item := menu.items[0]
	logger.Debug("activating menu item", slog.String("text", item.Text))
	return item.OnClick(cmd.Context())
}

func responsePath(chart *models.Chart) string {
	if outputPath != "" {
		return outputPath
	}
	return server.AttachmentName(chartcsv.Filename(chart))
}

func saveResponse(resp *http.Response, path string, logger *slog.Logger) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to save response: %w", err)
	}
	logger.Info("saved download", slog.String("path", path), slog.Int64("bytes", n))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	listen := cfg.ServerAddr
	if addr != "" {
		listen = addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(listen, server.Config{
		MaxBodyBytes: cfg.MaxBodyBytes,
		Logger:       logger,
	}).Run(ctx)
}
