package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/chartcsv-go/pkg/chartcsv"
	"github.com/ukaji3/chartcsv-go/pkg/chartcsv/models"
)

func postForm(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/csv", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDownload(t *testing.T) {
	h := NewHandler(Config{}).Routes()

	rec := postForm(t, h, url.Values{"csv": {"X values,A\n0,10\n"}, "filename": {"Sales 2024"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Sales 2024.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "X values,A\n0,10\n", rec.Body.String())
}

func TestDownloadMissingCSV(t *testing.T) {
	h := NewHandler(Config{}).Routes()

	rec := postForm(t, h, url.Values{"filename": {"x"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var p Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Contains(t, p.Detail, "csv failed on required")
	assert.NotEmpty(t, p.Trace)
}

func TestDownloadTooLarge(t *testing.T) {
	h := NewHandler(Config{MaxBodyBytes: 16}).Routes()

	rec := postForm(t, h, url.Values{"csv": {strings.Repeat("a", 64)}})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := NewHandler(Config{}).Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAttachmentName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sales", "Sales.csv"},
		{"", "data.csv"},
		{"report.CSV", "report.CSV"},
		{"../etc/passwd", "_etc_passwd.csv"},
		{`a"b`, "a_b.csv"},
		{"Umsätze", "Umsätze.csv"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AttachmentName(tt.in), tt.in)
	}
}

// The menu action posts to the endpoint and the response is the CSV file.
func TestDownloadRoundTrip(t *testing.T) {
	srv := httptest.NewServer(NewHandler(Config{}).Routes())
	defer srv.Close()

	chart := &models.Chart{
		Type:  models.TypeLine,
		Title: &models.Title{Text: "Sales"},
		Series: []models.Series{{
			Name:  "A",
			XData: []float64{0, 1},
			YData: []*float64{ptr(10), ptr(20)},
			XAxis: &models.Axis{Type: models.AxisLinear},
		}},
	}

	out := filepath.Join(t.TempDir(), "out.csv")
	var disposition string
	poster := &chartcsv.HTTPPoster{
		Client: srv.Client(),
		OnResponse: func(resp *http.Response) error {
			disposition = resp.Header.Get("Content-Disposition")
			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			return os.WriteFile(out, data, 0644)
		},
	}

	err := chartcsv.DownloadCSV(context.Background(), chart, chartcsv.DownloadOptions{URL: srv.URL + "/csv"}, poster)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "X values,A\n0,10\n1,20\n", string(data))
	assert.Equal(t, `attachment; filename="Sales.csv"`, disposition)
}

func ptr(f float64) *float64 { return &f }
