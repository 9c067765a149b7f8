// Package cds retrieves the EFAS-historical river-discharge reanalysis from
// the Copernicus Climate Data Store. Requests follow the CDS API contract:
// a queued retrieval is POSTed, the task is polled until complete, then the
// result file is streamed to disk.
//
// Area cropping on CDS was disabled for EFAS 4.0 (broken since 2023), so
// the full-domain file is retrieved (>5 GB/yr) and cropped locally by the
// discharge package.
package cds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/maseology/mmio"
)

const (
	defaultURL = "https://cds.climate.copernicus.eu/api/v2"
	dataset    = "efas-historical"
)

// Client talks to the CDS API.
type Client struct {
	URL          string
	PollInterval time.Duration

	uid, key string
	hc       *http.Client
}

// New builds a client from the CDS credential string "UID:APIKEY".
func New(url, credentials string) (*Client, error) {
	if url == "" {
		url = defaultURL
	}
	uid, key, ok := strings.Cut(credentials, ":")
	if !ok {
		return nil, fmt.Errorf("cds: credentials not of form UID:APIKEY")
	}
	return &Client{
		URL:          strings.TrimRight(url, "/"),
		PollInterval: 15 * time.Second,
		uid:          uid,
		key:          key,
		hc:           &http.Client{},
	}, nil
}

// NewFromEnv reads CDSAPI_URL and CDSAPI_KEY, mirroring the cdsapi client.
func NewFromEnv() (*Client, error) {
	key := os.Getenv("CDSAPI_KEY")
	if key == "" {
		return nil, fmt.Errorf("cds: CDSAPI_KEY not set")
	}
	return New(os.Getenv("CDSAPI_URL"), key)
}

type task struct {
	State     string `json:"state"`
	RequestID string `json:"request_id"`
	Location  string `json:"location"`
	Error     struct {
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
	ContentLength int64 `json:"content_length"`
}

// Retrieve downloads one hydrological year of 6-hourly river discharge to
// dir/discharge_<year>_full.nc.zip, skipping files already present.
// Returns the file path.
func (c *Client) Retrieve(ctx context.Context, year int, dir string) (string, error) {
	fn := filepath.Join(dir, fmt.Sprintf("discharge_%d_full.nc.zip", year))
	if _, ok := mmio.FileExists(fn); ok {
		fmt.Printf("  %s exists, skipping\n", fn)
		return fn, nil
	}

	t, err := c.submit(ctx, Request(year))
	if err != nil {
		return "", err
	}
	for t.State != "completed" {
		switch t.State {
		case "queued", "running":
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.PollInterval):
			}
			if t, err = c.poll(ctx, t.RequestID); err != nil {
				return "", err
			}
		case "failed":
			return "", fmt.Errorf("cds: retrieval %d failed: %s: %s", year, t.Error.Message, t.Error.Reason)
		default:
			return "", fmt.Errorf("cds: retrieval %d: unexpected state %q", year, t.State)
		}
	}

	if err := c.download(ctx, t, fn); err != nil {
		return "", err
	}
	return fn, nil
}

// Request is the efas-historical request body for one year, matching the
// published retrieval: 6-hourly surface-level discharge, all days.
func Request(year int) map[string]interface{} {
	months := make([]string, 12)
	for i := range months {
		months[i] = fmt.Sprintf("%02d", i+1)
	}
	days := make([]string, 31)
	for i := range days {
		days[i] = fmt.Sprintf("%02d", i+1)
	}
	return map[string]interface{}{
		"system_version": "version_4_0",
		"variable":       "river_discharge_in_the_last_6_hours",
		"model_levels":   "surface_level",
		"hyear":          fmt.Sprint(year),
		"hmonth":         months,
		"hday":           days,
		"time":           []string{"00:00", "06:00", "12:00", "18:00"},
		"format":         "netcdf",
	}
}

func (c *Client) submit(ctx context.Context, body map[string]interface{}) (*task, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("cds: %v", err)
	}
	return c.do(ctx, http.MethodPost, c.URL+"/resources/"+dataset, bytes.NewReader(b))
}

func (c *Client) poll(ctx context.Context, id string) (*task, error) {
	return c.do(ctx, http.MethodGet, c.URL+"/tasks/"+id, nil)
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader) (*task, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("cds: %v", err)
	}
	req.SetBasicAuth(c.uid, c.key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cds: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("cds: %s: unexpected status %s", url, res.Status)
	}
	var t task
	if err := json.NewDecoder(res.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("cds: decoding response: %v", err)
	}
	return &t, nil
}

func (c *Client) download(ctx context.Context, t *task, fn string) error {
	loc := t.Location
	if !strings.HasPrefix(loc, "http") {
		loc = c.URL + "/" + strings.TrimLeft(loc, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return fmt.Errorf("cds: %v", err)
	}
	req.SetBasicAuth(c.uid, c.key)
	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("cds: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("cds: download %s: unexpected status %s", loc, res.Status)
	}

	f, err := os.Create(fn + ".part")
	if err != nil {
		return fmt.Errorf("cds: %v", err)
	}

	n := res.ContentLength
	if n <= 0 {
		n = t.ContentLength
	}
	if n > 1<<20 {
		uiprogress.Start()
		bar := uiprogress.AddBar(int(n >> 20)).AppendCompleted().PrependElapsed()
		_, err = io.Copy(f, io.TeeReader(res.Body, &mbCounter{bar: bar}))
		uiprogress.Stop()
	} else {
		_, err = io.Copy(f, res.Body)
	}
	if err != nil {
		f.Close()
		os.Remove(fn + ".part")
		return fmt.Errorf("cds: download %s: %v", loc, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cds: %v", err)
	}
	return os.Rename(fn+".part", fn)
}

// mbCounter advances one bar tick per MiB streamed.
type mbCounter struct {
	bar *uiprogress.Bar
	n   int64
}

func (m *mbCounter) Write(p []byte) (int, error) {
	m.n += int64(len(p))
	for int(m.n>>20) > m.bar.Current() {
		if !m.bar.Incr() {
			break
		}
	}
	return len(p), nil
}
