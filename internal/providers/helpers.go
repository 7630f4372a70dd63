package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// timeLayouts are tried in order when parsing provider timestamps.
// Providers disagree on offsets and separators.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseTime parses a provider timestamp, treating offset-less values as
// UTC. Structured datetimes are required by the canonical model, so a
// string no layout matches is an error, never a zero time.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?$`)

// parseISODuration parses the ISO 8601 durations used by flight APIs,
// e.g. "PT8H30M". Seconds never appear in flight durations.
func parseISODuration(s string) (time.Duration, error) {
	m := isoDurationRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0, fmt.Errorf("unparseable duration %q", s)
	}
	hours := cast.ToInt(m[1])
	minutes := cast.ToInt(m[2])
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}

// getJSON performs an authenticated GET and decodes the JSON body into
// out. Non-2xx statuses become ProviderErrors carrying the status code.
func getJSON(ctx context.Context, client *http.Client, provider, rawURL string, params url.Values, headers map[string]string, out any) error {
	u := rawURL
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return NewProviderError(provider, err)
	}
	return doJSON(client, provider, req, headers, out)
}

// postJSON performs an authenticated POST with a JSON body and decodes
// the JSON response into out.
func postJSON(ctx context.Context, client *http.Client, provider, rawURL string, body any, headers map[string]string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return NewProviderError(provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(string(payload)))
	if err != nil {
		return NewProviderError(provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return doJSON(client, provider, req, headers, out)
}

func doJSON(client *http.Client, provider string, req *http.Request, headers map[string]string, out any) error {
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return NewProviderError(provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return NewProviderError(provider, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewProviderError(provider, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func joinUpper(codes []string) string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	return strings.Join(out, ",")
}
