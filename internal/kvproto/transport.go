package kvproto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// httpClient is the shared client used for all inter-component calls,
// configured with a timeout so an unreachable peer fails fast instead of
// hanging a caller indefinitely. Mirrors the teacher's package-level
// internal/cluster.httpClient.
var httpClient = &http.Client{Timeout: 5 * time.Second}

// PostJSON sends a JSON-encoded POST to url and decodes a JSON response
// into out (nil to ignore the body). A non-2xx response is translated into
// a *Fault carrying the response body as its message, so callers can
// surface the remote INVALID_ARGUMENT message directly.
func PostJSON(ctx context.Context, url string, body, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		if len(msg) == 0 {
			return fmt.Errorf("http %s: %d", url, resp.StatusCode)
		}
		return NewFault(string(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetJSON sends a GET to url and decodes a JSON response into out.
func GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		if len(msg) == 0 {
			return fmt.Errorf("http %s: %d", url, resp.StatusCode)
		}
		return NewFault(string(msg))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// WriteFault writes a Fault (or any error, wrapped) as the standard
// INVALID_ARGUMENT response body: a 400 with the message as plain text.
// This is the one status code the specification's RPCs use (spec.md
// section 6).
func WriteFault(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}
