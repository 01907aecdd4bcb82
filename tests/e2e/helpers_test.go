//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"testing"
	"time"
)

// getEnv returns an environment variable or a fallback value.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// waitForService polls a URL until it's healthy or timeout is reached.
func waitForService(url string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("service not ready after %v", timeout)
}

// newSession returns an HTTP client with its own cookie jar, representing
// one browser/device.
func newSession(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

// apiRequest makes a JSON request with the session's cookies.
func apiRequest(t *testing.T, client *http.Client, method, path string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, apiURL+path, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	return resp
}

// decodeBody unmarshals a response body into v and closes it.
func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// sessionCookies returns the session's cookies for the API host.
func sessionCookies(t *testing.T, client *http.Client) []*http.Cookie {
	t.Helper()
	u, err := url.Parse(apiURL)
	if err != nil {
		t.Fatalf("Failed to parse API URL: %v", err)
	}
	return client.Jar.Cookies(u)
}

// keepOnlyCookie rewrites the session's jar so only the named cookie
// survives. Used to force the refresh path by dropping the access token.
func keepOnlyCookie(t *testing.T, client *http.Client, name string) {
	t.Helper()
	u, err := url.Parse(apiURL)
	if err != nil {
		t.Fatalf("Failed to parse API URL: %v", err)
	}

	var kept []*http.Cookie
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == name {
			kept = append(kept, c)
		} else {
			// Expire everything else.
			kept = append(kept, &http.Cookie{Name: c.Name, Value: "", MaxAge: -1})
		}
	}
	client.Jar.SetCookies(u, kept)
}

// cookieValue returns the named cookie's value in the session, or "".
func cookieValue(t *testing.T, client *http.Client, name string) string {
	t.Helper()
	for _, c := range sessionCookies(t, client) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
