package api

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func readAPIError(t *testing.T, body io.Reader) string {
	t.Helper()

	payload := map[string]any{}
	decodeResponse(t, body, &payload)
	message, _ := payload["error"].(string)
	return message
}

func decodeResponse(t *testing.T, body io.Reader, target any) {
	t.Helper()

	bytes, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(bytes, target); err != nil {
		t.Fatalf("decode response body %q: %v", string(bytes), err)
	}
}
