package appium

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devicelab-dev/backyard-e2e/pkg/core"
)

// writeJSON encodes data as JSON to the response writer.
func writeJSON(w http.ResponseWriter, data interface{}) {
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError writes a W3C WebDriver error response.
func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.WriteHeader(status)
	writeJSON(w, map[string]interface{}{
		"value": map[string]interface{}{"error": code, "message": msg},
	})
}

func TestClient_Connect(t *testing.T) {
	var gotCaps map[string]interface{}
	settingsCalled := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session" && r.Method == "POST" {
			var body map[string]map[string]map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				gotCaps = body["capabilities"]["alwaysMatch"]
			}
			writeJSON(w, map[string]interface{}{
				"value": map[string]interface{}{
					"sessionId": "test-session-123",
					"capabilities": map[string]interface{}{
						"platformName": "iOS",
					},
				},
			})
			return
		}
		if r.URL.Path == "/session/test-session-123/appium/settings" {
			settingsCalled = true
			writeJSON(w, map[string]interface{}{"value": nil})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.Connect(context.Background(), map[string]interface{}{
		"platformName":          "iOS",
		"appium:automationName": "XCUITest",
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if client.SessionID() != "test-session-123" {
		t.Errorf("Expected sessionID 'test-session-123', got '%s'", client.SessionID())
	}
	if gotCaps["appium:automationName"] != "XCUITest" {
		t.Errorf("capabilities not sent under alwaysMatch: %v", gotCaps)
	}
	if !settingsCalled {
		t.Error("Expected settings endpoint to be called")
	}
}

func TestClient_ConnectUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url)
	err := client.Connect(context.Background(), map[string]interface{}{})
	if !core.IsBackendUnavailable(err) {
		t.Fatalf("expected backend unavailable, got %v", err)
	}
}

func TestClient_Disconnect(t *testing.T) {
	deleteCalled := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/test-session" && r.Method == "DELETE" {
			deleteCalled = true
			writeJSON(w, map[string]interface{}{"value": nil})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	if err := client.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if !deleteCalled {
		t.Error("Expected DELETE to be called")
	}
	if client.SessionID() != "" {
		t.Error("Expected session ID to be cleared")
	}

	// Second disconnect is a no-op
	if err := client.Disconnect(context.Background()); err != nil {
		t.Errorf("second Disconnect failed: %v", err)
	}
}

func TestClient_FindElements(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/test-session/elements" && r.Method == "POST" {
			_ = json.NewDecoder(r.Body).Decode(&got)
			writeJSON(w, map[string]interface{}{
				"value": []interface{}{
					map[string]interface{}{"element-6066-11e4-a52e-4f735466cecf": "elem-1"},
					map[string]interface{}{"ELEMENT": "elem-2"},
				},
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	ids, err := client.FindElements(context.Background(), "-ios predicate string", `label == "Birds"`)
	if err != nil {
		t.Fatalf("FindElements failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "elem-1" || ids[1] != "elem-2" {
		t.Errorf("unexpected ids %v", ids)
	}
	if got["using"] != "-ios predicate string" || got["value"] != `label == "Birds"` {
		t.Errorf("locator not sent verbatim: %v", got)
	}
}

func TestClient_FindElementsNoSuchElement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no such element", "An element could not be located")
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	ids, err := client.FindElements(context.Background(), "accessibility id", "Nope")
	if err != nil {
		t.Fatalf("no such element should be an empty result, got %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no ids, got %v", ids)
	}
}

func TestClient_StaleElement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "stale element reference", "The element is not attached")
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	_, err := client.ElementDisplayed(context.Background(), "elem-1")
	if !errors.Is(err, core.ErrStaleElement) {
		t.Fatalf("expected stale element error, got %v", err)
	}
	if core.IsBackendUnavailable(err) {
		t.Error("stale element must not be reported as backend unavailable")
	}
}

func TestClient_InvalidSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "invalid session id", "session deleted")
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "gone"

	_, err := client.Screenshot(context.Background())
	if !errors.Is(err, core.ErrNoSession) {
		t.Fatalf("expected no session error, got %v", err)
	}
}

func TestClient_ServerErrorWithoutJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	_, _, err := client.WindowRect(context.Background())
	if !core.IsBackendUnavailable(err) {
		t.Fatalf("expected backend unavailable, got %v", err)
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeJSON(w, map[string]interface{}{"value": nil})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Source(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if core.IsBackendUnavailable(err) {
		t.Error("cancellation must not be reported as backend unavailable")
	}
}

func TestClient_Swipe(t *testing.T) {
	var body map[string][]map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/test-session/actions" && r.Method == "POST" {
			_ = json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, map[string]interface{}{"value": nil})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	if err := client.Swipe(context.Background(), 200, 700, 200, 300, 500*time.Millisecond); err != nil {
		t.Fatalf("Swipe failed: %v", err)
	}

	actions := body["actions"]
	if len(actions) != 1 || actions[0]["type"] != "pointer" {
		t.Fatalf("unexpected actions payload: %v", body)
	}
	steps, _ := actions[0]["actions"].([]interface{})
	if len(steps) != 4 {
		t.Fatalf("expected 4 pointer steps, got %d", len(steps))
	}
	move, _ := steps[2].(map[string]interface{})
	if move["duration"] != 500.0 || move["y"] != 300.0 {
		t.Errorf("unexpected move step: %v", move)
	}
}

func TestClient_SendElementKeys(t *testing.T) {
	var body map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/test-session/element/elem-1/value" && r.Method == "POST" {
			_ = json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, map[string]interface{}{"value": nil})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	if err := client.SendElementKeys(context.Background(), "elem-1", "Bird"); err != nil {
		t.Fatalf("SendElementKeys failed: %v", err)
	}
	if body["text"] != "Bird" {
		t.Errorf("Expected text 'Bird', got %q", body["text"])
	}
}

func TestClient_Screenshot(t *testing.T) {
	expectedData := []byte("fake-png-data")
	encoded := base64.StdEncoding.EncodeToString(expectedData)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/test-session/screenshot" || r.URL.Path == "/session/test-session/element/elem-1/screenshot" {
			writeJSON(w, map[string]interface{}{
				"value": encoded,
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	data, err := client.Screenshot(context.Background())
	if err != nil {
		t.Fatalf("Screenshot failed: %v", err)
	}
	if string(data) != string(expectedData) {
		t.Errorf("Screenshot data mismatch")
	}

	data, err = client.ElementScreenshot(context.Background(), "elem-1")
	if err != nil {
		t.Fatalf("ElementScreenshot failed: %v", err)
	}
	if string(data) != string(expectedData) {
		t.Errorf("ElementScreenshot data mismatch")
	}
}

func TestClient_Source(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/test-session/source" {
			writeJSON(w, map[string]interface{}{"value": "<XCUIElementTypeApplication/>"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	src, err := client.Source(context.Background())
	if err != nil {
		t.Fatalf("Source failed: %v", err)
	}
	if src != "<XCUIElementTypeApplication/>" {
		t.Errorf("unexpected source %q", src)
	}
}

func TestClient_ActivateAndTerminateApp(t *testing.T) {
	var paths []string
	var bundle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		bundle = body["bundleId"]
		writeJSON(w, map[string]interface{}{"value": true})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"
	ctx := context.Background()

	if err := client.TerminateApp(ctx, "com.example.birds"); err != nil {
		t.Fatalf("TerminateApp failed: %v", err)
	}
	if err := client.ActivateApp(ctx, "com.example.birds"); err != nil {
		t.Fatalf("ActivateApp failed: %v", err)
	}

	want := []string{
		"/session/test-session/appium/device/terminate_app",
		"/session/test-session/appium/device/activate_app",
	}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("unexpected paths %v", paths)
	}
	if bundle != "com.example.birds" {
		t.Errorf("Expected bundleId, got %q", bundle)
	}
}

func TestClient_ElementAttribute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/session/test-session/element/elem-1/attribute/label":
			writeJSON(w, map[string]interface{}{"value": "Bird Springs"})
		case "/session/test-session/element/elem-1/attribute/visible":
			writeJSON(w, map[string]interface{}{"value": true})
		case "/session/test-session/element/elem-1/attribute/value":
			writeJSON(w, map[string]interface{}{"value": nil})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"
	ctx := context.Background()

	tests := []struct {
		name string
		want string
	}{
		{"label", "Bird Springs"},
		{"visible", "true"},
		{"value", ""},
	}
	for _, tt := range tests {
		got, err := client.ElementAttribute(ctx, "elem-1", tt.name)
		if err != nil {
			t.Errorf("ElementAttribute(%s) failed: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ElementAttribute(%s) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestClient_ElementRect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/test-session/element/elem-123/rect" {
			writeJSON(w, map[string]interface{}{
				"value": map[string]interface{}{
					"x":      100.0,
					"y":      200.0,
					"width":  300.0,
					"height": 50.0,
				},
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	b, err := client.ElementRect(context.Background(), "elem-123")
	if err != nil {
		t.Fatalf("ElementRect failed: %v", err)
	}
	if b != (core.Bounds{X: 100, Y: 200, Width: 300, Height: 50}) {
		t.Errorf("Unexpected rect: %+v", b)
	}
}

func TestClient_ElementText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/test-session/element/elem-123/text" {
			writeJSON(w, map[string]interface{}{"value": "Hello World"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	text, err := client.ElementText(context.Background(), "elem-123")
	if err != nil {
		t.Fatalf("ElementText failed: %v", err)
	}
	if text != "Hello World" {
		t.Errorf("Expected 'Hello World', got '%s'", text)
	}
}

func TestClient_ClickElement(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		writeJSON(w, map[string]interface{}{"value": nil})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"
	ctx := context.Background()

	if err := client.ClickElement(ctx, "elem-1"); err != nil {
		t.Fatalf("ClickElement failed: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/session/test-session/element/elem-1/click" {
		t.Errorf("unexpected paths %v", paths)
	}
}

func TestClient_ExecuteMobile(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session/test-session/execute/sync" {
			_ = json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, map[string]interface{}{"value": "ok"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.sessionID = "test-session"

	v, err := client.ExecuteMobile(context.Background(), "setAppearance", map[string]interface{}{"style": "dark"})
	if err != nil {
		t.Fatalf("ExecuteMobile failed: %v", err)
	}
	if v != "ok" {
		t.Errorf("unexpected value %v", v)
	}
	if body["script"] != "mobile: setAppearance" {
		t.Errorf("unexpected script %v", body["script"])
	}
}

func TestExtractElementID(t *testing.T) {
	tests := []struct {
		name     string
		value    map[string]interface{}
		expected string
	}{
		{
			name:     "W3C format",
			value:    map[string]interface{}{"element-6066-11e4-a52e-4f735466cecf": "w3c-id"},
			expected: "w3c-id",
		},
		{
			name:     "Legacy format",
			value:    map[string]interface{}{"ELEMENT": "legacy-id"},
			expected: "legacy-id",
		},
		{
			name:     "Empty",
			value:    map[string]interface{}{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractElementID(tt.value); got != tt.expected {
				t.Errorf("extractElementID() = %q, want %q", got, tt.expected)
			}
		})
	}
}
