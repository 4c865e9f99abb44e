package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"PolicyCrawler/internal/domain"
)

func requireChrome(t *testing.T) {
	t.Helper()

	for _, name := range []string{"headless-shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("no Chrome or Chromium binary on PATH")
}

const scriptListing = `<html><body><ul id="list"></ul>
<script>
var li = document.createElement("li");
li.id = "rendered";
li.innerHTML = '<a href="/p/1.html">关于开展专精特新中小企业认定工作的通知</a> 2025-05-20';
document.getElementById("list").appendChild(li);
</script>
</body></html>`

func TestChromeRendererFetch(t *testing.T) {
	requireChrome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(scriptListing))
	}))
	defer server.Close()

	r := NewChromeRenderer(200*time.Millisecond, 30*time.Second, "PolicyCrawler/test")
	markup, err := r.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if !strings.Contains(markup, `id="rendered"`) {
		t.Fatalf("script-built item missing from markup:\n%s", markup)
	}
	if !strings.Contains(markup, "关于开展专精特新中小企业认定工作的通知") {
		t.Fatalf("rendered title missing from markup:\n%s", markup)
	}
}

func TestChromeRendererUnreachable(t *testing.T) {
	requireChrome(t)

	r := NewChromeRenderer(0, 15*time.Second, "")
	_, err := r.Fetch(context.Background(), "http://127.0.0.1:1/")
	if !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}
