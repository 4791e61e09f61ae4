package htmstest

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/vango-dev/htms/internal/config"
)

func get(t *testing.T, url string, fragment bool) (string, int) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if fragment {
		req.Header.Set(config.DefaultRequestHeader, "true")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return string(b), resp.StatusCode
}

func TestServer_FragmentOrLayout(t *testing.T) {
	srv := NewServer(t, Layout(`<nav>menu</nav>`))
	srv.Fragment("/items", func(r *http.Request) (string, int) {
		return `<ul id="items"><li>` + r.URL.Query().Get("q") + `</li></ul>`, 0
	})

	body, status := get(t, srv.URL+"/items?q=a", true)
	if status != http.StatusOK || body != `<ul id="items"><li>a</li></ul>` {
		t.Errorf("fragment = %d %q", status, body)
	}

	body, _ = get(t, srv.URL+"/items?q=b", false)
	if !strings.HasPrefix(body, "<!DOCTYPE html>") || !strings.Contains(body, `<nav>menu</nav><ul id="items"><li>b</li></ul>`) {
		t.Errorf("full page = %q", body)
	}

	reqs := srv.Requests()
	if len(reqs) != 2 || !reqs[0].Fragment || reqs[1].Fragment {
		t.Fatalf("requests = %+v", reqs)
	}
	if reqs[0].URL() != "/items?q=a" {
		t.Errorf("URL = %s", reqs[0].URL())
	}
	if got := srv.Fragments(); len(got) != 1 || got[0].RawQuery != "q=a" {
		t.Errorf("Fragments = %+v", got)
	}
}

func TestServer_Status(t *testing.T) {
	srv := NewServer(t)
	srv.Fragment("/fail", func(*http.Request) (string, int) {
		return "nope", http.StatusInternalServerError
	})
	if _, status := get(t, srv.URL+"/fail", true); status != http.StatusInternalServerError {
		t.Errorf("status = %d", status)
	}
}

func TestServer_RedirectKeepsQuery(t *testing.T) {
	srv := NewServer(t)
	srv.Redirect("/old", "/new")
	srv.Fragment("/new", func(r *http.Request) (string, int) {
		return r.URL.RawQuery, 0
	})
	if body, _ := get(t, srv.URL+"/old?x=1", true); body != "x=1" {
		t.Errorf("body = %q", body)
	}
}

func TestServer_MarkerHeader(t *testing.T) {
	srv := NewServer(t, WithMarkerHeader("X-Partial"))
	srv.Fragment("/", func(*http.Request) (string, int) { return "frag", 0 })

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	req.Header.Set("X-Partial", "true")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if string(b) != "frag" {
		t.Errorf("body = %q", b)
	}
}

func TestPageHelpers(t *testing.T) {
	srv := NewServer(t, Layout(`<form x-get="/greet" x-replace="greeting"><input name="who" value=""></form>`))
	srv.Fragment("/greet", func(r *http.Request) (string, int) {
		return `<p id="greeting">hello ` + r.URL.Query().Get("who") + `</p>`, 0
	})

	p := StartPage(t)
	Load(t, p, srv.URL+"/greet")
	ExpectContains(t, p, `<p id="greeting">hello </p>`)

	Change(t, p, 0, "who=gopher")

	ExpectOuterHTML(t, p, "greeting", `<p id="greeting">hello gopher</p>`)
	ExpectNotContains(t, p, "hello </p>")
	ExpectLocation(t, p, srv.URL+"/greet")
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 3); got != "abc..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("ab", 3); got != "ab" {
		t.Errorf("truncate = %q", got)
	}
}
