package updater

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCompareVersions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		v1, v2 string
		want   int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.1", "1.0.0", 1},
		{"1.0.0", "1.0.1", -1},
		{"v1.0.0", "1.0.0", 0},
		{"1.0.0", "v1.0.0", 0},
		{"2.0.0", "1.9.9", 1},
		{"1.10.0", "1.9.0", 1},
		{"1.0.0", "1.0.0-alpha", 1},      // Release > Pre-release
		{"1.0.0-beta", "1.0.0-alpha", 1}, // beta > alpha
		{"1.0.0-alpha", "1.0.0", -1},
		// Lexical fallback cases
		{"invalid", "1.0.0", 1},
		{"1.0.0", "invalid", -1},
	}

	for _, tt := range tests {
		if got := compareVersions(tt.v1, tt.v2); got != tt.want {
			t.Errorf("compareVersions(%q, %q) = %d, want %d", tt.v1, tt.v2, got, tt.want)
		}
	}
}

func releaseServer(t *testing.T, status int, rel Release) *Checker {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "sfh-update-check" {
			t.Errorf("User-Agent = %q", ua)
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			json.NewEncoder(w).Encode(rel)
		}
	}))
	t.Cleanup(srv.Close)
	return &Checker{Client: srv.Client(), URL: srv.URL}
}

func TestCheck(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		status    int
		tag       string
		current   string
		available bool
	}{
		{"newer release", http.StatusOK, "v2.0.0", "v1.0.0", true},
		{"same release", http.StatusOK, "v1.0.0", "v1.0.0", false},
		{"older release", http.StatusOK, "v0.9.0", "v1.0.0", false},
		{"rate limited", http.StatusForbidden, "", "v1.0.0", false},
		{"server error", http.StatusInternalServerError, "", "v1.0.0", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := releaseServer(t, tt.status, Release{TagName: tt.tag, HTMLURL: "https://example.com/" + tt.tag})

			info, err := c.Check(context.Background(), tt.current)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if info.Available != tt.available {
				t.Errorf("Available = %v, want %v", info.Available, tt.available)
			}
			if info.CurrentVer != tt.current {
				t.Errorf("CurrentVer = %q", info.CurrentVer)
			}
			if tt.available && info.NewVersion != tt.tag {
				t.Errorf("NewVersion = %q, want %q", info.NewVersion, tt.tag)
			}
		})
	}
}

func TestCheckBadBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := &Checker{Client: srv.Client(), URL: srv.URL}
	if _, err := c.Check(context.Background(), "v1.0.0"); err == nil {
		t.Error("Check() should fail on a malformed body")
	}
}

func TestCheckAsync(t *testing.T) {
	t.Parallel()

	t.Run("reports result", func(t *testing.T) {
		c := releaseServer(t, http.StatusOK, Release{TagName: "v1.2.0"})
		select {
		case info := <-c.CheckAsync(context.Background(), "v1.1.0"):
			if info == nil || !info.Available {
				t.Errorf("info = %+v, want available", info)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("CheckAsync did not deliver")
		}
	})

	t.Run("dev build skips request", func(t *testing.T) {
		c := &Checker{Client: http.DefaultClient, URL: "http://127.0.0.1:1/unreachable"}
		info := <-c.CheckAsync(context.Background(), "dev")
		if info == nil || info.Available {
			t.Errorf("info = %+v, want unavailable", info)
		}
	})

	t.Run("network failure is not an update", func(t *testing.T) {
		c := &Checker{Client: &http.Client{Timeout: time.Second}, URL: "http://127.0.0.1:1/unreachable"}
		info := <-c.CheckAsync(context.Background(), "v1.0.0")
		if info == nil || info.Available {
			t.Errorf("info = %+v, want unavailable", info)
		}
	})
}

func TestShouldNotify(t *testing.T) {
	t.Parallel()
	avail := &UpdateInfo{Available: true, NewVersion: "v1.3.0"}

	tests := []struct {
		name    string
		info    *UpdateInfo
		ignored string
		want    bool
	}{
		{"nil info", nil, "", false},
		{"not available", &UpdateInfo{}, "", false},
		{"nothing ignored", avail, "", true},
		{"this version ignored", avail, "v1.3.0", false},
		{"older version ignored", avail, "v1.2.0", true},
	}

	for _, tt := range tests {
		if got := ShouldNotify(tt.info, tt.ignored); got != tt.want {
			t.Errorf("%s: ShouldNotify() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
