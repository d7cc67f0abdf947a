package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "no trusted proxies ignores headers",
			remoteAddr: "198.51.100.7:5000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "198.51.100.7:5000",
		},
		{
			name:       "trusted proxy X-Real-IP",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "1.2.3.4",
		},
		{
			name:       "trusted proxy first X-Forwarded-For hop",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5000",
			headers:    map[string]string{"X-Forwarded-For": "5.6.7.8, 10.1.2.3"},
			want:       "5.6.7.8",
		},
		{
			name:       "X-Real-IP wins over X-Forwarded-For",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4", "X-Forwarded-For": "5.6.7.8"},
			want:       "1.2.3.4",
		},
		{
			name:       "untrusted peer",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "198.51.100.7:5000",
			headers:    map[string]string{"X-Forwarded-For": "5.6.7.8"},
			want:       "198.51.100.7:5000",
		},
		{
			name:       "invalid header value is ignored",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:5000",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "10.1.2.3:5000",
		},
		{
			name:       "bare address is trusted as a single host",
			trusted:    []string{"127.0.0.1", "bogus"},
			remoteAddr: "127.0.0.1:5000",
			headers:    map[string]string{"X-Real-IP": "1.2.3.4"},
			want:       "1.2.3.4",
		},
		{
			name:       "ipv6 proxy",
			trusted:    []string{"fd00::/8"},
			remoteAddr: "[fd00::1]:5000",
			headers:    map[string]string{"X-Real-IP": "2001:db8::5"},
			want:       "2001:db8::5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"192.0.2.1", "192.0.2.1"},
		{"[2001:db8::1]:80", "2001:db8::1"},
		{"garbage", "garbage"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := ClientIP(req); got != tt.want {
			t.Errorf("ClientIP(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/import", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}

	out := buf.String()
	for _, want := range []string{"level=INFO", "method=POST", "path=/api/import", "status=418", "bytes=5", "ip=192.0.2.1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestLogger_ServerErrorAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("expected error level: %s", buf.String())
	}
}
