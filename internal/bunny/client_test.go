package bunny

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/beautyhome/studio-api/internal/storage"
	"github.com/beautyhome/studio-api/internal/testutil/mockstorage"
)

func newTestClient(server *mockstorage.Server, opts ...Option) *Client {
	opts = append([]Option{WithBaseURL(server.URL())}, opts...)
	return NewClient(server.Zone(), server.AccessKey(), opts...)
}

func TestGet(t *testing.T) {
	t.Parallel()

	t.Run("reads object through storage API", func(t *testing.T) {
		t.Parallel()
		server := mockstorage.New()
		defer server.Close()
		server.PutObject("content/home.json", []byte(`{"hero":{}}`), time.Now())

		client := newTestClient(server)
		data, err := client.Get(context.Background(), "content/home.json")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(data) != `{"hero":{}}` {
			t.Errorf("unexpected body %q", data)
		}
	})

	t.Run("reads object through public URL without key", func(t *testing.T) {
		t.Parallel()
		server := mockstorage.New()
		defer server.Close()
		server.PutObject("content/about.json", []byte(`{}`), time.Now())

		client := NewClient(server.Zone(), "", WithBaseURL(server.URL()), WithPublicURL(server.PublicURL()))
		data, err := client.Get(context.Background(), "/content/about.json")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(data) != `{}` {
			t.Errorf("unexpected body %q", data)
		}
	})

	t.Run("missing object is not found", func(t *testing.T) {
		t.Parallel()
		server := mockstorage.New()
		defer server.Close()

		client := newTestClient(server)
		_, err := client.Get(context.Background(), "content/missing.json")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if !storage.IsNotFound(err) {
			t.Error("expected error to satisfy storage.IsNotFound")
		}
	})

	t.Run("wrong key is unauthorized", func(t *testing.T) {
		t.Parallel()
		server := mockstorage.New()
		defer server.Close()

		client := NewClient(server.Zone(), "wrong-key", WithBaseURL(server.URL()))
		_, err := client.Get(context.Background(), "content/home.json")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("server error is structured", func(t *testing.T) {
		t.Parallel()
		server := mockstorage.New()
		defer server.Close()
		server.SetFailure("content/home.json", http.StatusServiceUnavailable)

		client := newTestClient(server)
		_, err := client.Get(context.Background(), "content/home.json")
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %T: %v", err, err)
		}
		if apiErr.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", apiErr.StatusCode)
		}
	})

	t.Run("no credentials and no public URL", func(t *testing.T) {
		t.Parallel()
		client := NewClient("zone", "")
		_, err := client.Get(context.Background(), "content/home.json")
		if !errors.Is(err, storage.ErrStorageUnavailable) {
			t.Fatalf("expected ErrStorageUnavailable, got %v", err)
		}
	})
}

func TestPut(t *testing.T) {
	t.Parallel()

	t.Run("uploads and overwrites", func(t *testing.T) {
		t.Parallel()
		server := mockstorage.New()
		defer server.Close()

		client := newTestClient(server)
		ctx := context.Background()
		if err := client.Put(ctx, "bookings/bookings.json", []byte(`[1]`)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := client.Put(ctx, "bookings/bookings.json", []byte(`[2,1]`)); err != nil {
			t.Fatalf("second Put failed: %v", err)
		}

		data, ok := server.Object("bookings/bookings.json")
		if !ok || string(data) != `[2,1]` {
			t.Errorf("expected overwritten object, got %q (found=%v)", data, ok)
		}
	})

	t.Run("read-only client refuses writes", func(t *testing.T) {
		t.Parallel()
		client := NewClient("zone", "", WithPublicURL("http://example.invalid"))
		if client.Writable() {
			t.Error("expected client without key to be read-only")
		}
		err := client.Put(context.Background(), "content/home.json", []byte(`{}`))
		if !errors.Is(err, ErrReadOnly) || !errors.Is(err, storage.ErrStorageUnavailable) {
			t.Fatalf("expected ErrReadOnly, got %v", err)
		}
	})

	t.Run("injected failure surfaces", func(t *testing.T) {
		t.Parallel()
		server := mockstorage.New()
		defer server.Close()
		server.SetFailure("content/home.json", http.StatusInternalServerError)

		client := newTestClient(server)
		if err := client.Put(context.Background(), "content/home.json", []byte(`{}`)); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestList(t *testing.T) {
	t.Parallel()

	t.Run("returns newest first with zone-relative paths", func(t *testing.T) {
		t.Parallel()
		server := mockstorage.New()
		defer server.Close()
		base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		server.PutObject("bookings/bookings-a.json", []byte(`[]`), base)
		server.PutObject("bookings/bookings-b.json", []byte(`[]`), base.Add(time.Hour))
		server.PutObject("content/home.json", []byte(`{}`), base)

		client := newTestClient(server)
		infos, err := client.List(context.Background(), "bookings")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(infos) != 2 {
			t.Fatalf("expected 2 objects, got %d", len(infos))
		}
		if infos[0].Path != "bookings/bookings-b.json" {
			t.Errorf("expected newest object first, got %s", infos[0].Path)
		}
		if !infos[0].LastChanged.Equal(base.Add(time.Hour)) {
			t.Errorf("unexpected LastChanged %v", infos[0].LastChanged)
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		t.Parallel()
		server := mockstorage.New()
		defer server.Close()

		client := newTestClient(server)
		infos, err := client.List(context.Background(), "nothing-here")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(infos) != 0 {
			t.Errorf("expected empty listing, got %d", len(infos))
		}
	})
}

func TestPing(t *testing.T) {
	t.Parallel()
	server := mockstorage.New()
	defer server.Close()

	if err := newTestClient(server).Ping(context.Background()); err != nil {
		t.Errorf("Ping with key failed: %v", err)
	}

	readOnly := NewClient(server.Zone(), "", WithPublicURL(server.PublicURL()))
	if err := readOnly.Ping(context.Background()); err != nil {
		t.Errorf("Ping via public URL failed: %v", err)
	}

	if err := NewClient("zone", "").Ping(context.Background()); err == nil {
		t.Error("expected Ping without credentials to fail")
	}
}

func TestBunnyTimeUnmarshal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2026-03-04T05:06:07.123"`, time.Date(2026, 3, 4, 5, 6, 7, 123000000, time.UTC)},
		{`"2026-03-04T05:06:07Z"`, time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)},
		{`null`, time.Time{}},
	}
	for _, tt := range tests {
		var bt BunnyTime
		if err := bt.UnmarshalJSON([]byte(tt.in)); err != nil {
			t.Fatalf("UnmarshalJSON(%s) failed: %v", tt.in, err)
		}
		if !bt.Time.Equal(tt.want) {
			t.Errorf("UnmarshalJSON(%s) = %v, want %v", tt.in, bt.Time, tt.want)
		}
	}

	var bt BunnyTime
	if err := bt.UnmarshalJSON([]byte(`"yesterday"`)); err == nil {
		t.Error("expected error for invalid timestamp")
	}
}
