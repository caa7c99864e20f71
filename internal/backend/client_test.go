// Package backend tests document the expected behavior of the platform client.
//
// Test requirements (this file serves as documentation):
// - Client fetches a category feed in server order
// - Mutating calls require a bearer credential
// - Save and share return authoritative counts
// - Client maps rejected calls to typed errors
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_FetchFeed(t *testing.T) {
	mockResponse := []map[string]interface{}{
		{
			"_id":       "c1",
			"title":     "First",
			"desc":      "first clip",
			"videoUrl":  "https://cdn.example.com/c1.mp4",
			"imgUrl":    "https://cdn.example.com/c1.jpg",
			"likes":     []string{"u1", "u2"},
			"dislikes":  []string{"u3"},
			"share":     []string{"u1"},
			"views":     12,
			"createdAt": "2024-01-01T00:00:00Z",
		},
		{
			"_id":          "c2",
			"title":        "Second",
			"videoUrl":     "https://cdn.example.com/c2.mp4",
			"savedByCount": 4,
			"shareCount":   7,
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/videos/type/shorts" {
			t.Errorf("expected /videos/type/shorts, got %q", r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("every request should carry a request id")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(mockResponse)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	clips, err := client.FetchFeed(context.Background(), "shorts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(clips))
	}

	first := clips[0]
	if first.ID != "c1" || first.Title != "First" || first.Description != "first clip" {
		t.Errorf("unexpected first clip: %+v", first)
	}
	if first.MediaURL != "https://cdn.example.com/c1.mp4" || first.ThumbnailURL != "https://cdn.example.com/c1.jpg" {
		t.Errorf("unexpected locators: %+v", first)
	}
	if first.Likes() != 2 || len(first.DislikedBy) != 1 {
		t.Errorf("expected 2 likes and 1 dislike, got %d/%d", first.Likes(), len(first.DislikedBy))
	}
	if first.ShareCount != 1 {
		t.Errorf("share list should count as 1 share, got %d", first.ShareCount)
	}
	if first.Views != 12 || first.CreatedAt.IsZero() {
		t.Errorf("expected views and creation time, got %+v", first)
	}

	second := clips[1]
	if second.SavedByCount != 4 || second.ShareCount != 7 {
		t.Errorf("expected explicit counts 4/7, got %d/%d", second.SavedByCount, second.ShareCount)
	}
	if second.LikedBy == nil || second.DislikedBy == nil {
		t.Error("missing reaction lists should decode as empty sets")
	}
}

func TestClient_ToggleLike_SendsBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/users/like/c1" {
			t.Errorf("expected PUT /users/like/c1, got %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer credential, got %q", got)
		}
		if got := r.Header.Get("token"); got != "Bearer secret" {
			t.Errorf("expected legacy token header, got %q", got)
		}
		_ = json.NewEncoder(w).Encode("The video has been liked.")
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithToken("secret"))

	state, err := client.ToggleLike(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != nil {
		t.Errorf("plain status reply should carry no reaction state, got %+v", state)
	}
}

func TestClient_ToggleDislike_ReturnsReactionLists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"_id":      "c1",
			"likes":    []string{},
			"dislikes": []string{"u1"},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithToken("secret"))

	state, err := client.ToggleDislike(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state == nil || len(state.DislikedBy) != 1 || state.DislikedBy[0] != "u1" {
		t.Errorf("expected authoritative dislike list, got %+v", state)
	}
}

func TestClient_Save_ReturnsAuthoritativeCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/save/c9" {
			t.Errorf("expected /users/save/c9, got %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"savedByCount": 41})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithToken("secret"))

	n, err := client.Save(context.Background(), "c9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 41 {
		t.Errorf("expected 41, got %d", n)
	}
}

func TestClient_Share_AcceptsObjectAndRawCount(t *testing.T) {
	payloads := map[string]string{
		"object": `{"shareCount": 8}`,
		"raw":    `8`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(payload))
			}))
			defer server.Close()

			client := NewClient(WithBaseURL(server.URL), WithToken("secret"))

			n, err := client.Share(context.Background(), "c1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n != 8 {
				t.Errorf("expected 8, got %d", n)
			}
		})
	}
}

func TestClient_MutationWithoutToken_IsUnauthenticated(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.Save(context.Background(), "c1")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if called {
		t.Error("no request should be sent without a credential")
	}
}

func TestClient_RecordView(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.Method + " " + r.URL.Path
		_, _ = w.Write([]byte(`"The view has been increased."`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	if err := client.RecordView(context.Background(), "c3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "PUT /videos/view/c3" {
		t.Errorf("expected PUT /videos/view/c3, got %q", path)
	}
}

func TestClient_FetchSaved(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/saved" {
			t.Errorf("expected /users/saved, got %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{{"_id": "c2", "title": "Saved"}})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithToken("secret"))

	clips, err := client.FetchSaved(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clips) != 1 || clips[0].ID != "c2" {
		t.Errorf("expected saved clip c2, got %+v", clips)
	}
}
