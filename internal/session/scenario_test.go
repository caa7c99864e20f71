package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipdeck/clipdeck/internal/backend"
	"github.com/clipdeck/clipdeck/internal/engagement"
	"github.com/clipdeck/clipdeck/internal/playback"
)

// TestScenario_LikeRolledBackAfterServerFailure walks through loading a feed,
// moving to the second clip and liking it while the backend is failing.
func TestScenario_LikeRolledBackAfterServerFailure(t *testing.T) {
	release := make(chan struct{})
	var likeCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/videos/type/shorts":
			_ = json.NewEncoder(w).Encode([]map[string]interface{}{
				{"_id": "clip0", "title": "zero", "videoUrl": "https://cdn.example.com/0.mp4"},
				{"_id": "clip1", "title": "one", "videoUrl": "https://cdn.example.com/1.mp4", "likes": []string{"u7"}},
				{"_id": "clip2", "title": "two", "videoUrl": "https://cdn.example.com/2.mp4"},
			})
		case r.URL.Path == "/users/saved":
			_, _ = w.Write([]byte(`[]`))
		case strings.HasPrefix(r.URL.Path, "/videos/view/"):
			_, _ = w.Write([]byte(`"ok"`))
		case r.URL.Path == "/users/like/clip1":
			likeCalls.Add(1)
			<-release
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "database unavailable"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := backend.NewClient(backend.WithBaseURL(server.URL), backend.WithToken("token"))
	s := New(client, User{ID: "u1"}, WithMediaFactory(virtualMedia))
	defer s.Close()

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, playback.Playing, s.SlotState("clip0"))

	require.NoError(t, s.Next())
	assert.Equal(t, playback.Paused, s.SlotState("clip0"))
	assert.Equal(t, playback.Playing, s.SlotState("clip1"))
	assert.Equal(t, 1, s.State().Index)

	op, err := s.Like(context.Background())
	require.NoError(t, err)

	v := s.State()
	assert.True(t, v.Liked(), "like is visible before the server answers")
	assert.Equal(t, 2, v.Engagement.Likes())

	_, err = s.Like(context.Background())
	assert.ErrorIs(t, err, engagement.ErrOperationInProgress)

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = op.Wait(ctx)

	var rejected *engagement.ServerRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "database unavailable", rejected.Message)

	v = s.State()
	assert.False(t, v.Liked(), "like is rolled back")
	assert.Equal(t, []string{"u7"}, v.Engagement.LikedBy)
	assert.Equal(t, int32(1), likeCalls.Load(), "exactly one network call")
}
