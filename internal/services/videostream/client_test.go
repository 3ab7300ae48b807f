package videostream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(Config{
		BaseURL:       server.URL,
		StreamBaseURL: server.URL,
		APIToken:      "test-token",
	})
	return client, server
}

func TestGetAsset(t *testing.T) {
	ctx := context.Background()

	t.Run("unwraps the data envelope", func(t *testing.T) {
		client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/assets/asset-1", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"data": {
					"id": "asset-1",
					"status": "ready",
					"duration": 93.5,
					"playback_ids": [{"id": "pb-1", "policy": "public"}],
					"tracks": [
						{"id": "trk-vid", "type": "video"},
						{"id": "trk-sub", "type": "text", "text_type": "subtitles", "text_source": "generated_vod", "language_code": "en", "status": "ready"}
					]
				}
			}`))
		}))
		defer server.Close()

		asset, err := client.GetAsset(ctx, "asset-1")
		require.NoError(t, err)

		assert.Equal(t, "asset-1", asset.ID)
		assert.Equal(t, "ready", asset.Status)
		assert.InDelta(t, 93.5, asset.Duration, 0.001)
		require.Len(t, asset.PlaybackIDs, 1)
		assert.Equal(t, "pb-1", asset.PlaybackIDs[0].ID)
		assert.Len(t, asset.Tracks, 2)
	})

	t.Run("404 maps to ErrAssetNotFound", func(t *testing.T) {
		client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := client.GetAsset(ctx, "missing")
		assert.ErrorIs(t, err, ErrAssetNotFound)
	})

	t.Run("empty asset ID is rejected locally", func(t *testing.T) {
		client := NewClient(Config{})
		_, err := client.GetAsset(ctx, "")
		assert.Error(t, err)
	})
}

func TestFindAutoTextTrack(t *testing.T) {
	t.Run("picks the generated subtitle track", func(t *testing.T) {
		asset := &Asset{
			Tracks: []Track{
				{ID: "trk-vid", Type: "video"},
				{ID: "trk-manual", Type: "text", TextType: "subtitles", TextSource: "uploaded"},
				{ID: "trk-auto", Type: "text", TextType: "subtitles", TextSource: "generated_vod", LanguageCode: "en"},
			},
		}

		track, err := FindAutoTextTrack(asset)
		require.NoError(t, err)
		assert.Equal(t, "trk-auto", track.ID)
	})

	t.Run("missing track", func(t *testing.T) {
		asset := &Asset{Tracks: []Track{{ID: "trk-vid", Type: "video"}}}
		_, err := FindAutoTextTrack(asset)
		assert.ErrorIs(t, err, ErrTrackNotFound)
	})
}

func TestCreateTextTrack(t *testing.T) {
	ctx := context.Background()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/assets/asset-1/tracks", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"data": {"id": "trk-9", "type": "text", "text_type": "subtitles", "language_code": "es", "status": "preparing"}}`))
	}))
	defer server.Close()

	track, err := client.CreateTextTrack(ctx, "asset-1", TextTrackParams{
		URL:          "https://cdn.example.com/es.vtt",
		LanguageCode: "es",
		Name:         "Español",
	})
	require.NoError(t, err)
	assert.Equal(t, "trk-9", track.ID)
}

func TestDownloadTextTrack(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches the VTT body", func(t *testing.T) {
		vtt := "WEBVTT\n\n00:00:00.000 --> 00:00:02.000\nHello\n"
		client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/pb-1/text/trk-1.vtt", r.URL.Path)
			w.Write([]byte(vtt))
		}))
		defer server.Close()

		data, err := client.DownloadTextTrack(ctx, "pb-1", "trk-1")
		require.NoError(t, err)
		assert.Equal(t, vtt, string(data))
	})

	t.Run("404 maps to ErrTrackNotFound", func(t *testing.T) {
		client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := client.DownloadTextTrack(ctx, "pb-1", "missing")
		assert.ErrorIs(t, err, ErrTrackNotFound)
	})
}

func TestCreateLiveStream(t *testing.T) {
	ctx := context.Background()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/live-streams", r.URL.Path)
		w.Write([]byte(`{"data": {"id": "ls-1", "status": "idle", "stream_key": "sk-secret", "playback_ids": [{"id": "pb-live", "policy": "public"}]}}`))
	}))
	defer server.Close()

	stream, err := client.CreateLiveStream(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ls-1", stream.ID)
	assert.Equal(t, "sk-secret", stream.StreamKey)
	require.Len(t, stream.PlaybackIDs, 1)
}
