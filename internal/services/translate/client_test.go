package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("translates fragments in order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/translate", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)

			var req translateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []string{"Hello", "Goodbye"}, req.Q)
			assert.Equal(t, "en", req.Source)
			assert.Equal(t, "es", req.Target)
			assert.Equal(t, "text", req.Format)
			assert.Equal(t, "test-key", req.APIKey)

			w.Write([]byte(`{"translatedText": ["Hola", "Adiós"]}`))
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"})

		results, err := client.TranslateBatch(ctx, []string{"Hello", "Goodbye"}, "en", "es")
		require.NoError(t, err)
		assert.Equal(t, []string{"Hola", "Adiós"}, results)
	})

	t.Run("empty input short-circuits without a request", func(t *testing.T) {
		client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
		results, err := client.TranslateBatch(ctx, nil, "en", "es")
		require.NoError(t, err)
		assert.Nil(t, results)
	})

	t.Run("missing languages are rejected", func(t *testing.T) {
		client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
		_, err := client.TranslateBatch(ctx, []string{"Hello"}, "", "es")
		assert.Error(t, err)
	})

	t.Run("400 maps to ErrUnsupportedLanguage", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL})
		_, err := client.TranslateBatch(ctx, []string{"Hello"}, "en", "xx")
		assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	})

	t.Run("count mismatch is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"translatedText": ["Hola"]}`))
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL})
		_, err := client.TranslateBatch(ctx, []string{"Hello", "Goodbye"}, "en", "es")
		assert.ErrorContains(t, err, "count mismatch")
	})

	t.Run("service-level error field", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"translatedText": [], "error": "quota exceeded"}`))
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL})
		_, err := client.TranslateBatch(ctx, []string{"Hello"}, "en", "es")
		assert.ErrorContains(t, err, "quota exceeded")
	})
}

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"translatedText": ["Bonjour"]}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})

	result, err := client.Translate(context.Background(), "Hello", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", result)
}
