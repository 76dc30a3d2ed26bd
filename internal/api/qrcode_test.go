package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQR_HitsGenerateEndpoint(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(w, http.StatusOK, map[string]string{"result": "base64-png"})
	}))

	code, err := client.GenerateQR(context.Background(), "https://example.com/p1")
	require.NoError(t, err)
	assert.Equal(t, "/qrcode/generate", gotPath)
	assert.Equal(t, map[string]string{"text": "https://example.com/p1"}, gotBody)
	assert.Equal(t, "base64-png", code.Result)
}

func TestGenerateQRWithImage_HitsGenerateWithImageEndpoint(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(w, http.StatusOK, map[string]string{"result": "base64-png"})
	}))

	_, err := client.GenerateQRWithImage(context.Background(),
		"https://example.com/p1", "https://example.com/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "/qrcode/generate_with_image", gotPath)
	assert.Equal(t, "https://example.com/logo.png", gotBody["image"])
}
