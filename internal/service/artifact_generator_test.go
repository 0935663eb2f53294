package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/config"
	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/domain"
)

func newTestGenerator(t *testing.T, handler http.HandlerFunc) (*ArtifactGenerator, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	outputDir := filepath.Join(t.TempDir(), "image")
	cfg := &config.Config{
		StabilityAPIKey:       "test-key",
		OutputDir:             outputDir,
		WatermarkPath:         filepath.Join(t.TempDir(), "absent-logo.png"),
		WatermarkTransparency: 25,
		GenerationTimeout:     time.Second,
	}

	gen := NewArtifactGenerator(cfg, zerolog.Nop())
	gen.client.BaseURL = srv.URL
	return gen, outputDir
}

func artifactResponse(seed int64, payload []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"artifacts": []map[string]interface{}{
				{"seed": seed, "base64": base64.StdEncoding.EncodeToString(payload)},
			},
		})
	}
}

func TestGeneratePersistsArtifactUnderSeedPath(t *testing.T) {
	payload := []byte("png bytes")
	gen, outputDir := newTestGenerator(t, artifactResponse(777, payload))

	artifact, err := gen.Generate(context.Background(), domain.GenerationSpec{
		Prompt: "a red fox",
		Style:  domain.StyleNone,
		Size:   "square",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(777), artifact.Seed)
	assert.Equal(t, filepath.Join(outputDir, "txt2img_777.png"), artifact.Path)

	// The output directory did not exist before the call.
	data, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestGenerateRequestComposition(t *testing.T) {
	var got map[string]interface{}
	gen, _ := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		artifactResponse(1, []byte("x"))(w, r)
	})

	_, err := gen.Generate(context.Background(), domain.GenerationSpec{
		Prompt: "a red fox",
		Style:  "anime",
		Size:   "portrait",
	})
	require.NoError(t, err)

	assert.Equal(t, float64(1), got["samples"])
	assert.Equal(t, float64(50), got["steps"])
	assert.Equal(t, 5.5, got["cfg_scale"])
	assert.Equal(t, "anime", got["style_preset"])
	// portrait maps to height 1216, width 832.
	assert.Equal(t, float64(1216), got["height"])
	assert.Equal(t, float64(832), got["width"])

	prompts := got["text_prompts"].([]interface{})
	require.Len(t, prompts, 3)
	assert.Equal(t, "a red fox", prompts[0].(map[string]interface{})["text"])
	assert.Equal(t, float64(1), prompts[0].(map[string]interface{})["weight"])
	assert.Equal(t, 0.3, prompts[1].(map[string]interface{})["weight"])
	assert.Equal(t, float64(-1), prompts[2].(map[string]interface{})["weight"])
}

func TestGenerateStyleNoneOmitsPreset(t *testing.T) {
	var got map[string]interface{}
	gen, _ := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		artifactResponse(1, []byte("x"))(w, r)
	})

	_, err := gen.Generate(context.Background(), domain.GenerationSpec{
		Prompt: "p",
		Style:  domain.StyleNone,
		Size:   "square",
	})
	require.NoError(t, err)

	_, hasStyle := got["style_preset"]
	assert.False(t, hasStyle)
}

func TestGenerateUnknownSizeOmitsDimensions(t *testing.T) {
	var got map[string]interface{}
	gen, _ := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		artifactResponse(1, []byte("x"))(w, r)
	})

	_, err := gen.Generate(context.Background(), domain.GenerationSpec{
		Prompt: "p",
		Style:  domain.StyleNone,
		Size:   "gigantic",
	})
	require.NoError(t, err)

	_, hasHeight := got["height"]
	_, hasWidth := got["width"]
	assert.False(t, hasHeight)
	assert.False(t, hasWidth)
}

func TestGenerateProviderFailure(t *testing.T) {
	gen, outputDir := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := gen.Generate(context.Background(), domain.GenerationSpec{Prompt: "p", Style: domain.StyleNone})
	require.Error(t, err)

	// Nothing persisted on failure.
	_, statErr := os.Stat(outputDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateSameSeedOverwrites(t *testing.T) {
	payloads := [][]byte{[]byte("first"), []byte("second")}
	call := 0
	gen, outputDir := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		artifactResponse(42, payloads[call])(w, r)
		call++
	})

	spec := domain.GenerationSpec{Prompt: "p", Style: domain.StyleNone, Size: "square"}
	_, err := gen.Generate(context.Background(), spec)
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), spec)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outputDir, "txt2img_42.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}
