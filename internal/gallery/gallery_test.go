package gallery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/domain"
	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/metadata"
)

func TestRenderBuildsGalleryFromSidecars(t *testing.T) {
	dir := t.TempDir()
	imageDir := filepath.Join(dir, "image")
	require.NoError(t, os.MkdirAll(imageDir, 0o755))
	output := filepath.Join(dir, "index.html")

	rec := metadata.NewRecorder(zerolog.Nop())

	priced := filepath.Join(imageDir, "txt2img_1.png")
	require.NoError(t, os.WriteFile(priced, []byte("img"), 0o644))
	require.NoError(t, rec.Record(priced, domain.SidecarRecord{
		Prompt:     "a red fox",
		Style:      "anime",
		Size:       "square",
		User:       "alice",
		TelegramID: 100,
	}))
	require.NoError(t, rec.AmendPrice(priced, 9.99))

	unpriced := filepath.Join(imageDir, "txt2img_2.png")
	require.NoError(t, os.WriteFile(unpriced, []byte("img"), 0o644))
	require.NoError(t, rec.Record(unpriced, domain.SidecarRecord{
		Prompt: "a blue heron",
		Style:  "None",
		Size:   "portrait",
		User:   "bob",
	}))

	// Artifact with no sidecar at all.
	orphan := filepath.Join(imageDir, "txt2img_3.png")
	require.NoError(t, os.WriteFile(orphan, []byte("img"), 0o644))

	renderer := NewRenderer(imageDir, output, zerolog.Nop())
	require.NoError(t, renderer.Render())

	html, err := os.ReadFile(output)
	require.NoError(t, err)
	page := string(html)

	assert.Contains(t, page, "a red fox")
	assert.Contains(t, page, "$9.99")
	assert.Contains(t, page, "a blue heron")
	assert.Contains(t, page, "Not for sale")
	assert.Contains(t, page, "No prompt available")
	assert.Contains(t, page, "txt2img_3.png")
}

func TestRenderEscapesMetadata(t *testing.T) {
	dir := t.TempDir()
	imageDir := filepath.Join(dir, "image")
	require.NoError(t, os.MkdirAll(imageDir, 0o755))
	output := filepath.Join(dir, "index.html")

	rec := metadata.NewRecorder(zerolog.Nop())
	artifact := filepath.Join(imageDir, "txt2img_1.png")
	require.NoError(t, os.WriteFile(artifact, []byte("img"), 0o644))
	require.NoError(t, rec.Record(artifact, domain.SidecarRecord{
		Prompt: `<script>alert("x")</script>`,
		User:   "alice",
	}))

	renderer := NewRenderer(imageDir, output, zerolog.Nop())
	require.NoError(t, renderer.Render())

	html, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>alert")
}

func TestRenderMissingDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	renderer := NewRenderer(filepath.Join(dir, "absent"), filepath.Join(dir, "index.html"), zerolog.Nop())
	assert.Error(t, renderer.Render())
}
