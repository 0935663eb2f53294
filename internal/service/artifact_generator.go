package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/config"
	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/domain"
	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/infrastructure/stability"
	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/watermark"
)

const (
	samples  = 1
	steps    = 50
	cfgScale = 5.5

	reinforcementWeight = 0.3
	negativeWeight      = -1

	positiveReinforcement = "The artwork showcases excellent anatomy with a clear, complete, and appealing " +
		"depiction. It has well-proportioned and polished details, presenting a unique " +
		"and balanced composition. The high-resolution image is undamaged and well-formed, " +
		"conveying a healthy and natural appearance without mutations or blemishes. The " +
		"positive aspect of the artwork is highlighted by its skillful framing and realistic " +
		"features, including a well-drawn face and hands. The absence of signatures contributes " +
		"to its seamless and authentic quality, and the depiction of straight fingers adds to " +
		"its overall attractiveness."

	negativeReinforcement = "2 faces, 2 heads, bad anatomy, blurry, cloned face, cropped image, cut-off, deformed hands, " +
		"disconnected limbs, disgusting, disfigured, draft, duplicate artifact, extra fingers, extra limb, " +
		"floating limbs, gloss proportions, grain, gross proportions, long body, long neck, low-res, mangled, " +
		"malformed, malformed hands, missing arms, missing limb, morbid, mutation, mutated, mutated hands, " +
		"mutilated, mutilated hands, multiple heads, negative aspect, out of frame, poorly drawn, poorly drawn " +
		"face, poorly drawn hands, signatures, surreal, tiling, twisted fingers, ugly"
)

// sizeDimensions maps size tokens to (height, width). Unknown tokens are left
// unmapped so the provider applies its own default dimensions.
var sizeDimensions = map[string][2]int{
	"square-p":   {1152, 896},
	"portrait":   {1216, 832},
	"highscreen": {1344, 768},
	"panorama-p": {1536, 640},
	"square":     {1024, 1024},
	"panorama":   {640, 1536},
	"square-l":   {896, 1152},
	"landscape":  {832, 1216},
	"widescreen": {768, 1344},
}

// SizeTokens lists the supported size vocabulary in keyboard order.
var SizeTokens = [][]string{
	{"landscape", "widescreen", "panorama"},
	{"square-l", "square", "square-p"},
	{"portrait", "highscreen", "panorama-p"},
}

// StyleTokens lists the supported style presets in keyboard order.
var StyleTokens = [][]string{
	{"photographic", "enhance", "anime"},
	{"digital-art", "comic-book", "fantasy-art"},
	{"line-art", "analog-film", "neon-punk"},
	{"isometric", "low-poly", "origami"},
	{"modeling-compound", "cinematic", "3d-model"},
	{"pixel-art", "tile-texture", domain.StyleNone},
}

// ArtifactGenerator invokes the synthesis provider, persists the raw image and
// watermarks it in place.
type ArtifactGenerator struct {
	client     *stability.Client
	compositor *watermark.Compositor
	outputDir  string
	log        zerolog.Logger
}

// NewArtifactGenerator creates the generator from configuration.
func NewArtifactGenerator(cfg *config.Config, log zerolog.Logger) *ArtifactGenerator {
	return &ArtifactGenerator{
		client: stability.NewClient(cfg.StabilityAPIKey, cfg.GenerationTimeout),
		compositor: &watermark.Compositor{
			WatermarkPath: cfg.WatermarkPath,
			Transparency:  cfg.WatermarkTransparency,
		},
		outputDir: cfg.OutputDir,
		log:       log.With().Str("component", "generator").Logger(),
	}
}

// Generate produces one watermarked artifact for the given spec.
func (g *ArtifactGenerator) Generate(ctx context.Context, spec domain.GenerationSpec) (*domain.Artifact, error) {
	req := stability.TextToImageRequest{
		Samples:  samples,
		Steps:    steps,
		CfgScale: cfgScale,
		TextPrompts: []stability.TextPrompt{
			{Text: spec.Prompt, Weight: 1},
			{Text: positiveReinforcement, Weight: reinforcementWeight},
			{Text: negativeReinforcement, Weight: negativeWeight},
		},
	}

	if dims, ok := sizeDimensions[spec.Size]; ok {
		req.Height, req.Width = dims[0], dims[1]
	}
	if spec.Style != domain.StyleNone {
		req.StylePreset = spec.Style
	}

	result, err := g.client.TextToImage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(g.outputDir, fmt.Sprintf("txt2img_%d.png", result.Seed))
	if err := os.WriteFile(path, result.Image, 0o644); err != nil {
		return nil, fmt.Errorf("failed to persist artifact: %w", err)
	}

	outcome := g.compositor.Apply(path, path)
	if !outcome.Composited {
		g.log.Debug().Str("artifact", path).AnErr("reason", outcome.Err).Msg("watermark passed through")
	}

	return &domain.Artifact{Path: path, Seed: result.Seed}, nil
}
