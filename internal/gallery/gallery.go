package gallery

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/metadata"
)

// Item is one gallery entry rendered from an artifact and its sidecar.
type Item struct {
	ImagePath    string
	FileName     string
	Prompt       string
	Style        string
	Size         string
	User         string
	PriceLabel   string
	NumericPrice float64
}

// Renderer builds the static HTML gallery from the artifact directory.
type Renderer struct {
	imageDir   string
	outputFile string
	log        zerolog.Logger
}

// NewRenderer creates a gallery renderer.
func NewRenderer(imageDir, outputFile string, log zerolog.Logger) *Renderer {
	return &Renderer{
		imageDir:   imageDir,
		outputFile: outputFile,
		log:        log.With().Str("component", "gallery").Logger(),
	}
}

// Render walks the artifact directory and writes the gallery page. Artifacts
// without a sidecar get placeholder metadata rather than being skipped.
func (r *Renderer) Render() error {
	entries, err := os.ReadDir(r.imageDir)
	if err != nil {
		return fmt.Errorf("failed to read image directory: %w", err)
	}

	var items []Item
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".png") {
			continue
		}
		items = append(items, r.buildItem(entry.Name()))
	}

	sort.Slice(items, func(i, j int) bool { return items[i].FileName < items[j].FileName })

	f, err := os.Create(r.outputFile)
	if err != nil {
		return fmt.Errorf("failed to create gallery file: %w", err)
	}
	if err := galleryTemplate.Execute(f, items); err != nil {
		f.Close()
		return fmt.Errorf("failed to render gallery: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	r.log.Info().Int("items", len(items)).Str("output", r.outputFile).Msg("gallery rendered")
	return nil
}

func (r *Renderer) buildItem(fileName string) Item {
	item := Item{
		ImagePath:  filepath.ToSlash(filepath.Join(r.imageDir, fileName)),
		FileName:   fileName,
		Prompt:     "No prompt available",
		Style:      "Unknown style",
		Size:       "Unknown size",
		User:       "Anonymous",
		PriceLabel: "Not for sale",
	}

	rec, err := metadata.Parse(metadata.SidecarPath(filepath.Join(r.imageDir, fileName)))
	if err != nil {
		return item
	}

	if rec.Prompt != "" {
		item.Prompt = rec.Prompt
	}
	if rec.Style != "" {
		item.Style = rec.Style
	}
	if rec.Size != "" {
		item.Size = rec.Size
	}
	if rec.User != "" {
		item.User = rec.User
	}
	if rec.Price != "" {
		item.PriceLabel = "$" + rec.Price
		if price, err := strconv.ParseFloat(rec.Price, 64); err == nil {
			item.NumericPrice = price
		}
	}
	return item
}

var galleryTemplate = template.Must(template.New("gallery").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Creative Image Gallery</title>
    <style>
        body { font-family: 'Arial', sans-serif; margin: 0; padding: 20px; background: linear-gradient(135deg, #f0f8ff, #e6e6fa); }
        .filter-container { display: flex; justify-content: center; align-items: center; margin-bottom: 30px; padding: 20px; background: linear-gradient(135deg, #ffffff, #f1f1f1); box-shadow: 0 4px 10px rgba(0, 0, 0, 0.1); border-radius: 20px; }
        .filter-container input { margin: 0 10px; padding: 12px 15px; border: 1px solid #ddd; border-radius: 30px; font-size: 14px; }
        .gallery { display: flex; flex-wrap: wrap; justify-content: center; }
        .gallery-item { margin: 15px; border: 2px solid #ddd; border-radius: 15px; overflow: hidden; background-color: #fff; box-shadow: 0 8px 15px rgba(0, 0, 0, 0.1); width: 300px; }
        .gallery-item img { width: 100%; height: auto; }
        .gallery-item p { margin: 10px; font-size: 14px; color: #444; text-align: center; }
        h1 { width: 100%; text-align: center; color: #4b0082; margin-bottom: 30px; }
        footer { text-align: center; margin-top: 30px; padding: 10px; background-color: #e6e6fa; border-top: 2px solid #ddd; color: #444; }
    </style>
    <script>
        function filterGallery() {
            const promptFilter = document.getElementById("prompt-filter").value.toLowerCase();
            const styleFilter = document.getElementById("style-filter").value.toLowerCase();
            const userFilter = document.getElementById("user-filter").value.toLowerCase();
            const priceFilter = parseFloat(document.getElementById("price-filter").value) || 0;
            document.querySelectorAll(".gallery-item").forEach(item => {
                const prompt = item.getAttribute("data-prompt").toLowerCase();
                const style = item.getAttribute("data-style").toLowerCase();
                const user = item.getAttribute("data-user").toLowerCase();
                const price = parseFloat(item.getAttribute("data-price")) || 0;
                const visible = prompt.includes(promptFilter) && style.includes(styleFilter) && user.includes(userFilter) && price >= priceFilter;
                item.style.display = visible ? "block" : "none";
            });
        }
    </script>
</head>
<body>
    <h1>🎨 Creative Image Gallery</h1>
    <div class="filter-container">
        <input type="text" id="prompt-filter" placeholder="🔍 Filter by Prompt" oninput="filterGallery()">
        <input type="text" id="style-filter" placeholder="🎨 Filter by Style" oninput="filterGallery()">
        <input type="text" id="user-filter" placeholder="👤 Filter by User" oninput="filterGallery()">
        <input type="number" id="price-filter" placeholder="💰 Minimum Price ($)" oninput="filterGallery()">
    </div>
    <div class="gallery">
{{- range . }}
        <div class="gallery-item" data-prompt="{{ .Prompt }}" data-style="{{ .Style }}" data-user="{{ .User }}" data-price="{{ .NumericPrice }}">
            <img src="{{ .ImagePath }}" alt="{{ .FileName }}">
            <p><strong>Prompt:</strong> {{ .Prompt }}</p>
            <p><strong>Style:</strong> {{ .Style }}</p>
            <p><strong>Size:</strong> {{ .Size }}</p>
            <p><strong>User:</strong> {{ .User }}</p>
            <p><strong>Price:</strong> {{ .PriceLabel }}</p>
        </div>
{{- end }}
    </div>
    <footer>
        <p>Powered by Your Creative Bot ✨</p>
    </footer>
</body>
</html>
`))
