package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/domain"
)

// SidecarPath returns the metadata file path paired with an artifact.
func SidecarPath(artifactPath string) string {
	ext := filepath.Ext(artifactPath)
	return strings.TrimSuffix(artifactPath, ext) + ".txt"
}

// Recorder writes one sidecar text file per artifact.
type Recorder struct {
	log zerolog.Logger
}

// NewRecorder creates a sidecar metadata recorder.
func NewRecorder(log zerolog.Logger) *Recorder {
	return &Recorder{log: log.With().Str("component", "metadata").Logger()}
}

// Record writes the sidecar with fixed field order and the default price
// line. The sidecar directory is created when missing.
func (r *Recorder) Record(artifactPath string, rec domain.SidecarRecord) error {
	path := SidecarPath(artifactPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create sidecar directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Prompt: %s\n", rec.Prompt)
	fmt.Fprintf(&b, "Style: %s\n", rec.Style)
	fmt.Fprintf(&b, "Size: %s\n", rec.Size)
	fmt.Fprintf(&b, "User: %s\n", rec.User)
	fmt.Fprintf(&b, "Telegram ID: %d\n", rec.TelegramID)
	b.WriteString("Price: No\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write sidecar: %w", err)
	}
	return nil
}

// AmendPrice appends a price line to the artifact's sidecar. Earlier price
// lines are kept; readers take the last occurrence. A missing sidecar is a
// silent no-op.
func (r *Recorder) AmendPrice(artifactPath string, price float64) error {
	path := SidecarPath(artifactPath)
	if _, err := os.Stat(path); err != nil {
		r.log.Warn().Str("sidecar", path).Msg("price amendment skipped, sidecar missing")
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open sidecar: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "Price: %s\n", strconv.FormatFloat(price, 'f', -1, 64)); err != nil {
		return fmt.Errorf("failed to append price: %w", err)
	}
	return nil
}

// Parse reads a sidecar back into a record. Duplicate Price lines resolve to
// the last occurrence; the default "No" maps to an empty price.
func Parse(path string) (domain.SidecarRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SidecarRecord{}, err
	}

	var rec domain.SidecarRecord
	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case strings.HasPrefix(line, "Prompt:"):
			rec.Prompt = strings.TrimSpace(strings.TrimPrefix(line, "Prompt:"))
		case strings.HasPrefix(line, "Style:"):
			rec.Style = strings.TrimSpace(strings.TrimPrefix(line, "Style:"))
		case strings.HasPrefix(line, "Size:"):
			rec.Size = strings.TrimSpace(strings.TrimPrefix(line, "Size:"))
		case strings.HasPrefix(line, "User:"):
			rec.User = strings.TrimSpace(strings.TrimPrefix(line, "User:"))
		case strings.HasPrefix(line, "Telegram ID:"):
			id, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "Telegram ID:")), 10, 64)
			if err == nil {
				rec.TelegramID = id
			}
		case strings.HasPrefix(line, "Price:"):
			price := strings.TrimSpace(strings.TrimPrefix(line, "Price:"))
			if strings.EqualFold(price, "No") {
				rec.Price = ""
			} else {
				rec.Price = price
			}
		}
	}
	return rec, nil
}
