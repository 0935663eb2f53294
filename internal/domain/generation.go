package domain

import "context"

// StyleNone is the literal style token meaning "no style preset".
const StyleNone = "None"

// GenerationSpec carries the user-chosen parameters for one provider call.
type GenerationSpec struct {
	Prompt string
	Style  string
	Size   string
}

// Artifact is a generated image persisted on disk.
type Artifact struct {
	Path string
	Seed int64
}

// Generator produces one watermarked artifact per call.
type Generator interface {
	Generate(ctx context.Context, spec GenerationSpec) (*Artifact, error)
}

// SidecarRecord is the metadata written alongside each artifact. Price is
// empty until the user sets one; readers take the last occurrence when the
// sidecar holds more than one price line.
type SidecarRecord struct {
	Prompt     string
	Style      string
	Size       string
	User       string
	TelegramID int64
	Price      string
}

// Recorder persists sidecar metadata per artifact.
type Recorder interface {
	Record(artifactPath string, rec SidecarRecord) error
	AmendPrice(artifactPath string, price float64) error
}

// UserStore persists Telegram identities seen by the bot.
type UserStore interface {
	SaveUser(ctx context.Context, telegramID int64, username string) error
}
