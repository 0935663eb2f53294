package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/auth"
	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/domain"
	"github.com/YusSheamusKing/Telegram-Bot-Image-Generator/internal/service"
)

const (
	msgUnauthorized   = "Apologies, you lack the necessary authorization to utilize my services."
	msgAskPrompt      = "Please enter a prompt for the image generation:"
	msgAskCount       = "How many images would you like to generate? (1-4)"
	msgBadCountRange  = "Please enter a valid number between 1 and 4."
	msgBadCountParse  = "Invalid input. Please enter a number between 1 and 4."
	msgAskSize        = "Please select the preferred size for the image:"
	msgAskStyle       = "Please select a style for the image:"
	msgProcessing     = "Processing your request..."
	msgAskPrice       = "Do you want to set a price for this image? (yes/no)"
	msgPriceNotSet    = "Price not set. Returning to main menu."
	msgAskPriceAmount = "What price do you want to set? (in dollars)"
	msgBadPrice       = "Invalid input. Please enter a numeric value for the price."
	msgCanceled       = "The operation has been canceled. You can start again by typing /image."
	msgGalleryDone    = "Gallery has been regenerated."
	msgGalleryFailed  = "Gallery regeneration failed, check the logs."
)

var countKeyboard = [][]string{{"1", "2", "3", "4"}}

// Messenger delivers outbound conversation messages. Delivery is best-effort;
// the engine logs failures and moves on.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendKeyboard(chatID int64, text string, rows [][]string) error
	SendTextRemoveKeyboard(chatID int64, text string) error
	SendPhoto(chatID int64, path string) error
}

// GalleryRenderer rebuilds the static gallery on demand.
type GalleryRenderer interface {
	Render() error
}

// session wraps one conversation with its serialization lock. Messages for
// the same chat are handled strictly one at a time; distinct chats run in
// parallel.
type session struct {
	mu   sync.Mutex
	conv domain.Conversation
}

// Engine drives the multi-step image request conversation.
type Engine struct {
	gate    *auth.Gate
	gen     domain.Generator
	rec     domain.Recorder
	msg     Messenger
	users   domain.UserStore
	gallery GalleryRenderer
	log     zerolog.Logger

	mu       sync.Mutex
	sessions map[int64]*session
}

// New creates a conversation engine. users and gallery may be nil when the
// corresponding collaborator is not configured.
func New(gate *auth.Gate, gen domain.Generator, rec domain.Recorder, msg Messenger, users domain.UserStore, gallery GalleryRenderer, log zerolog.Logger) *Engine {
	return &Engine{
		gate:     gate,
		gen:      gen,
		rec:      rec,
		msg:      msg,
		users:    users,
		gallery:  gallery,
		log:      log.With().Str("component", "engine").Logger(),
		sessions: make(map[int64]*session),
	}
}

// HandleStart greets the user, persists their identity and reports whether
// they are authorized.
func (e *Engine) HandleStart(ctx context.Context, chatID, userID int64, username string) {
	if e.users != nil {
		if err := e.users.SaveUser(ctx, userID, username); err != nil {
			e.log.Error().Err(err).Int64("telegram_id", userID).Msg("failed to save user")
		}
	}

	if !e.gate.IsUser(userID) {
		e.send(chatID, msgUnauthorized)
		return
	}
	greeting := fmt.Sprintf(
		"🌸 Greetings %s, I'm a stability-powered Telegram bot. Use the /image command to start generating an image. "+
			"You can type /cancel at any point to stop the process.", username)
	e.send(chatID, greeting)
}

// HandleImage is the conversation entry point. Unauthorized identities are
// rejected without a session being created.
func (e *Engine) HandleImage(ctx context.Context, chatID, userID int64, username string) {
	if !e.gate.IsUser(userID) {
		e.send(chatID, msgUnauthorized)
		return
	}

	s := &session{conv: domain.Conversation{
		State:      domain.StateAwaitingPrompt,
		Username:   username,
		TelegramID: userID,
	}}

	e.mu.Lock()
	e.sessions[chatID] = s
	e.mu.Unlock()

	e.send(chatID, msgAskPrompt)
}

// HandleCancel terminates the conversation from any state, discarding the
// accumulated fields.
func (e *Engine) HandleCancel(ctx context.Context, chatID int64) {
	s := e.lookup(chatID)
	if s != nil {
		s.mu.Lock()
		e.terminate(chatID)
		s.mu.Unlock()
	}
	e.send(chatID, msgCanceled)
}

// HandleGallery rebuilds the static gallery; admin only.
func (e *Engine) HandleGallery(ctx context.Context, chatID, userID int64) {
	if !e.gate.IsAdmin(userID) {
		e.send(chatID, msgUnauthorized)
		return
	}
	if e.gallery == nil {
		return
	}
	if err := e.gallery.Render(); err != nil {
		e.log.Error().Err(err).Msg("gallery rebuild failed")
		e.send(chatID, msgGalleryFailed)
		return
	}
	e.send(chatID, msgGalleryDone)
}

// HandleText feeds one inbound message into the conversation's current state.
// Text without an active conversation is ignored.
func (e *Engine) HandleText(ctx context.Context, chatID int64, text string) {
	s := e.lookup(chatID)
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.conv.State {
	case domain.StateAwaitingPrompt:
		s.conv.Prompt = text
		s.conv.State = domain.StateAwaitingCount
		e.sendKeyboard(chatID, msgAskCount, countKeyboard)

	case domain.StateAwaitingCount:
		count, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			e.send(chatID, msgBadCountParse)
			return
		}
		if count < 1 || count > 4 {
			e.send(chatID, msgBadCountRange)
			return
		}
		s.conv.Count = count
		s.conv.State = domain.StateAwaitingSize
		e.sendKeyboard(chatID, msgAskSize, service.SizeTokens)

	case domain.StateAwaitingSize:
		s.conv.Size = text
		s.conv.State = domain.StateAwaitingStyle
		e.sendKeyboard(chatID, msgAskStyle, service.StyleTokens)

	case domain.StateAwaitingStyle:
		s.conv.Style = text
		e.runGeneration(ctx, chatID, &s.conv)
		s.conv.State = domain.StateAwaitingPriceDecision
		e.send(chatID, msgAskPrice)

	case domain.StateAwaitingPriceDecision:
		if strings.EqualFold(strings.TrimSpace(text), "yes") {
			s.conv.State = domain.StateAwaitingPrice
			e.send(chatID, msgAskPriceAmount)
			return
		}
		e.terminate(chatID)
		e.send(chatID, msgPriceNotSet)

	case domain.StateAwaitingPrice:
		price, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			e.send(chatID, msgBadPrice)
			return
		}
		if s.conv.LastArtifact != "" {
			if err := e.rec.AmendPrice(s.conv.LastArtifact, price); err != nil {
				e.log.Error().Err(err).Str("artifact", s.conv.LastArtifact).Msg("failed to amend price")
			}
		}
		e.terminate(chatID)
		e.send(chatID, fmt.Sprintf("Price set to $%s. Returning to main menu.", strconv.FormatFloat(price, 'f', -1, 64)))
	}
}

// runGeneration performs the synchronous generation loop. Provider failures
// are isolated per image: the failed iteration is logged and skipped, the
// loop continues.
func (e *Engine) runGeneration(ctx context.Context, chatID int64, conv *domain.Conversation) {
	e.sendRemoveKeyboard(chatID, msgProcessing)

	spec := domain.GenerationSpec{
		Prompt: conv.Prompt,
		Style:  conv.Style,
		Size:   conv.Size,
	}

	for i := 0; i < conv.Count; i++ {
		artifact, err := e.gen.Generate(ctx, spec)
		if err != nil {
			e.log.Error().Err(err).Int("iteration", i+1).Int64("chat_id", chatID).Msg("image generation failed")
			continue
		}

		rec := domain.SidecarRecord{
			Prompt:     conv.Prompt,
			Style:      conv.Style,
			Size:       conv.Size,
			User:       conv.Username,
			TelegramID: conv.TelegramID,
		}
		if err := e.rec.Record(artifact.Path, rec); err != nil {
			e.log.Error().Err(err).Str("artifact", artifact.Path).Msg("failed to write sidecar")
		}

		if err := e.msg.SendPhoto(chatID, artifact.Path); err != nil {
			e.log.Error().Err(err).Str("artifact", artifact.Path).Msg("failed to send photo")
		}
		conv.LastArtifact = artifact.Path
	}
}

func (e *Engine) lookup(chatID int64) *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[chatID]
}

func (e *Engine) terminate(chatID int64) {
	e.mu.Lock()
	delete(e.sessions, chatID)
	e.mu.Unlock()
}

func (e *Engine) send(chatID int64, text string) {
	if err := e.msg.SendText(chatID, text); err != nil {
		e.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (e *Engine) sendKeyboard(chatID int64, text string, rows [][]string) {
	if err := e.msg.SendKeyboard(chatID, text, rows); err != nil {
		e.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send keyboard")
	}
}

func (e *Engine) sendRemoveKeyboard(chatID int64, text string) {
	if err := e.msg.SendTextRemoveKeyboard(chatID, text); err != nil {
		e.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}
