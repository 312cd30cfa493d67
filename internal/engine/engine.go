// Package engine orchestrates one conversational turn: input validation,
// image capture, context assembly, provider dispatch under a deadline, and
// the degraded fallback path when the AI backend fails.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/parley-chat/parley/internal/chatstore"
	"github.com/parley-chat/parley/internal/config"
	"github.com/parley-chat/parley/internal/image"
	"github.com/parley-chat/parley/internal/llm"
	"github.com/parley-chat/parley/internal/objstore"
	"github.com/parley-chat/parley/internal/prompt"
	"github.com/parley-chat/parley/pkg/types"
)

var (
	// ErrInvalidInput is returned when a turn carries neither text nor image
	ErrInvalidInput = errors.New("message or image is required")

	// ErrStorage wraps persistence and object-storage failures. Nothing is
	// recorded for a turn whose input could not be captured.
	ErrStorage = errors.New("storage failure")
)

const (
	// fallback replies persisted on provider failure; wording differs by
	// modality so the user sees their image was at least received
	fallbackText      = "I'm having trouble responding right now. Please try again in a moment."
	fallbackWithImage = "I can see you've shared an image, but I'm having trouble analyzing it right now. Please try again in a moment."

	// warningUnavailable marks a degraded turn in the result
	warningUnavailable = "AI service temporarily unavailable"

	// defaultImagePrompt stands in for user text on image-only turns
	defaultImagePrompt = "Please analyze this image"

	// historyFetchLimit bounds how much history is read per turn; the
	// builder narrows it further to its window
	historyFetchLimit = 50
)

// TurnInput is one inbound user turn. ConversationID empty means a new
// conversation; ImageData empty means a text-only turn.
type TurnInput struct {
	ConversationID string
	UserText       string

	ImageData []byte
	ImageMIME string
	ImageName string

	// ImageURL references a previously stored image instead of a fresh
	// upload. The image is fetched for the provider but not re-stored.
	ImageURL string
}

func (in *TurnInput) hasImage() bool {
	return len(in.ImageData) > 0 || in.ImageURL != ""
}

// Engine coordinates the collaborators for turn processing. All
// dependencies are injected; the engine holds no global client state.
type Engine struct {
	store      chatstore.Store
	objects    objstore.Store
	normalizer *image.Normalizer
	builder    *prompt.Builder
	providers  []llm.Provider

	defaultProvider llm.ProviderType
	requestTimeout  time.Duration
	summaryCap      int
	temperature     float64
	maxTokens       int
	verbose         bool
}

// New creates an engine from configuration and injected collaborators
func New(cfg *config.Config, store chatstore.Store, objects objstore.Store, providers []llm.Provider) *Engine {
	return &Engine{
		store:           store,
		objects:         objects,
		normalizer:      image.NewNormalizer(cfg.FetchTimeout),
		builder:         prompt.NewBuilder(cfg.HistoryWindow, cfg.MessageTruncate),
		providers:       providers,
		defaultProvider: llm.ProviderType(cfg.DefaultProvider),
		requestTimeout:  cfg.RequestTimeout,
		summaryCap:      cfg.SummaryCap,
		temperature:     cfg.Temperature,
		maxTokens:       cfg.MaxOutputTokens,
		verbose:         cfg.Verbose,
	}
}

// ProcessTurn runs one turn for the given user. It returns a hard error only
// for invalid input, an unknown conversation, or a storage failure; provider
// failures surface as a degraded-but-successful result instead.
func (e *Engine) ProcessTurn(ctx context.Context, userID string, in *TurnInput) (*types.TurnResult, error) {
	if in.UserText == "" && !in.hasImage() {
		return nil, ErrInvalidInput
	}

	// Capture the image before recording anything
	var img *image.Image
	var imageURL string
	switch {
	case len(in.ImageData) > 0:
		var err error
		img, err = e.normalizer.FromBytes(in.ImageData, in.ImageMIME, in.ImageName)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		imageURL, err = e.objects.Store(ctx, img.Data, img.MIMEType, userID)
		if err != nil {
			return nil, fmt.Errorf("%w: storing image: %v", ErrStorage, err)
		}
	case in.ImageURL != "":
		var err error
		img, err = e.normalizer.FromURL(ctx, in.ImageURL)
		if err != nil {
			// image.ErrFetch passes through so callers can treat a bad
			// reference as client error
			return nil, err
		}
		imageURL = in.ImageURL
	}

	conv, err := e.resolveConversation(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	userContent := in.UserText
	if userContent == "" {
		userContent = defaultImagePrompt
	}

	userMsg, err := e.store.AddMessage(ctx, conv.ID, userID, userContent, types.RoleUser, imageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: recording user message: %v", ErrStorage, err)
	}

	history, err := e.store.ListRecentMessages(ctx, conv.ID, userID, historyFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: loading history: %v", ErrStorage, err)
	}

	system := e.builder.Build(conv.Context, history, userMsg.ID, in.hasImage())

	text, genErr := e.dispatch(ctx, system, userContent, img)
	if genErr != nil {
		// A caller abort is not a provider failure; stop without recording
		// an assistant message.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return e.degrade(ctx, conv, userID, in.hasImage(), genErr)
	}

	assistantMsg, err := e.store.AddMessage(ctx, conv.ID, userID, text, types.RoleAssistant, "")
	if err != nil {
		return nil, fmt.Errorf("%w: recording assistant message: %v", ErrStorage, err)
	}

	// Fold the exchange into the rolling summary. The exchange itself is
	// already durable, so a summary write failure downgrades to a log line
	// rather than failing the turn.
	newSummary := prompt.UpdateSummary(conv.Context, in.UserText, text, e.summaryCap)
	if err := e.store.UpdateContext(ctx, conv.ID, newSummary, userID); err != nil {
		log.Printf("updating conversation context for %s: %v", conv.ID, err)
	} else {
		conv.Context = newSummary
	}

	return &types.TurnResult{
		Success:      true,
		Message:      assistantMsg,
		Conversation: conv,
	}, nil
}

// resolveConversation loads the addressed conversation or creates a new one
// titled from the first input
func (e *Engine) resolveConversation(ctx context.Context, userID string, in *TurnInput) (*types.Conversation, error) {
	if in.ConversationID != "" {
		conv, err := e.store.GetConversation(ctx, in.ConversationID, userID)
		if err != nil {
			if errors.Is(err, chatstore.ErrConversationNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: loading conversation: %v", ErrStorage, err)
		}
		return conv, nil
	}

	titleSource := in.UserText
	if titleSource == "" {
		titleSource = "Image Analysis"
	}
	conv, err := e.store.CreateConversation(ctx, userID, DeriveTitle(titleSource))
	if err != nil {
		return nil, fmt.Errorf("%w: creating conversation: %v", ErrStorage, err)
	}
	return conv, nil
}

// dispatch selects an adapter by modality and runs one generation call under
// the operation timeout
func (e *Engine) dispatch(ctx context.Context, system, userText string, img *image.Image) (string, error) {
	adapter := e.selectProvider(img != nil)
	if adapter == nil {
		return "", fmt.Errorf("no provider available for this turn")
	}

	genCtx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	start := time.Now()
	text, err := adapter.Generate(genCtx, &llm.GenerateRequest{
		System:      system,
		UserText:    userText,
		Image:       img,
		Temperature: &e.temperature,
		MaxTokens:   e.maxTokens,
	})
	if e.verbose {
		log.Printf("provider %s took %v (err=%v)", adapter.Name(), time.Since(start), err)
	}
	return text, err
}

// selectProvider picks a vision-capable adapter for image turns and the
// configured default otherwise
func (e *Engine) selectProvider(needsVision bool) llm.Provider {
	if needsVision {
		for _, p := range e.providers {
			if p.SupportsImages() {
				return p
			}
		}
		return nil
	}

	for _, p := range e.providers {
		if p.Name() == e.defaultProvider {
			return p
		}
	}
	if len(e.providers) > 0 {
		return e.providers[0]
	}
	return nil
}

// degrade persists a canned assistant reply and reports the turn as
// successful with a warning. The rolling summary is left untouched so a
// non-answer never poisons future context.
func (e *Engine) degrade(ctx context.Context, conv *types.Conversation, userID string, hadImage bool, genErr error) (*types.TurnResult, error) {
	log.Printf("provider failure on conversation %s: %v", conv.ID, genErr)

	fallback := fallbackText
	if hadImage {
		fallback = fallbackWithImage
	}

	msg, err := e.store.AddMessage(ctx, conv.ID, userID, fallback, types.RoleAssistant, "")
	if err != nil {
		return nil, fmt.Errorf("%w: recording fallback message: %v", ErrStorage, err)
	}

	return &types.TurnResult{
		Success:      true,
		Message:      msg,
		Conversation: conv,
		Warning:      warningUnavailable,
	}, nil
}
