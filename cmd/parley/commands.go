package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parley-chat/parley/internal/chatstore"
	"github.com/parley-chat/parley/internal/db"
	"github.com/parley-chat/parley/internal/engine"
	"github.com/parley-chat/parley/internal/image"
	"github.com/parley-chat/parley/internal/llm"
	"github.com/parley-chat/parley/internal/llm/provider"
	"github.com/parley-chat/parley/internal/objstore"
	"github.com/parley-chat/parley/internal/server"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and storage directories",
		Long: `Create the SQLite database and image storage directory.

Serve and chat create these on demand; init is for provisioning them
ahead of time, for example in a container build step.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if _, err := objstore.NewFSStore(cfg.StorageDir); err != nil {
				return fmt.Errorf("creating storage directory: %w", err)
			}

			fmt.Printf("Initialized database at %s\n", cfg.DatabasePath)
			fmt.Printf("Image storage at %s\n", cfg.StorageDir)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat server",
		Long: `Run the HTTP chat server.

Exposes POST /api/chat for multipart chat turns, GET /api/conversations and
GET /api/conversations/{id}/messages for history, and GET /healthz. Callers
identify themselves with the X-User-Id header.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, store, err := buildEngine()
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(cfg, eng, chatstore.NewSQLiteStore(store.DB))
			return srv.ListenAndServe()
		},
	}
}

func chatCmd() *cobra.Command {
	var userID string
	var conversationID string
	var imagePath string

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a single chat turn from the command line",
		Long: `Send one chat turn and print the assistant reply.

Without --conversation a new conversation is created; pass the printed
conversation ID back to continue it. Use --image to attach a local file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := &engine.TurnInput{ConversationID: conversationID}
			if len(args) > 0 {
				in.UserText = args[0]
			}

			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("reading image: %w", err)
				}
				in.ImageData = data
				in.ImageMIME = image.MIMEFromPath(imagePath)
				in.ImageName = filepath.Base(imagePath)
			}

			eng, store, err := buildEngine()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+5*time.Second)
			defer cancel()

			result, err := eng.ProcessTurn(ctx, userID, in)
			if err != nil {
				return err
			}

			fmt.Printf("Conversation: %s (%s)\n\n", result.Conversation.ID, result.Conversation.Title)
			fmt.Println(result.Message.Content)
			if result.Warning != "" {
				fmt.Fprintf(os.Stderr, "\nwarning: %s\n", result.Warning)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "local", "User ID to chat as")
	cmd.Flags().StringVar(&conversationID, "conversation", "", "Continue an existing conversation")
	cmd.Flags().StringVar(&imagePath, "image", "", "Attach an image file")
	return cmd
}

func conversationsCmd() *cobra.Command {
	var userID string
	var limit int

	cmd := &cobra.Command{
		Use:   "conversations",
		Short: "List conversations for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			chat := chatstore.NewSQLiteStore(store.DB)
			conversations, err := chat.ListConversations(context.Background(), userID, limit)
			if err != nil {
				return fmt.Errorf("listing conversations: %w", err)
			}

			if len(conversations) == 0 {
				fmt.Println("No conversations.")
				return nil
			}

			for _, c := range conversations {
				last := time.Unix(c.LastMessageAt, 0).Format("2006-01-02 15:04")
				fmt.Printf("%s  %-40s  %s\n", c.ID, c.Title, last)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "local", "User ID to list conversations for")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum conversations to list")
	return cmd
}

// buildEngine wires the store, providers, and object storage into an engine
func buildEngine() (*engine.Engine, *db.Store, error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	objects, err := objstore.NewFSStore(cfg.StorageDir)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("creating object store: %w", err)
	}

	providers, err := provider.CreateAllProviders(providerConfigs())
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	if len(providers) == 0 {
		store.Close()
		return nil, nil, fmt.Errorf("no providers configured: set OPENAI_API_KEY, GEMINI_API_KEY, or GROQ_API_KEY")
	}

	eng := engine.New(cfg, chatstore.NewSQLiteStore(store.DB), objects, providers)
	return eng, store, nil
}

// providerConfigs maps the loaded config onto per-provider settings. A
// provider is enabled when its API key is present.
func providerConfigs() []llm.ProviderConfig {
	return []llm.ProviderConfig{
		{
			Type:    llm.ProviderOpenAI,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			Enabled: cfg.OpenAIAPIKey != "",
		},
		{
			Type:    llm.ProviderGemini,
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Enabled: cfg.GeminiAPIKey != "",
		},
		{
			Type:    llm.ProviderGroq,
			APIKey:  cfg.GroqAPIKey,
			Model:   cfg.GroqModel,
			Enabled: cfg.GroqAPIKey != "",
		},
	}
}
