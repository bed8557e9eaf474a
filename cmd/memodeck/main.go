package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"

	"github.com/memodeck/memodeck/internal/config"
	"github.com/memodeck/memodeck/internal/storage"
)

const serverInstructions = `
This is an offline spaced-repetition study server. Cards live in named
collections; each review outcome (again/good/easy) reschedules the card.

Suggested workflow:
1. Call daily_queue or study_session to fetch cards to review.
2. Present one card's front at a time; never reveal the back before the
   learner has answered.
3. After each answer, call submit_review with the learner's recall quality:
   "again" for a failed recall, "good" for recall with effort, "easy" for an
   effortless one.
4. Use collection_stats and estimate_study_minutes to report progress and
   plan the next session.
`

func main() {
	flags := pflag.NewFlagSet("memodeck", pflag.ExitOnError)
	configPath := flags.String("config", "", "Path to a YAML config file")
	flags.String("storage.backend", "file", "Persistence backend: file or sqlite")
	flags.String("storage.path", "./memodeck.json", "Path to the data file or database")
	flags.Int("session.max_new", 5, "Default cap on new cards per study session")
	flags.Int("session.max_review", 20, "Default cap on review cards per study session")
	flags.String("logging.level", "info", "Log level: debug, info, warn or error")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Error parsing flags: %v", err)
	}

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	service, err := NewStudyService(store, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing service: %v\n", err)
		os.Exit(1)
	}
	defer service.Logger.Sync()

	s := server.NewMCPServer(
		"Memodeck",
		"1.0.0",
		server.WithInstructions(serverInstructions),
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	// Context carrying the service for the tool handlers.
	ctx := context.WithValue(context.Background(), "service", service)

	createCollectionTool := mcp.NewTool("create_collection",
		mcp.WithDescription("Create a new named card collection."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Display name for the collection"),
		),
	)

	listCollectionsTool := mcp.NewTool("list_collections",
		mcp.WithDescription("List all collections with their aggregate metrics."),
	)

	createCardTool := mcp.NewTool("create_card",
		mcp.WithDescription(
			"Add a new card to a collection. The card starts due immediately "+
				"with default scheduling state.",
		),
		mcp.WithString("collection_id",
			mcp.Required(),
			mcp.Description("The collection that will own the card"),
		),
		mcp.WithString("front",
			mcp.Required(),
			mcp.Description("The question side of the card"),
		),
		mcp.WithString("back",
			mcp.Required(),
			mcp.Description("The answer side of the card"),
		),
	)

	deleteCardTool := mcp.NewTool("delete_card",
		mcp.WithDescription("Delete a card from a collection."),
		mcp.WithString("collection_id",
			mcp.Required(),
			mcp.Description("The collection that owns the card"),
		),
		mcp.WithString("card_id",
			mcp.Required(),
			mcp.Description("The ID of the card to delete"),
		),
	)

	listCardsTool := mcp.NewTool("list_cards",
		mcp.WithDescription("List all cards in a collection with its statistics."),
		mcp.WithString("collection_id",
			mcp.Required(),
			mcp.Description("The collection to list"),
		),
	)

	submitReviewTool := mcp.NewTool("submit_review",
		mcp.WithDescription(
			"Record one review outcome for a card and reschedule it. "+
				"Outcomes: 'again' (failed recall, card comes back in 10 minutes), "+
				"'good' (recalled with effort), 'easy' (effortless recall).",
		),
		mcp.WithString("collection_id",
			mcp.Required(),
			mcp.Description("The collection that owns the card"),
		),
		mcp.WithString("card_id",
			mcp.Required(),
			mcp.Description("The ID of the card being reviewed"),
		),
		mcp.WithString("outcome",
			mcp.Required(),
			mcp.Description("Recall quality: again, good or easy"),
		),
	)

	dailyQueueTool := mcp.NewTool("daily_queue",
		mcp.WithDescription(
			"List every due card across collections, most overdue first. "+
				"Read-only: card state is not changed.",
		),
		mcp.WithArray("collection_ids",
			mcp.Description("Collections to include; all collections when omitted"),
		),
	)

	studySessionTool := mcp.NewTool("study_session",
		mcp.WithDescription(
			"Build a bounded, shuffled session of new and due cards from one "+
				"collection. Read-only: card state is not changed.",
		),
		mcp.WithString("collection_id",
			mcp.Required(),
			mcp.Description("The collection to draw cards from"),
		),
		mcp.WithNumber("max_new",
			mcp.Description("Cap on never-reviewed cards (default 5)"),
		),
		mcp.WithNumber("max_review",
			mcp.Description("Cap on due review cards (default 20)"),
		),
	)

	collectionStatsTool := mcp.NewTool("collection_stats",
		mcp.WithDescription("Report total, due, new and review counts for a collection."),
		mcp.WithString("collection_id",
			mcp.Required(),
			mcp.Description("The collection to report on"),
		),
	)

	estimateTool := mcp.NewTool("estimate_study_minutes",
		mcp.WithDescription(
			"Estimate how many whole minutes clearing the due cards would take, "+
				"at 30 seconds per card.",
		),
		mcp.WithArray("collection_ids",
			mcp.Description("Collections to include; all collections when omitted"),
		),
	)

	s.AddTool(createCollectionTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateCollection(ctx, request)
	})
	s.AddTool(listCollectionsTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListCollections(ctx, request)
	})
	s.AddTool(createCardTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateCard(ctx, request)
	})
	s.AddTool(deleteCardTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDeleteCard(ctx, request)
	})
	s.AddTool(listCardsTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListCards(ctx, request)
	})
	s.AddTool(submitReviewTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSubmitReview(ctx, request)
	})
	s.AddTool(dailyQueueTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDailyQueue(ctx, request)
	})
	s.AddTool(studySessionTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleStudySession(ctx, request)
	})
	s.AddTool(collectionStatsTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCollectionStats(ctx, request)
	})
	s.AddTool(estimateTool, func(reqCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleEstimateStudyMinutes(ctx, request)
	})

	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("Error serving MCP server: %v", err)
	}
}

func openStore(cfg config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return storage.OpenSQLite(cfg.Storage.Path)
	default:
		return storage.NewFileStore(cfg.Storage.Path), nil
	}
}
