package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/memodeck/memodeck/internal/deck"
	"github.com/memodeck/memodeck/internal/scheduler"
	"github.com/memodeck/memodeck/internal/session"
)

// serviceFrom extracts the study service injected into the handler context.
func serviceFrom(ctx context.Context) (*StudyService, bool) {
	s, ok := ctx.Value("service").(*StudyService)
	return s, ok && s != nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errorResult(format string, args ...interface{}) *mcp.CallToolResult {
	return mcp.NewToolResultText(fmt.Sprintf(`{"error": %q}`, fmt.Sprintf(format, args...)))
}

func stringArg(request mcp.CallToolRequest, key string) (string, bool) {
	v, ok := request.Params.Arguments[key].(string)
	return v, ok
}

// intArg returns the integer value of an optional numeric parameter, or def
// when absent. MCP numbers arrive as float64.
func intArg(request mcp.CallToolRequest, key string, def int) int {
	if v, ok := request.Params.Arguments[key].(float64); ok {
		return int(v)
	}
	return def
}

func stringSliceArg(request mcp.CallToolRequest, key string) []string {
	var result []string
	if raw, ok := request.Params.Arguments[key].([]interface{}); ok {
		for _, item := range raw {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
	}
	return result
}

// handleCreateCollection handles the create_collection tool request.
func handleCreateCollection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	name, ok := stringArg(request, "name")
	if !ok || name == "" {
		return errorResult("missing required parameter: name"), nil
	}

	info, err := s.CreateCollection(name)
	if err != nil {
		return errorResult("error creating collection: %v", err), nil
	}
	return jsonResult(CreateCollectionResponse{Collection: info})
}

// handleListCollections handles the list_collections tool request.
func handleListCollections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}
	return jsonResult(ListCollectionsResponse{Collections: s.ListCollections()})
}

// handleCreateCard handles the create_card tool request: it inserts a card
// with default scheduling state, the way the content pipeline would.
func handleCreateCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	collectionID, ok := stringArg(request, "collection_id")
	if !ok {
		return errorResult("missing required parameter: collection_id"), nil
	}
	front, ok := stringArg(request, "front")
	if !ok {
		return errorResult("missing required parameter: front"), nil
	}
	back, ok := stringArg(request, "back")
	if !ok {
		return errorResult("missing required parameter: back"), nil
	}

	card, err := s.CreateCard(collectionID, front, back)
	if err != nil {
		return errorResult("error creating card: %v", err), nil
	}
	return jsonResult(CreateCardResponse{Card: card})
}

// handleDeleteCard handles the delete_card tool request.
func handleDeleteCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	collectionID, ok := stringArg(request, "collection_id")
	if !ok {
		return errorResult("missing required parameter: collection_id"), nil
	}
	cardID, ok := stringArg(request, "card_id")
	if !ok {
		return errorResult("missing required parameter: card_id"), nil
	}

	if err := s.DeleteCard(collectionID, cardID); err != nil {
		return errorResult("error deleting card: %v", err), nil
	}
	return jsonResult(DeleteCardResponse{
		Success: true,
		Message: "Card deleted: " + cardID,
	})
}

// handleListCards handles the list_cards tool request.
func handleListCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	collectionID, ok := stringArg(request, "collection_id")
	if !ok {
		return errorResult("missing required parameter: collection_id"), nil
	}

	cards, st, err := s.ListCards(collectionID)
	if err != nil {
		return errorResult("error listing cards: %v", err), nil
	}
	if cards == nil {
		cards = []deck.Card{}
	}
	return jsonResult(ListCardsResponse{Cards: cards, Stats: st})
}

// handleSubmitReview handles the submit_review tool request: one scheduling
// event for one card.
func handleSubmitReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	collectionID, ok := stringArg(request, "collection_id")
	if !ok {
		return errorResult("missing required parameter: collection_id"), nil
	}
	cardID, ok := stringArg(request, "card_id")
	if !ok {
		return errorResult("missing required parameter: card_id"), nil
	}
	outcomeStr, ok := stringArg(request, "outcome")
	if !ok {
		return errorResult("missing required parameter: outcome"), nil
	}

	outcome, err := scheduler.ParseOutcome(outcomeStr)
	if err != nil {
		return errorResult("outcome must be one of: again, good, easy"), nil
	}

	card, err := s.SubmitReview(collectionID, cardID, outcome)
	if err != nil {
		return errorResult("error submitting review: %v", err), nil
	}
	return jsonResult(ReviewResponse{
		Success: true,
		Message: "Review recorded for card " + cardID,
		Card:    card,
	})
}

// handleDailyQueue handles the daily_queue tool request.
func handleDailyQueue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	cards, err := s.DailyQueue(stringSliceArg(request, "collection_ids"))
	if err != nil {
		return errorResult("error building daily queue: %v", err), nil
	}
	if cards == nil {
		cards = []deck.Card{}
	}
	return jsonResult(QueueResponse{Cards: cards, Count: len(cards)})
}

// handleStudySession handles the study_session tool request.
func handleStudySession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	collectionID, ok := stringArg(request, "collection_id")
	if !ok {
		return errorResult("missing required parameter: collection_id"), nil
	}

	defaultNew, defaultReview := s.SessionDefaults()
	maxNew := intArg(request, "max_new", defaultNew)
	maxReview := intArg(request, "max_review", defaultReview)

	cards, err := s.StudySession(collectionID, maxNew, maxReview)
	if err != nil {
		if errors.Is(err, session.ErrNegativeLimit) {
			return errorResult("max_new and max_review must not be negative"), nil
		}
		return errorResult("error building study session: %v", err), nil
	}
	if cards == nil {
		cards = []deck.Card{}
	}
	return jsonResult(QueueResponse{Cards: cards, Count: len(cards)})
}

// handleCollectionStats handles the collection_stats tool request.
func handleCollectionStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	collectionID, ok := stringArg(request, "collection_id")
	if !ok {
		return errorResult("missing required parameter: collection_id"), nil
	}

	st, err := s.CollectionStats(collectionID)
	if err != nil {
		return errorResult("error computing stats: %v", err), nil
	}
	return jsonResult(StatsResponse{Stats: st})
}

// handleEstimateStudyMinutes handles the estimate_study_minutes tool request.
func handleEstimateStudyMinutes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, ok := serviceFrom(ctx)
	if !ok {
		return errorResult("service not available"), nil
	}

	due, minutes, err := s.EstimateStudyMinutes(stringSliceArg(request, "collection_ids"))
	if err != nil {
		return errorResult("error estimating study time: %v", err), nil
	}
	return jsonResult(EstimateResponse{DueCards: due, EstimatedMinutes: minutes})
}
