package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handlerContext(t *testing.T) (context.Context, *StudyService) {
	t.Helper()
	svc, _ := setupTestService(t)
	return context.WithValue(context.Background(), "service", svc), svc
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// resultText extracts the text payload from a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func decodeResult(t *testing.T, result *mcp.CallToolResult, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), v))
}

func TestHandleCreateCollection(t *testing.T) {
	ctx, _ := handlerContext(t)

	result, err := handleCreateCollection(ctx, callRequest(map[string]interface{}{
		"name": "Spanish",
	}))
	require.NoError(t, err)

	var resp CreateCollectionResponse
	decodeResult(t, result, &resp)
	assert.NotEmpty(t, resp.Collection.ID)
	assert.Equal(t, "Spanish", resp.Collection.Name)
}

func TestHandleCreateCollectionMissingName(t *testing.T) {
	ctx, _ := handlerContext(t)

	result, err := handleCreateCollection(ctx, callRequest(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "missing required parameter: name")
}

func TestHandleSubmitReview(t *testing.T) {
	ctx, svc := handlerContext(t)
	mockTimeNow(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	col, err := svc.CreateCollection("Spanish")
	require.NoError(t, err)
	card, err := svc.CreateCard(col.ID, "hola", "hello")
	require.NoError(t, err)

	result, err := handleSubmitReview(ctx, callRequest(map[string]interface{}{
		"collection_id": col.ID,
		"card_id":       card.ID,
		"outcome":       "good",
	}))
	require.NoError(t, err)

	var resp ReviewResponse
	decodeResult(t, result, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.Card.IntervalDays)
	assert.Equal(t, 1, resp.Card.GoodCount)
}

func TestHandleSubmitReviewRejectsBadOutcome(t *testing.T) {
	ctx, svc := handlerContext(t)

	col, err := svc.CreateCollection("Spanish")
	require.NoError(t, err)
	card, err := svc.CreateCard(col.ID, "hola", "hello")
	require.NoError(t, err)

	result, err := handleSubmitReview(ctx, callRequest(map[string]interface{}{
		"collection_id": col.ID,
		"card_id":       card.ID,
		"outcome":       "hard",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "outcome must be one of")
}

func TestHandleDailyQueueEmptyLibrary(t *testing.T) {
	ctx, _ := handlerContext(t)

	result, err := handleDailyQueue(ctx, callRequest(nil))
	require.NoError(t, err)

	var resp QueueResponse
	decodeResult(t, result, &resp)
	assert.Zero(t, resp.Count)
	assert.NotNil(t, resp.Cards, "empty queue serializes as [], not null")
}

func TestHandleStudySessionUsesConfiguredDefaults(t *testing.T) {
	ctx, svc := handlerContext(t)
	mockTimeNow(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	col, err := svc.CreateCollection("Spanish")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		_, err := svc.CreateCard(col.ID, "front", "back")
		require.NoError(t, err)
	}

	// No caps in the request: the configured defaults (5 new) apply.
	result, err := handleStudySession(ctx, callRequest(map[string]interface{}{
		"collection_id": col.ID,
	}))
	require.NoError(t, err)

	var resp QueueResponse
	decodeResult(t, result, &resp)
	assert.Equal(t, 5, resp.Count)
}

func TestHandleStudySessionNegativeCap(t *testing.T) {
	ctx, svc := handlerContext(t)

	col, err := svc.CreateCollection("Spanish")
	require.NoError(t, err)

	result, err := handleStudySession(ctx, callRequest(map[string]interface{}{
		"collection_id": col.ID,
		"max_new":       float64(-1),
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "must not be negative")
}

func TestHandlersWithoutService(t *testing.T) {
	result, err := handleListCollections(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "service not available")
}
