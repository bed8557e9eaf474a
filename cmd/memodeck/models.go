// Package main implements the memodeck MCP study server.
package main

import (
	"time"

	"github.com/memodeck/memodeck/internal/deck"
	"github.com/memodeck/memodeck/internal/stats"
)

// CollectionInfo is the outward-facing form of a collection.
type CollectionInfo struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	CreatedAt  time.Time       `json:"created_at"`
	Aggregates deck.Aggregates `json:"aggregates"`
}

// CreateCollectionResponse is the response structure for create_collection.
type CreateCollectionResponse struct {
	Collection CollectionInfo `json:"collection"`
}

// ListCollectionsResponse is the response structure for list_collections.
type ListCollectionsResponse struct {
	Collections []CollectionInfo `json:"collections"`
}

// CreateCardResponse is the response structure for create_card.
type CreateCardResponse struct {
	Card deck.Card `json:"card"`
}

// ReviewResponse is the response structure for submit_review.
type ReviewResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Card    deck.Card `json:"card,omitempty"`
}

// DeleteCardResponse is the response structure for delete_card.
type DeleteCardResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// QueueResponse is the response structure for daily_queue and study_session.
type QueueResponse struct {
	Cards []deck.Card `json:"cards"`
	Count int         `json:"count"`
}

// ListCardsResponse is the response structure for list_cards.
type ListCardsResponse struct {
	Cards []deck.Card           `json:"cards"`
	Stats stats.CollectionStats `json:"stats"`
}

// StatsResponse is the response structure for collection_stats.
type StatsResponse struct {
	Stats stats.CollectionStats `json:"stats"`
}

// EstimateResponse is the response structure for estimate_study_minutes.
type EstimateResponse struct {
	DueCards         int `json:"due_cards"`
	EstimatedMinutes int `json:"estimated_minutes"`
}
