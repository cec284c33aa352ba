package dto

import (
	"strconv"
	"time"

	"grapevine.app/firehose/internal/domain"
	"grapevine.app/firehose/internal/pipeline"
)

type CreateConsumerRequest struct {
	Filter string `json:"filter"`
}

type UpdateFilterRequest struct {
	Filter string `json:"filter"`
}

type ConsumerResponse struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Filter   string `json:"filter"`
	Buffered int    `json:"buffered"`
}

func ToConsumerResponse(info pipeline.ConsumerInfo) ConsumerResponse {
	return ConsumerResponse{
		// Handles are snowflake int64s; serialized as strings so JS
		// clients don't lose precision.
		ID:       strconv.FormatInt(info.ID, 10),
		Role:     string(info.Role),
		Filter:   info.Filter,
		Buffered: info.Buffered,
	}
}

type EmbedResponse struct {
	Kind        string   `json:"kind"`
	ImageCount  int      `json:"image_count,omitempty"`
	AltTexts    []string `json:"alt_texts,omitempty"`
	URI         string   `json:"uri,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
}

type FacetResponse struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type EventResponse struct {
	ReceivedAt time.Time       `json:"received_at"`
	DID        string          `json:"did"`
	RKey       string          `json:"rkey"`
	Text       string          `json:"text"`
	Embed      *EmbedResponse  `json:"embed,omitempty"`
	Facets     []FacetResponse `json:"facets,omitempty"`
}

func ToEventResponse(ev domain.Event) EventResponse {
	resp := EventResponse{
		ReceivedAt: ev.ReceivedAt,
		DID:        ev.DID,
		RKey:       ev.RKey,
		Text:       ev.Text,
	}

	if ev.Embed != nil {
		resp.Embed = &EmbedResponse{
			Kind:        string(ev.Embed.Kind),
			ImageCount:  ev.Embed.ImageCount,
			AltTexts:    ev.Embed.AltTexts,
			URI:         ev.Embed.URI,
			Title:       ev.Embed.Title,
			Description: ev.Embed.Description,
		}
	}

	for _, f := range ev.Facets {
		resp.Facets = append(resp.Facets, FacetResponse{
			Start: f.Start,
			End:   f.End,
			Kind:  string(f.Kind),
			Value: f.Value,
		})
	}

	return resp
}

func ToEventResponses(events []domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, ToEventResponse(ev))
	}
	return out
}
