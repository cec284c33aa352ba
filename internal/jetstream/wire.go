package jetstream

import (
	"encoding/json"
	"fmt"
	"time"

	"grapevine.app/firehose/internal/domain"
)

// PostCollection is the record collection this client subscribes to.
const PostCollection = "app.bsky.feed.post"

// Wire-level shapes of the Jetstream JSON envelope. Only the fields
// the decoder reads are declared.

type wireEvent struct {
	DID    string      `json:"did"`
	TimeUS int64       `json:"time_us"`
	Kind   string      `json:"kind"`
	Commit *wireCommit `json:"commit,omitempty"`
}

type wireCommit struct {
	Rev        string          `json:"rev,omitempty"`
	Operation  string          `json:"operation"`
	Collection string          `json:"collection,omitempty"`
	RKey       string          `json:"rkey,omitempty"`
	Record     json.RawMessage `json:"record,omitempty"`
}

const (
	kindCommit      = "commit"
	operationCreate = "create"
)

type wirePost struct {
	Text   string      `json:"text"`
	Embed  *wireEmbed  `json:"embed,omitempty"`
	Facets []wireFacet `json:"facets,omitempty"`
}

type wireEmbed struct {
	Type     string        `json:"$type"`
	Images   []wireImage   `json:"images,omitempty"`
	External *wireExternal `json:"external,omitempty"`
}

type wireImage struct {
	Alt string `json:"alt"`
}

type wireExternal struct {
	URI         string `json:"uri"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type wireFacet struct {
	Index struct {
		ByteStart int `json:"byteStart"`
		ByteEnd   int `json:"byteEnd"`
	} `json:"index"`
	Features []wireFeature `json:"features"`
}

type wireFeature struct {
	Type string `json:"$type"`
	DID  string `json:"did,omitempty"`
	URI  string `json:"uri,omitempty"`
	Tag  string `json:"tag,omitempty"`
}

const (
	embedImagesType   = "app.bsky.embed.images"
	embedExternalType = "app.bsky.embed.external"
	embedVideoType    = "app.bsky.embed.video"

	facetMentionType = "app.bsky.richtext.facet#mention"
	facetLinkType    = "app.bsky.richtext.facet#link"
	facetTagType     = "app.bsky.richtext.facet#tag"
)

// decodeEvent turns one wire frame into a domain event. The second
// return is false for frames that are well-formed but not post-create
// commits (identity events, deletes, other collections); those are
// skipped silently. A malformed frame returns an error and is dropped
// by the caller with a diagnostic, never terminating the stream.
func decodeEvent(data []byte, receivedAt time.Time) (domain.Event, bool, error) {
	var ev wireEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return domain.Event{}, false, fmt.Errorf("unmarshal envelope: %w", err)
	}

	if ev.Kind != kindCommit || ev.Commit == nil {
		return domain.Event{}, false, nil
	}
	commit := ev.Commit
	if commit.Operation != operationCreate || commit.Collection != PostCollection {
		return domain.Event{}, false, nil
	}

	var post wirePost
	if err := json.Unmarshal(commit.Record, &post); err != nil {
		return domain.Event{}, false, fmt.Errorf("unmarshal post record (rkey=%s): %w", commit.RKey, err)
	}

	return domain.Event{
		ReceivedAt: receivedAt,
		DID:        ev.DID,
		RKey:       commit.RKey,
		Text:       post.Text,
		Embed:      decodeEmbed(post.Embed),
		Facets:     decodeFacets(post.Facets),
	}, true, nil
}

func decodeEmbed(embed *wireEmbed) *domain.Embed {
	if embed == nil {
		return nil
	}

	switch embed.Type {
	case embedImagesType:
		if len(embed.Images) == 0 {
			return nil
		}
		alts := make([]string, 0, len(embed.Images))
		for _, img := range embed.Images {
			alts = append(alts, img.Alt)
		}
		return &domain.Embed{
			Kind:       domain.EmbedImages,
			ImageCount: len(embed.Images),
			AltTexts:   alts,
		}
	case embedExternalType:
		if embed.External == nil {
			return nil
		}
		return &domain.Embed{
			Kind:        domain.EmbedExternal,
			URI:         embed.External.URI,
			Title:       embed.External.Title,
			Description: embed.External.Description,
		}
	case embedVideoType:
		return &domain.Embed{Kind: domain.EmbedVideo}
	default:
		// Record-with-media, quote posts etc. carry no inline payload
		// this pipeline surfaces.
		return nil
	}
}

func decodeFacets(facets []wireFacet) []domain.Facet {
	if len(facets) == 0 {
		return nil
	}

	var out []domain.Facet
	for _, f := range facets {
		for _, feat := range f.Features {
			var (
				kind  domain.FacetKind
				value string
			)
			switch feat.Type {
			case facetMentionType:
				kind, value = domain.FacetMention, feat.DID
			case facetLinkType:
				kind, value = domain.FacetLink, feat.URI
			case facetTagType:
				kind, value = domain.FacetTag, feat.Tag
			default:
				continue
			}
			out = append(out, domain.Facet{
				Start: f.Index.ByteStart,
				End:   f.Index.ByteEnd,
				Kind:  kind,
				Value: value,
			})
		}
	}
	return out
}
