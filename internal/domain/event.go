package domain

import "time"

// EmbedKind discriminates the attachment variants a post can carry.
type EmbedKind string

const (
	EmbedImages   EmbedKind = "images"
	EmbedExternal EmbedKind = "external"
	EmbedVideo    EmbedKind = "video"
)

// Embed describes a post attachment. Exactly one variant is populated,
// selected by Kind: image sets carry a count and per-image alt text,
// external links carry the preview fields, video is a bare marker.
type Embed struct {
	Kind EmbedKind

	// Kind == EmbedImages
	ImageCount int
	AltTexts   []string

	// Kind == EmbedExternal
	URI         string
	Title       string
	Description string
}

// FacetKind discriminates inline annotation variants.
type FacetKind string

const (
	FacetMention FacetKind = "mention"
	FacetLink    FacetKind = "link"
	FacetTag     FacetKind = "tag"
)

// Facet is an inline annotation over a byte range [Start, End) of the
// post text. Value holds the mention DID, link URI, or tag literal
// depending on Kind.
type Facet struct {
	Start int
	End   int
	Kind  FacetKind
	Value string
}

// Event is one decoded post record from the feed. Events are created by
// the decoder at ingest time and never mutated afterwards; every
// consumer that retains one shares it read-only.
type Event struct {
	ReceivedAt time.Time // capture time, assigned at decode
	DID        string    // author identifier
	RKey       string    // record key
	Text       string
	Embed      *Embed  // nil when the post has no attachment
	Facets     []Facet // nil when the post has no annotations
}
