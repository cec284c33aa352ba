package example

type EmbedKind string

const (
	EmbedImages   EmbedKind = "images"
	EmbedExternal EmbedKind = "external"
)

type FacetKind string

const (
	FacetMention FacetKind = "mention"
)

type Role string

const (
	RolePrimary Role = "primary"
)

type Embed struct {
	Kind EmbedKind
}

type Consumer struct {
	Role Role
}

func bad() {
	e := &Embed{}
	e.Kind = "video" // want "enum field Kind assigned string literal"

	c := &Consumer{}
	c.Role = "secondary" // want "enum field Role assigned string literal"
}

func good() {
	e := &Embed{}
	e.Kind = EmbedImages // OK: using constant

	c := &Consumer{}
	c.Role = RolePrimary // OK: using constant
}

func alsoGood() {
	// OK: Variable, not literal
	kind := EmbedExternal
	e := &Embed{Kind: kind}
	_ = e
}
