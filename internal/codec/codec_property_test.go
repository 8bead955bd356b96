package codec

import (
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/starford/eleph/internal/models"
)

// =============================================================================
// Generators
// =============================================================================

// Identifiers and tags never contain "---", the front-matter delimiter.
func idGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z0-9]{1,8}(-[A-Za-z0-9]{1,8}){0,4}`)
}

// titleGenerator avoids colons, brackets and surrounding whitespace, which
// the line-based front-matter does not preserve.
func titleGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z0-9]([A-Za-z0-9 .!?]{0,40}[A-Za-z0-9])?`)
}

func tagGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z][a-z0-9]{0,6}(-[a-z0-9]{1,6}){0,2}`)
}

func bodyLineGenerator() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.SampledFrom([]string{
			"",
			"---",
			"# Heading",
			"## Sub heading",
			"- list item",
			"> quoted",
			"**bold** and _italic_",
			"key: value looking line",
			"tags: [not, front, matter]",
		}),
		rapid.StringMatching(`[A-Za-z0-9 .,!?]{1,60}`),
	)
}

// contentGenerator produces bodies without surrounding whitespace; decoding
// trims the body.
func contentGenerator() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		lines := rapid.SliceOfN(bodyLineGenerator(), 0, 12).Draw(t, "lines")
		return strings.TrimSpace(strings.Join(lines, "\n"))
	})
}

func noteGenerator(minTags int) *rapid.Generator[models.Note] {
	return rapid.Custom(func(t *rapid.T) models.Note {
		secs := rapid.Int64Range(0, 4102444800).Draw(t, "lastModified")
		return models.Note{
			ID:           idGenerator().Draw(t, "id"),
			Title:        titleGenerator().Draw(t, "title"),
			Content:      contentGenerator().Draw(t, "content"),
			LastModified: time.Unix(secs, 0).UTC(),
			Tags:         rapid.SliceOfN(tagGenerator(), minTags, 6).Draw(t, "tags"),
		}
	})
}

// =============================================================================
// Property: decode(encode(n)) keeps identity, title, content and tag set
// =============================================================================

func testRoundtrip_Properties(t *rapid.T) {
	n := noteGenerator(1).Draw(t, "note")

	got := Decode(Encode(n), n.ID)

	if got.ID != n.ID {
		t.Fatalf("id mismatch: expected %q, got %q", n.ID, got.ID)
	}
	if got.Title != n.Title {
		t.Fatalf("title mismatch: expected %q, got %q", n.Title, got.Title)
	}
	if got.Content != n.Content {
		t.Fatalf("content mismatch: expected %q, got %q", n.Content, got.Content)
	}
	if !models.SameTags(got.Tags, n.Tags) {
		t.Fatalf("tags mismatch: expected %v, got %v", n.Tags, got.Tags)
	}
	if !got.LastModified.Equal(n.LastModified) {
		t.Fatalf("lastModified mismatch: expected %v, got %v", n.LastModified, got.LastModified)
	}
}

func TestRoundtrip_Properties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testRoundtrip_Properties)
}

func FuzzRoundtrip_Properties(f *testing.F) {
	f.Add([]byte{0x00})
	f.Fuzz(rapid.MakeFuzz(testRoundtrip_Properties))
}

// =============================================================================
// Property: encode(decode(encode(n))) == encode(n)
// =============================================================================

func testIdempotent_Properties(t *rapid.T) {
	n := noteGenerator(0).Draw(t, "note")

	first := Encode(n)
	second := Encode(Decode(first, n.ID))

	if string(first) != string(second) {
		t.Fatalf("re-encoding changed the text:\n%s\n---- vs ----\n%s", first, second)
	}
}

func TestIdempotent_Properties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testIdempotent_Properties)
}

// =============================================================================
// Property: decode never panics and always yields an identity
// =============================================================================

func testDecodeTotal_Properties(t *rapid.T) {
	data := rapid.OneOf(
		rapid.SliceOf(rapid.Byte()),
		rapid.Custom(func(t *rapid.T) []byte {
			return []byte("---" + rapid.String().Draw(t, "rest"))
		}),
	).Draw(t, "data")
	fallback := rapid.StringMatching(`[a-z0-9]{0,8}`).Draw(t, "fallback")

	n := Decode(data, fallback)

	if n.ID == "" {
		t.Fatal("decoded note has empty id")
	}
	if n.Tags == nil {
		t.Fatal("decoded note has nil tags")
	}
	for _, tag := range n.Tags {
		if tag == "" {
			t.Fatal("decoded note has an empty tag")
		}
	}
}

func TestDecodeTotal_Properties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testDecodeTotal_Properties)
}

func FuzzDecodeTotal_Properties(f *testing.F) {
	f.Add([]byte{0x00})
	f.Fuzz(rapid.MakeFuzz(testDecodeTotal_Properties))
}
