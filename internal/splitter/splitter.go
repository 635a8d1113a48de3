package splitter

import (
	"maps"
	"strconv"
	"unicode"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
	"github.com/google/uuid"
)

const (
	DefaultChunkSize     = 800
	DefaultMinChunkChars = 350
)

// * TokenSplitter cuts documents into chunks of at most ChunkSize whitespace separated tokens
type TokenSplitter struct {
	ChunkSize int
	// * A trailing chunk shorter than this is folded into the previous one
	MinChunkChars int
}

func NewTokenSplitter() *TokenSplitter {
	return &TokenSplitter{ChunkSize: DefaultChunkSize, MinChunkChars: DefaultMinChunkChars}
}

// Split returns the documents chunked in order. A document that fits in one chunk is
// returned unchanged; otherwise every chunk carries the original metadata plus
// chunk_index, chunk_count and a chunk_id derived from the chunk content.
func (s *TokenSplitter) Split(docs []models.Document) []models.Document {
	size := s.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}

	out := make([]models.Document, 0, len(docs))
	for _, doc := range docs {
		chunks := s.chunk(doc.Content, size)
		if len(chunks) <= 1 {
			out = append(out, doc)
			continue
		}

		for i, content := range chunks {
			metadata := maps.Clone(doc.Metadata)
			if metadata == nil {
				metadata = make(map[string]string)
			}
			metadata["chunk_index"] = strconv.Itoa(i)
			metadata["chunk_count"] = strconv.Itoa(len(chunks))
			metadata["chunk_id"] = uuid.NewSHA1(uuid.NameSpaceURL, []byte(doc.Source()+"#"+strconv.Itoa(i)+"#"+content)).String()
			out = append(out, models.NewDocument(content, metadata))
		}
	}
	return out
}

// span is a byte range of the original content.
type span struct {
	start, end int
}

// chunk cuts content at token boundaries. Each chunk is a slice of the original text, so
// line breaks and indentation inside a chunk are kept.
func (s *TokenSplitter) chunk(content string, size int) []string {
	tokens := tokenSpans(content)
	if len(tokens) <= size {
		return []string{content}
	}

	var bounds []span
	for first := 0; first < len(tokens); first += size {
		last := min(first+size, len(tokens)) - 1
		bounds = append(bounds, span{start: tokens[first].start, end: tokens[last].end})
	}

	if n := len(bounds); n > 1 && bounds[n-1].end-bounds[n-1].start < s.MinChunkChars {
		bounds[n-2].end = bounds[n-1].end
		bounds = bounds[:n-1]
	}

	chunks := make([]string, len(bounds))
	for i, b := range bounds {
		chunks[i] = content[b.start:b.end]
	}
	return chunks
}

// tokenSpans locates the whitespace separated tokens of content, splitting the same way
// strings.Fields does.
func tokenSpans(content string) []span {
	var spans []span
	start := -1
	for i, r := range content {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, span{start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, span{start: start, end: len(content)})
	}
	return spans
}
