package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/errors"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/logger"
)

const (
	searchTopK   = 5
	noDocuments  = "No relevant team information found."
	docSeparator = "\n\n---\n\n"
)

const SystemPrompt = `You are an assistant for a software team. You answer questions about team activity, progress and insights.

The context you receive can contain:
- 1:1 meeting notes and progress reports written by team members
- Recent commits and code changes from GitHub repositories
- Year-to-date contribution analysis: daily patterns, streaks, weekly habits, trends and activity levels
- Monthly commit and contribution summaries

When reading contribution data:
- A contribution is a commit, pull request, issue or review
- Restricted contributions come from private repositories
- Days with 5 or more contributions are high-activity days
- 0-10 contributions a month is light activity, 10-50 moderate, 50-100 high, above 100 very high

Quote repository names, commit messages and concrete numbers when they are available.
Stay respectful of sensitive information and steer private matters back to general topics.
Structure answers clearly and finish with actionable insights.`

const ragTemplate = `Based on the following team activity and development data:
%s

Question: %s

Please provide a helpful answer based on the team information above. When referencing commits or code changes, include specific repository names and commit details when available.`

var topics = []string{
	"Team Progress & Achievements",
	"Recent Work & Contributions",
	"Code Reviews & Technical Discussions",
	"Feedback & Development Areas",
	"Project Challenges & Roadblocks",
	"Team Collaboration & Communication",
	"Meeting Notes & Action Items",
	"Skills Development & Learning",
	"Process Improvements",
	"Team Dynamics",
}

// * Completer turns a prompt into model output
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// * Searcher is the read side of the document index
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]models.Document, error)
}

// * Source points at a document that was fed into an answer
type Source struct {
	Source   string `json:"source"`
	Username string `json:"username,omitempty"`
	Date     string `json:"date,omitempty"`
	Type     string `json:"type,omitempty"`
}

type Answer struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
}

type Answerer struct {
	searcher  Searcher
	completer Completer
}

func NewAnswerer(searcher Searcher, completer Completer) *Answerer {
	return &Answerer{searcher: searcher, completer: completer}
}

// Ask retrieves the closest corpus documents for the question and asks the model to answer
// from them.
func (a *Answerer) Ask(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, errors.Parse("Invalid question", "Question must not be empty", nil)
	}

	if a.completer == nil {
		return Answer{}, errors.Unavailable("Chat is not configured", "Set OPENAI_API_KEY to enable answers")
	}

	docs, err := a.searcher.Search(ctx, question, searchTopK)
	if err != nil {
		return Answer{}, errors.New("CHAT_SEARCH_ERROR", "Failed to search corpus", "Corpus search failed for chat question", err, errors.LevelFatal)
	}
	logger.Debug("chat question matched %d documents", len(docs))

	reply, err := a.completer.Complete(ctx, SystemPrompt, BuildPrompt(question, docs))
	if err != nil {
		return Answer{}, err
	}

	sources := make([]Source, 0, len(docs))
	for _, d := range docs {
		sources = append(sources, Source{
			Source:   d.Source(),
			Username: d.Username(),
			Date:     d.Metadata["date"],
			Type:     d.Type(),
		})
	}

	return Answer{Question: question, Answer: reply, Sources: sources}, nil
}

// BuildPrompt fills the retrieval template with the rendered documents.
func BuildPrompt(question string, docs []models.Document) string {
	return fmt.Sprintf(ragTemplate, RenderDocuments(docs), question)
}

func RenderDocuments(docs []models.Document) string {
	if len(docs) == 0 {
		return noDocuments
	}

	blocks := make([]string, 0, len(docs))
	for _, d := range docs {
		var b strings.Builder
		b.WriteString("Source: " + d.Source())
		if u := d.Username(); u != "" {
			b.WriteString(" (User: " + u + ")")
		}
		if date := d.Metadata["date"]; date != "" {
			b.WriteString(" (Date: " + date + ")")
		}
		b.WriteString("\n" + d.Content)
		blocks = append(blocks, b.String())
	}

	return strings.Join(blocks, docSeparator)
}

// Topics lists the subjects the assistant is prepared to discuss.
func Topics() []string {
	out := make([]string, len(topics))
	copy(out, topics)
	return out
}
