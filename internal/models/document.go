package models

// * Document types carried in the "type" metadata key
const (
	TypeTeamActivity           = "team-activity"
	TypeReinforcements         = "reinforcements"
	TypeCommit                 = "commit"
	TypeMonthlyCommitSummary   = "monthly-commit-summary"
	TypeContributionPersonal   = "contribution-analysis-personal"
	TypeContributionEnterprise = "contribution-analysis-enterprise"
	TypeMonthlyContribution    = "monthly-contribution-summary"
)

// * Document is a synthesized text block with the metadata used for retrieval
type Document struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

func NewDocument(content string, metadata map[string]string) Document {
	if metadata == nil {
		metadata = make(map[string]string)
	}
	return Document{Content: content, Metadata: metadata}
}

func (d Document) Type() string     { return d.Metadata["type"] }
func (d Document) Source() string   { return d.Metadata["source"] }
func (d Document) Username() string { return d.Metadata["username"] }
