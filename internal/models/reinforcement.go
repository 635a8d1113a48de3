package models

// * Reinforcement is a coaching note kept per team member
type Reinforcement struct {
	ID          int    `json:"id"`
	DateAdded   string `json:"dateAdded"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Status      string `json:"status,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// * ReinforcementFile is the on-disk shape of <root>/<user>/reinforcements.json
type ReinforcementFile struct {
	Version        string          `json:"version"`
	LastUpdated    string          `json:"lastUpdated"`
	Reinforcements []Reinforcement `json:"reinforcements"`
}

// NextID returns max(existing ids)+1, or 1 for an empty list.
func (f *ReinforcementFile) NextID() int {
	maxID := 0
	for _, r := range f.Reinforcements {
		maxID = max(maxID, r.ID)
	}
	return maxID + 1
}
