package editor

import "strings"

type Action string

const (
	ActionSubmit    Action = "submit"
	ActionAccept    Action = "accept"
	ActionSave      Action = "save"
	ActionTransform Action = "transform"
)

// Pricing holds the token cost of each billable action. Balances and
// sufficiency checks belong to the ledger; this only reports numbers.
type Pricing struct {
	PerWord   int
	Accept    int
	Save      int
	Transform int
}

func DefaultPricing() Pricing {
	return Pricing{PerWord: 1, Accept: 1, Save: 5, Transform: 5}
}

// Cost returns the token cost of performing action on text. Submissions are
// charged per word; other actions have a fixed cost.
func (p Pricing) Cost(action Action, text string) int {
	switch action {
	case ActionSubmit:
		return p.PerWord * WordCount(text)
	case ActionAccept:
		return p.Accept
	case ActionSave:
		return p.Save
	case ActionTransform:
		return p.Transform
	}
	return 0
}

func WordCount(text string) int {
	return len(strings.Fields(text))
}
