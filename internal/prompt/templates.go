package prompt

import (
	"github.com/bimmerbailey/soudan/internal/llm"
)

// Build constructs the two-message exchange sent to the provider:
//
//	[system(instruction), user(userText)]
//
// userText is passed through exactly as given; callers decide what counts as
// empty input before getting here. Returns ErrMissingField if either argument
// is empty.
func Build(instruction, userText string) ([]llm.Message, error) {
	if instruction == "" {
		return nil, missingField("instruction")
	}
	if userText == "" {
		return nil, missingField("userText")
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: instruction},
		{Role: llm.RoleUser, Content: userText},
	}, nil
}
