// Package prompt resolves expert personas to system instructions and builds
// the messages sent to the chat-completion provider.
//
// # Personas
//
//   - [CareerAdvisor]: IT and generative-AI career advice
//   - [FinancialPlanner]: household finance and life planning
//
// Any other [Persona] value is accepted and resolves to a generic expert
// instruction; [Instruction] never returns an empty string.
//
// # Usage
//
//	p := prompt.Parse(r.FormValue("persona"))
//	messages, err := prompt.Build(prompt.Instruction(p), question)
//	if err != nil {
//	    return err
//	}
//	// Pass messages to llm.Provider.Chat(ctx, messages, chatOpts)
package prompt
