package services

import "fmt"

const (
	PersonaNone     = "none"
	PersonaContract = "contract"
)

// ContractPersona restricts the model to drafting contracts.
const ContractPersona = `You are a contract drafting assistant. You only generate contracts.
Write every contract in plaintext: no markdown, no code fences, no commentary before or after the document.
Use the parties, terms and other details the user provides, and leave clearly marked blanks for anything missing.
If the user asks for anything other than a contract, politely refuse and explain that you can only generate contracts.`

// ResolveSystemPrompt picks the system instruction for every conversation.
// An explicit override wins over the named persona.
func ResolveSystemPrompt(persona, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	switch persona {
	case "", PersonaNone:
		return "", nil
	case PersonaContract:
		return ContractPersona, nil
	default:
		return "", fmt.Errorf("unknown CHAT_PERSONA %q (want %q or %q)", persona, PersonaNone, PersonaContract)
	}
}
