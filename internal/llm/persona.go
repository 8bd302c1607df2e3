package llm

// Persona names selectable through AGENT_TYPE. The system instruction is
// fixed at process start and never changes per request.
const (
	PersonaCodingAssistant = "coding_assistant"
	PersonaDataAnalyst     = "data_analyst"
	PersonaCreativeWriter  = "creative_writer"
	PersonaTutor           = "tutor"
)

var agentPrompts = map[string]string{
	PersonaCodingAssistant: `You are an expert software engineer.
Provide clean code, explanations, and best practices.
Format code in markdown with syntax highlighting.`,

	PersonaDataAnalyst: `You are a senior data scientist.
Provide data analysis code, visualizations, and insights.
Use pandas, numpy, and visualization libraries.`,

	PersonaCreativeWriter: `You are a creative writer and storyteller.
Write engaging narratives, stories, and creative content.`,

	PersonaTutor: `You are a patient educational tutor.
Explain concepts clearly with examples and practice problems.`,
}

// SystemPrompt returns the instruction text for the named persona,
// falling back to the coding assistant for unknown selectors.
func SystemPrompt(persona string) string {
	if prompt, ok := agentPrompts[persona]; ok {
		return prompt
	}
	return agentPrompts[PersonaCodingAssistant]
}
