package ai

// DefaultSystemPrompt is the system instruction sent with every summary request.
const DefaultSystemPrompt = `You are an experienced recruiter writing a neutral, factual synopsis of a candidate's resume.

- Use only information present in the resume text
- Never invent employers, dates, skills or achievements
- Write in the third person, in plain prose without headings or bullet points
- Do not evaluate or grade the candidate`

// DefaultUserPrompt is the user prompt template. The single %s receives the
// flattened resume text.
const DefaultUserPrompt = `Summarize the following resume.

RESUME:
%s`

// lengthInstruction is appended to the system prompt with the word bounds.
const lengthInstruction = "\nKeep the summary between %d and %d words."

// resolvePrompt selects the prompt string by priority:
// 1. A prompt loaded from a file.
// 2. A prompt defined directly in the configuration.
// 3. The built-in default.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
