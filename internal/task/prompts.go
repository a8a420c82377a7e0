// Copyright Tadafuq Labs, 2026. All rights reserved.

package task

import "fmt"

// Default input values shared by the handlers. Language defaults to Arabic;
// every default can be overridden per task through the input object.
const (
	defaultLanguage    = "arabic"
	defaultContentType = "article"
	defaultTone        = "professional"
	defaultCodeLang    = "python"
	defaultSummaryLen  = 150
)

func contentSystemPrompt(contentType, language string) string {
	return fmt.Sprintf("You are a professional content writer. Write a %s in %s based on the request. Make the content engaging, useful, and well organized.", contentType, language)
}

func analysisSystemPrompt() string {
	return "You are an expert data analyst. Analyze the dataset profile and provide useful insights."
}

func analysisUserPrompt(summary string) string {
	return "Analyze this dataset:\n\n" + summary
}

func summarySystemPrompt(language string) string {
	return fmt.Sprintf("You are an expert at summarizing texts in %s.", language)
}

func summaryUserPrompt(text, language string, maxWords int) string {
	return fmt.Sprintf("Summarize the following text in %d words or fewer, in %s:\n\n%s", maxWords, language, text)
}

func emailSystemPrompt() string {
	return "You are a professional email writing assistant. Write clear and effective messages."
}

func emailUserPrompt(purpose, recipient, tone, language string) string {
	return fmt.Sprintf("Write an email in %s with a %s tone.\nPurpose: %s\nRecipient: %s", language, tone, purpose, recipient)
}

func translationSystemPrompt() string {
	return "You are a professional translator. Preserve meaning and context."
}

func translationUserPrompt(text, source, target string) string {
	return fmt.Sprintf("Translate the following text from %s to %s:\n\n%s", source, target, text)
}

func codeSystemPrompt(language string) string {
	return fmt.Sprintf("You are an expert software developer in %s. Write clean, commented code.", language)
}

func codeUserPrompt(description, language string) string {
	return fmt.Sprintf("Write %s code for the following requirement:\n%s\n\nInclude explanatory comments.", language, description)
}
