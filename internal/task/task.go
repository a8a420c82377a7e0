// Copyright Tadafuq Labs, 2026. All rights reserved.

// Package task implements one handler per task type: each builds prompts for
// the chat backend and shapes the model output into a typed result.
package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/tadafuq/workflow-builder/internal/ai"
	"github.com/tadafuq/workflow-builder/internal/dataset"
	"github.com/tadafuq/workflow-builder/pkg/types"
)

// Registry dispatches task execution by type.
type Registry struct {
	Backend ai.ChatBackend
	AI      types.AIConfig
	Store   types.StoreConfig
}

// NewRegistry builds a Registry over the given backend and configuration.
func NewRegistry(backend ai.ChatBackend, aiCfg types.AIConfig, storeCfg types.StoreConfig) *Registry {
	return &Registry{Backend: backend, AI: aiCfg, Store: storeCfg}
}

// Execute runs the handler for the task's type and returns its typed result.
// The result marshals to the task's output JSON.
func (r *Registry) Execute(ctx context.Context, t *types.Task) (any, error) {
	switch t.Type {
	case types.TaskContentWriting:
		return r.content(ctx, t.Input)
	case types.TaskDataAnalysis:
		return r.analyze(ctx, t.Input)
	case types.TaskTextSummarization:
		return r.summarize(ctx, t.Input)
	case types.TaskEmailGeneration:
		return r.email(ctx, t.Input)
	case types.TaskTranslation:
		return r.translate(ctx, t.Input)
	case types.TaskCodeGeneration:
		return r.code(ctx, t.Input)
	default:
		return nil, fmt.Errorf("unsupported task type %q", t.Type)
	}
}

func (r *Registry) complete(ctx context.Context, req ai.Request) (string, error) {
	return ai.CompleteWithRetry(ctx, r.Backend, req, r.AI.MaxRetries)
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func (r *Registry) content(ctx context.Context, in types.TaskInput) (any, error) {
	prompt := in.String("prompt", "")
	if prompt == "" {
		return nil, fmt.Errorf("content_writing requires a %q input", "prompt")
	}
	contentType := in.String("content_type", defaultContentType)
	language := in.String("language", defaultLanguage)

	out, err := r.complete(ctx, ai.Request{
		System: contentSystemPrompt(contentType, language),
		User:   prompt,
	})
	if err != nil {
		return nil, err
	}

	return types.ContentResult{
		Content:     out,
		WordCount:   wordCount(out),
		ContentType: contentType,
		Language:    language,
	}, nil
}

func (r *Registry) analyze(ctx context.Context, in types.TaskInput) (any, error) {
	dataPath := in.String("data_path", "")
	if dataPath == "" {
		return nil, fmt.Errorf("data_analysis requires a %q input", "data_path")
	}

	profile, err := dataset.Load(dataPath, r.Store.MaxFileSize)
	if err != nil {
		return nil, err
	}

	insights, err := r.complete(ctx, ai.Request{
		System:    analysisSystemPrompt(),
		User:      analysisUserPrompt(profile.Summary()),
		MaxTokens: 1000,
	})
	if err != nil {
		return nil, err
	}

	return types.AnalysisResult{
		Rows:       profile.Rows,
		Columns:    len(profile.Columns),
		Names:      profile.Columns,
		Types:      profile.Types,
		Missing:    profile.Missing,
		Stats:      profile.Stats,
		AIInsights: insights,
	}, nil
}

func (r *Registry) summarize(ctx context.Context, in types.TaskInput) (any, error) {
	text := in.String("text", "")
	if text == "" {
		return nil, fmt.Errorf("text_summarization requires a %q input", "text")
	}
	maxWords := in.Int("max_length", defaultSummaryLen)
	language := in.String("language", defaultLanguage)

	out, err := r.complete(ctx, ai.Request{
		System:    summarySystemPrompt(language),
		User:      summaryUserPrompt(text, language, maxWords),
		MaxTokens: maxWords * 2,
	})
	if err != nil {
		return nil, err
	}

	originalWords := wordCount(text)
	summaryWords := wordCount(out)
	ratio := 0.0
	if originalWords > 0 {
		ratio = float64(summaryWords) / float64(originalWords)
	}

	return types.SummaryResult{
		OriginalLength:   originalWords,
		Summary:          out,
		SummaryLength:    summaryWords,
		CompressionRatio: ratio,
	}, nil
}

func (r *Registry) email(ctx context.Context, in types.TaskInput) (any, error) {
	purpose := in.String("purpose", "")
	if purpose == "" {
		return nil, fmt.Errorf("email_generation requires a %q input", "purpose")
	}
	recipient := in.String("recipient", "")
	tone := in.String("tone", defaultTone)
	language := in.String("language", defaultLanguage)

	out, err := r.complete(ctx, ai.Request{
		System:    emailSystemPrompt(),
		User:      emailUserPrompt(purpose, recipient, tone, language),
		MaxTokens: 800,
	})
	if err != nil {
		return nil, err
	}

	return types.EmailResult{
		EmailContent: out,
		Purpose:      purpose,
		Tone:         tone,
		Language:     language,
	}, nil
}

func (r *Registry) translate(ctx context.Context, in types.TaskInput) (any, error) {
	text := in.String("text", "")
	if text == "" {
		return nil, fmt.Errorf("translation requires a %q input", "text")
	}
	source := in.String("source_language", "auto")
	target := in.String("target_language", defaultLanguage)

	// Rough token budget: translations run about the length of the input.
	budget := wordCount(text) * 2
	if budget < 200 {
		budget = 200
	}

	out, err := r.complete(ctx, ai.Request{
		System:    translationSystemPrompt(),
		User:      translationUserPrompt(text, source, target),
		MaxTokens: budget,
	})
	if err != nil {
		return nil, err
	}

	return types.TranslationResult{
		OriginalText:   text,
		TranslatedText: out,
		SourceLanguage: source,
		TargetLanguage: target,
	}, nil
}

func (r *Registry) code(ctx context.Context, in types.TaskInput) (any, error) {
	description := in.String("description", "")
	if description == "" {
		return nil, fmt.Errorf("code_generation requires a %q input", "description")
	}
	language := in.String("programming_language", defaultCodeLang)

	out, err := r.complete(ctx, ai.Request{
		System:    codeSystemPrompt(language),
		User:      codeUserPrompt(description, language),
		MaxTokens: 1500,
	})
	if err != nil {
		return nil, err
	}

	return types.CodeResult{
		Code:                out,
		ProgrammingLanguage: language,
		Description:         description,
	}, nil
}
