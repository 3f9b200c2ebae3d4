package mcp

import (
	"context"
	"strings"

	"github.com/mdombrov-33/go-promptguard/detector"
)

// filteredMarker replaces review text that looks like a prompt injection.
const filteredMarker = "[content filtered for security]"

// promptGuard screens review bodies before they reach the model. Pattern and
// statistical detectors only, no LLM judge.
var promptGuard = detector.New(
	detector.WithThreshold(0.6),
	detector.WithAllDetectors(),
	detector.WithMaxInputLength(1000),
)

// injectionPatterns backs up the detector with plain substring checks.
var injectionPatterns = []string{
	"ignore previous",
	"ignore all previous",
	"ignore above",
	"disregard previous",
	"disregard all previous",
	"you are now",
	"new instructions",
	"system prompt",
	"<system>",
	"</system>",
}

func detectInjection(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if !promptGuard.Detect(ctx, text).Safe {
		return true
	}
	lower := strings.ToLower(text)
	for _, pattern := range injectionPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// screenBody checks a markdown body paragraph by paragraph and replaces the
// flagged ones with filteredMarker. It reports how many were replaced.
func screenBody(ctx context.Context, body string) (string, int) {
	paragraphs := strings.Split(body, "\n\n")
	filtered := 0
	for i, p := range paragraphs {
		if detectInjection(ctx, p) {
			paragraphs[i] = filteredMarker
			filtered++
		}
	}
	return strings.Join(paragraphs, "\n\n"), filtered
}
