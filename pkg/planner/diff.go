package planner

import (
	"context"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/zereraz/igne-sub002/pkg/toolcatalog"
)

// GetDiff produces a unified-diff preview of what a write-shaped step would
// change, without mutating any state. Read-only steps have nothing to
// preview and return an empty diff. The preview may be requested at any
// time, including before approval.
func (e *Engine) GetDiff(ctx context.Context, planID, stepID string) (string, error) {
	_, step, err := e.lookupStep(planID, stepID)
	if err != nil {
		return "", err
	}
	if step.ReadOnly {
		return "", nil
	}

	path, _ := step.Params["path"].(string)
	if path == "" {
		return "", nil
	}

	current := ""
	if e.reader != nil {
		// side-read of the live resource; a missing file previews as empty
		if content, readErr := e.reader.ReadResource(ctx, path); readErr == nil {
			current = content
		}
	}

	proposed, ok := e.proposedContent(step, current)
	if !ok {
		return "", nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(current),
		B:        difflib.SplitLines(proposed),
		FromFile: fmt.Sprintf("%s (current)", path),
		ToFile:   fmt.Sprintf("%s (new)", path),
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate diff: %w", err)
	}
	return diff, nil
}

// proposedContent derives the content a step would leave behind at its
// target path, classified by the dispatcher command the tool maps to. Steps
// whose effect is not expressible as content (renames, folder creation) have
// no preview.
func (e *Engine) proposedContent(step *Step, current string) (string, bool) {
	spec, ok := e.catalog.Lookup(step.ToolID)
	if !ok {
		return "", false
	}

	switch spec.CommandID {
	case toolcatalog.CommandWriteFile:
		content, _ := step.Params["content"].(string)
		return content, true
	case toolcatalog.CommandAppendFile:
		content, _ := step.Params["content"].(string)
		return current + content, true
	case toolcatalog.CommandDeleteFile:
		return "", true
	default:
		return "", false
	}
}
