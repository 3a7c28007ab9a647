package pipeline

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jknoll/agentic-orchestration/internal/agent"
	"github.com/jknoll/agentic-orchestration/internal/storage"
)

const (
	ReadmeFile = "README.md"
	PromptFile = "prompt.md"
)

// RenderReadme documents one finished generation in Markdown.
func RenderReadme(out *agent.Output, generatedAt time.Time) string {
	var sb strings.Builder
	p := out.Product
	fmt.Fprintf(&sb, "# Ad Generation: %s\n\n", p.Title)
	sb.WriteString("## Input\n\n")
	fmt.Fprintf(&sb, "**Product URL:** %s\n\n", p.URL)
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", generatedAt.UTC().Format(time.RFC3339))
	sb.WriteString("## Product Information\n\n")
	fmt.Fprintf(&sb, "- **Title:** %s\n", p.Title)
	if p.Brand != "" {
		fmt.Fprintf(&sb, "- **Brand:** %s\n", p.Brand)
	}
	if p.Price != "" {
		fmt.Fprintf(&sb, "- **Price:** %s\n", p.Price)
	}
	if p.Description != "" {
		fmt.Fprintf(&sb, "- **Description:** %s\n", preview(p.Description, 200))
	}
	sb.WriteString("\n## Video Prompt\n\n```\n")
	sb.WriteString(out.Prompt)
	sb.WriteString("\n```\n\n## Generated Videos\n\n")
	if out.Outcome != nil {
		for _, v := range out.Outcome.Results {
			fmt.Fprintf(&sb, "### %s\n\n", v.Provider)
			fmt.Fprintf(&sb, "- **Task ID:** %s\n", v.TaskID)
			fmt.Fprintf(&sb, "- **Status:** %s\n", v.Status)
			if v.LocalPath != "" {
				name := filepath.Base(v.LocalPath)
				fmt.Fprintf(&sb, "- **File:** [%s](./%s)\n", name, name)
			}
			sb.WriteString("\n")
		}
		if len(out.Outcome.Warnings) > 0 {
			sb.WriteString("## Warnings\n\n")
			for _, w := range out.Outcome.Warnings {
				fmt.Fprintf(&sb, "- %s\n", w)
			}
		}
	}
	return sb.String()
}

// WriteSummary stores README.md and prompt.md under dir inside files.
func WriteSummary(ctx context.Context, files *storage.FileStore, dir string, out *agent.Output, generatedAt time.Time) error {
	if _, err := files.Write(ctx, path.Join(dir, ReadmeFile), []byte(RenderReadme(out, generatedAt))); err != nil {
		return fmt.Errorf("pipeline: write readme: %w", err)
	}
	if _, err := files.Write(ctx, path.Join(dir, PromptFile), []byte(out.Prompt)); err != nil {
		return fmt.Errorf("pipeline: write prompt: %w", err)
	}
	return nil
}
