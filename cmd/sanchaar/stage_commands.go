package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sanchaar/internal/content"
	"sanchaar/internal/ingest"
	"sanchaar/internal/moderation"
	"sanchaar/internal/pipeline"
	"sanchaar/internal/rendition"
)

func newStageCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newIngestCommand(ctx),
		newTranscribedCommand(ctx),
		newModerateCommand(ctx),
		newConvertCommand(ctx),
		newDistributeCommand(ctx),
	}
}

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var bucket, key, eventID string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Record a newly uploaded object and submit it for transcription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, func(p *pipeline.Pipeline) error {
				item, err := p.Trigger.Ingest(cmd.Context(), ingest.Event{Bucket: bucket, Key: key, EventID: eventID})
				return ctx.printStageResult(cmd, item, err)
			})
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket holding the uploaded object")
	cmd.Flags().StringVar(&key, "key", "", "Object key of the upload")
	cmd.Flags().StringVar(&eventID, "event-id", "", "Storage event identifier used for idempotent replays")
	_ = cmd.MarkFlagRequired("bucket")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newTranscribedCommand(ctx *commandContext) *cobra.Command {
	var jobName, transcriptURI string

	cmd := &cobra.Command{
		Use:   "transcribed <content-id>",
		Short: "Record a completed transcription and advance to analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, func(p *pipeline.Pipeline) error {
				item, err := p.Trigger.CompleteTranscription(cmd.Context(), ingest.Completion{
					ContentID:     args[0],
					JobName:       jobName,
					TranscriptURI: transcriptURI,
				})
				return ctx.printStageResult(cmd, item, err)
			})
		},
	}

	cmd.Flags().StringVar(&jobName, "job", "", "Transcription job name reported by the service")
	cmd.Flags().StringVar(&transcriptURI, "transcript", "", "Location of the transcript output")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func newModerateCommand(ctx *commandContext) *cobra.Command {
	var mediaURI string

	cmd := &cobra.Command{
		Use:   "moderate <content-id>",
		Short: "Screen content with face, text and moderation-label detection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, func(p *pipeline.Pipeline) error {
				item, err := p.Gate.Moderate(cmd.Context(), moderation.Request{ContentID: args[0], MediaURI: mediaURI})
				return ctx.printStageResult(cmd, item, err)
			})
		},
	}

	cmd.Flags().StringVar(&mediaURI, "media", "", "Media locator to screen (defaults to the item's source)")
	return cmd
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var ratios []string
	var mediaURI string

	cmd := &cobra.Command{
		Use:   "convert <content-id>",
		Short: "Submit one conversion job per requested aspect ratio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd, func(p *pipeline.Pipeline) error {
				item, err := p.Planner.Plan(cmd.Context(), rendition.Request{
					ContentID: args[0],
					Ratios:    ratios,
					MediaURI:  mediaURI,
				})
				return ctx.printStageResult(cmd, item, err)
			})
		},
	}

	cmd.Flags().StringSliceVar(&ratios, "ratio", nil, "Aspect ratio to render (repeatable, e.g. 9:16)")
	cmd.Flags().StringVar(&mediaURI, "media", "", "Media locator to convert (defaults to the item's source)")
	_ = cmd.MarkFlagRequired("ratio")
	return cmd
}

func newDistributeCommand(ctx *commandContext) *cobra.Command {
	var platforms []string
	var variantsPath string
	var mediaURLs map[string]string

	cmd := &cobra.Command{
		Use:   "distribute <content-id>",
		Short: "Publish caption variants to one or more platforms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variants, err := readVariants(variantsPath)
			if err != nil {
				return err
			}
			targets := make([]content.Platform, 0, len(platforms))
			for _, platform := range platforms {
				targets = append(targets, content.ParsePlatform(platform))
			}
			return ctx.withPipeline(cmd, func(p *pipeline.Pipeline) error {
				item, err := p.Distribute(cmd.Context(), pipeline.DistributeRequest{
					ContentID: args[0],
					Platforms: targets,
					Variants:  variants,
					MediaURLs: mediaURLs,
				})
				return ctx.printStageResult(cmd, item, err)
			})
		},
	}

	cmd.Flags().StringSliceVar(&platforms, "platform", nil, "Target platform (repeatable: whatsapp, sharechat, instagram)")
	cmd.Flags().StringVar(&variantsPath, "variants", "", "JSON file holding the caption variants")
	cmd.Flags().StringToStringVar(&mediaURLs, "media-url", nil, "Override the media URL for an aspect ratio (ratio=url)")
	_ = cmd.MarkFlagRequired("platform")
	_ = cmd.MarkFlagRequired("variants")
	return cmd
}

func readVariants(path string) ([]content.Variant, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("variants file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variants: %w", err)
	}
	var variants []content.Variant
	if err := json.Unmarshal(data, &variants); err != nil {
		return nil, fmt.Errorf("parse variants %s: %w", path, err)
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("variants file %s holds no variants", path)
	}
	return variants, nil
}

// printStageResult renders whatever version the stage left behind, including
// terminal versions written alongside a failure, and passes the error on.
func (c *commandContext) printStageResult(cmd *cobra.Command, item *content.Item, stageErr error) error {
	if item != nil {
		if err := c.emitItem(cmd, item); err != nil {
			return err
		}
	}
	return stageErr
}
