package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vidup/internal/config"
	"vidup/internal/export"
	"vidup/internal/media"
	"vidup/internal/services"
	"vidup/internal/ui"
)

type uploadOutput struct {
	TaskID   string `json:"task_id"`
	File     string `json:"file"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mime_type"`
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a video and print the task id without waiting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			file, err := media.Inspect(args[0])
			if err != nil {
				return err
			}
			limits := media.Limits{MIMEType: cfg.Upload.MIMEType, MaxBytes: cfg.MaxUploadBytes()}
			if err := limits.Validate(file); err != nil {
				return err
			}
			resp, err := newProcessorClient(cfg, uuid.NewString()).Upload(cmd.Context(), file)
			if err != nil {
				return cliError(err)
			}
			if asJSON {
				return writeJSON(cmd, uploadOutput{TaskID: resp.TaskID, File: file.Name, Size: file.Size, MIMEType: file.MIMEType})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s)\nTask ID: %s\n", file.Name, media.FormatSize(file.Size), resp.TaskID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

type statusOutput struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Known   bool   `json:"known"`
	Message string `json:"message,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status <task-id>",
		Short: "Query the processing status of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			taskID := strings.TrimSpace(args[0])
			resp, err := newProcessorClient(cfg, uuid.NewString()).Status(cmd.Context(), taskID)
			if err != nil {
				return cliError(err)
			}
			out := statusOutput{TaskID: taskID, Status: string(resp.Status), Known: resp.Status.Known(), Message: resp.Message}
			if asJSON {
				return writeJSON(cmd, out)
			}
			rows := [][]string{
				{"Task ID", out.TaskID},
				{"Status", out.Status},
			}
			if !out.Known {
				rows = append(rows, []string{"Note", "unrecognized status"})
			}
			if out.Message != "" {
				rows = append(rows, []string{"Message", out.Message})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var name string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "fetch <task-id>",
		Short: "Download the processed video of a completed task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			taskID := strings.TrimSpace(args[0])
			data, err := newProcessorClient(cfg, uuid.NewString()).Result(cmd.Context(), taskID)
			if err != nil {
				return cliError(err)
			}

			dir := strings.TrimSpace(outputDir)
			if dir == "" {
				dir = cfg.Paths.OutputDir
			} else if expanded, err := config.ExpandPath(dir); err == nil {
				dir = expanded
			}
			if dir == "" {
				dir = "."
			}
			original := strings.TrimSpace(name)
			if original == "" {
				original = taskID
			}
			path, err := export.NewDir(dir).Save(cmd.Context(), media.ProcessedName(original), bytes.NewReader(data))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", path, media.FormatSize(int64(len(data))))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Original file name used to derive <name>_processed.mp4 (defaults to the task id)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for the processed video")
	return cmd
}

// cliError prefixes the error kind so scripted callers can tell failures apart.
func cliError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", services.KindOf(err), err)
}
