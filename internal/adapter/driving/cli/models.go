package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/detectpanel/internal/application"
	"github.com/ericfisherdev/detectpanel/internal/domain/model"
)

func (a *app) modelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"model"},
		Short:   "Manage detector models (list, upload, activate, delete, download)",
	}
	cmd.AddCommand(
		a.modelsListCommand(),
		a.modelsUploadCommand(),
		a.modelsActivateCommand(),
		a.modelsDeleteCommand(),
		a.modelsDownloadCommand(),
	)
	return cmd
}

func (a *app) modelsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List uploaded models",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			renderModels(a.out(), a.console.State().Models, a.opts.Clock.Now())
			return nil
		},
	}
}

func (a *app) modelsUploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a .pt model file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("model file: %w", err)
			}
			description, _ := cmd.Flags().GetString("description")

			f := model.LocalFile(args[0])
			a.console.SetUploadDraft(application.UploadDraft{File: &f, Description: description})
			return a.console.UploadModel(cmd.Context())
		},
	}
	cmd.Flags().StringP("description", "d", "", "model description")
	return cmd
}

func (a *app) modelsActivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "activate ID",
		Short: "Make a model the one used for detection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.authedID(args[0])
			if err != nil {
				return err
			}
			return a.console.ActivateModel(cmd.Context(), id)
		},
	}
}

func (a *app) modelsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.authedID(args[0])
			if err != nil {
				return err
			}
			return a.console.DeleteModel(cmd.Context(), id)
		},
	}
}

func (a *app) modelsDownloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download ID",
		Short: "Download a model file",
		Long: `Download a model file. Without --output the file is named after the
model's filename in the current directory; '-' writes to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.authedID(args[0])
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				output = a.modelFilename(id)
			}

			if output == "-" {
				_, err := a.console.DownloadModel(cmd.Context(), id, a.out())
				return err
			}

			n, err := a.downloadToFile(cmd.Context(), id, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.opts.Err, "Saved %s (%s).\n", output, humanize.Bytes(uint64(n)))
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "output path, '-' for stdout")
	return cmd
}

// downloadToFile writes model id to path. A partial file is removed on any
// failure, including a failed close.
func (a *app) downloadToFile(ctx context.Context, id int64, path string) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}

	n, err := a.console.DownloadModel(ctx, id, f)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("write output file: %w", cerr)
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return n, nil
}

// modelFilename returns the mirrored filename for id, or a generated name.
func (a *app) modelFilename(id int64) string {
	for _, m := range a.console.State().Models {
		if m.ID == id && m.Filename != "" {
			return filepath.Base(m.Filename)
		}
	}
	return "model-" + strconv.FormatInt(id, 10) + ".pt"
}
