package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sir_venger/chunkxfer/internal/usecase/transfer"
)

type downloadOptions struct {
	totalChunks int
	output      string
}

func newDownloadCmd(g *globalOptions) *cobra.Command {
	opts := &downloadOptions{}

	cmd := &cobra.Command{
		Use:   "download <transfer-id>",
		Short: "Download and reassemble a finalized transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, g, opts, args[0])
		},
	}
	cmd.Flags().IntVarP(&opts.totalChunks, "total-chunks", "n", -1, "Chunk count if known; otherwise resolved from metadata")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file path (defaults to the stored file name)")
	return cmd
}

func runDownload(cmd *cobra.Command, g *globalOptions, opts *downloadOptions, transferID string) error {
	ctx := cmd.Context()
	coord, err := g.coordinator(ctx)
	if err != nil {
		return err
	}

	req := transfer.DownloadRequest{TransferID: transferID}
	if opts.totalChunks >= 0 {
		total := opts.totalChunks
		req.TotalChunks = &total
	}

	out := cmd.OutOrStdout()
	bar := newProgressBar(out, transferID, true)
	req.OnProgress = bar.Update

	art, err := coord.Download(ctx, req)
	if err != nil {
		bar.Fail(err)
		return err
	}

	path := opts.output
	if path == "" {
		path = filepath.Base(art.FileName)
	}
	if path == "" || path == "." || path == string(filepath.Separator) {
		path = art.TransferID
	}
	if err = os.WriteFile(path, art.Data, 0o644); err != nil {
		bar.Fail(err)
		return err
	}

	bar.Finish(fmt.Sprintf("%s %s (%s)", symbolArrow, path, humanBytes(art.Size())))
	return nil
}
