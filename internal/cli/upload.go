package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sir_venger/chunkxfer/internal/models"
	"github.com/sir_venger/chunkxfer/internal/usecase/transfer"
)

type uploadOptions struct {
	chunkSize int64
	workers   int
}

func newUploadCmd(g *globalOptions) *cobra.Command {
	opts := &uploadOptions{}

	cmd := &cobra.Command{
		Use:   "upload [files...]",
		Short: "Upload files chunk by chunk",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, g, opts, args)
		},
	}
	cmd.Flags().Int64VarP(&opts.chunkSize, "chunk-size", "s", transfer.DefaultChunkSize, "Chunk size in bytes")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 1, "Number of files uploaded in parallel")
	return cmd
}

func runUpload(cmd *cobra.Command, g *globalOptions, opts *uploadOptions, files []string) error {
	if opts.workers <= 0 {
		return models.NewValidationError("workers", opts.workers, "must be positive")
	}
	ctx := cmd.Context()
	coord, err := g.coordinator(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	live := opts.workers == 1 && len(files) == 1

	var eg errgroup.Group
	eg.SetLimit(opts.workers)
	failed := make([]error, len(files))

	for i, path := range files {
		i, path := i, path
		eg.Go(func() error {
			bar := newProgressBar(out, filepath.Base(path), live)
			res, err := uploadFile(ctx, coord, path, opts.chunkSize, bar.Update)
			if err != nil {
				bar.Fail(err)
				failed[i] = fmt.Errorf("%s: %w", path, err)
				return nil
			}
			bar.Finish(fmt.Sprintf("%s %s (%s, %d chunks)", symbolArrow, res.TransferID, humanBytes(res.Size), res.TotalChunks))
			return nil
		})
	}
	_ = eg.Wait()

	if err = errors.Join(failed...); err != nil {
		return err
	}
	if len(files) > 1 {
		printSuccess(out, "%d files uploaded to %s", len(files), g.target)
	}
	return nil
}

func uploadFile(ctx context.Context, coord *transfer.Coordinator, path string, chunkSize int64, onProgress transfer.ProgressFunc) (models.UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.UploadResult{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.UploadResult{}, err
	}
	if info.IsDir() {
		return models.UploadResult{}, models.NewValidationError("file", path, "is a directory")
	}

	return coord.Upload(ctx, transfer.UploadRequest{
		Source:      f,
		Size:        info.Size(),
		FileName:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		ChunkSize:   chunkSize,
		OnProgress:  onProgress,
	})
}
