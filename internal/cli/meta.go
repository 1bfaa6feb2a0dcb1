package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func newMetaCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "meta <transfer-id>",
		Short: "Show metadata of a finalized transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			coord, err := g.coordinator(ctx)
			if err != nil {
				return err
			}

			meta, err := coord.Transport.GetMeta(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printHeader(out, meta.TransferID)
			printField(out, "file name", meta.FileName)
			printField(out, "content type", meta.ContentType)
			printField(out, "size", humanBytes(meta.Size))
			printField(out, "total chunks", meta.TotalChunks)
			printField(out, "finalized", meta.Finalized)
			if !meta.CreatedAt.IsZero() {
				printField(out, "created at", meta.CreatedAt.Local().Format(time.DateTime))
			}
			printInfo(out, "target %s", g.target)
			return nil
		},
	}
}
