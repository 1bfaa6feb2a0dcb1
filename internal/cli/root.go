// Package cli — командная строка chunkxfer: загрузка, скачивание и метаданные
// передач напрямую на storage-узел или в S3-бакет.
package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sir_venger/chunkxfer/internal/logging"
	"github.com/sir_venger/chunkxfer/internal/transport"
	"github.com/sir_venger/chunkxfer/internal/usecase/transfer"
	"github.com/sir_venger/chunkxfer/pkg/chunkclient"
	"github.com/sir_venger/chunkxfer/pkg/s3transport"
)

var Version = "dev"

// globalOptions — флаги, общие для всех подкоманд.
type globalOptions struct {
	target     string
	debug      bool
	timeout    time.Duration
	headers    []string
	s3Profile  string
	s3Region   string
	s3Endpoint string
}

// NewRootCmd собирает дерево команд; вывод идёт в out.
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "chunkxfer",
		Short:         "Chunked file transfer to storage nodes and S3 buckets",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if opts.debug {
				level = "debug"
			}
			logging.Init(level)
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.target, "target", "t", os.Getenv("CHUNKXFER_TARGET"), "Storage node URL or s3://bucket/prefix")
	pf.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	pf.DurationVar(&opts.timeout, "timeout", 60*time.Second, "Per-request timeout for HTTP targets")
	pf.StringArrayVarP(&opts.headers, "header", "H", nil, "Extra HTTP header ('Name: value'); can be repeated")
	pf.StringVar(&opts.s3Profile, "s3-profile", "", "AWS shared config profile")
	pf.StringVar(&opts.s3Region, "s3-region", "", "AWS region override")
	pf.StringVar(&opts.s3Endpoint, "s3-endpoint", "", "Custom S3-compatible endpoint (MinIO etc.)")

	root.AddCommand(
		newUploadCmd(opts),
		newDownloadCmd(opts),
		newMetaCmd(opts),
	)
	return root
}

// Execute запускает CLI с аргументами процесса.
func Execute(ctx context.Context) error {
	root := NewRootCmd(os.Stdout)
	err := root.ExecuteContext(ctx)
	if err != nil {
		printError(os.Stderr, "%v", err)
	}
	return err
}

func (o *globalOptions) coordinator(ctx context.Context) (*transfer.Coordinator, error) {
	tr, err := transport.Dial(ctx, o.target, transport.Options{
		HTTP: chunkclient.Config{
			Timeout: o.timeout,
			Headers: parseHeaders(o.headers),
		},
		S3: s3transport.Options{
			Profile:  o.s3Profile,
			Region:   o.s3Region,
			Endpoint: o.s3Endpoint,
		},
	})
	if err != nil {
		return nil, err
	}
	return transfer.New(transfer.Deps{Transport: tr, Log: logging.Get("cli")}), nil
}

func parseHeaders(raw []string) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out[name] = strings.TrimSpace(value)
	}
	return out
}
