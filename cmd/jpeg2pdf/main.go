package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/onec-tools/invoice-recon/internal/convert"
)

func main() {
	var (
		out    string
		magick string
	)
	cmd := &cobra.Command{
		Use:          "jpeg2pdf <image.jpg> [image.jpg...]",
		Short:        "Combine JPEG scans into a single multi-page PDF",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			conv := convert.NewConverter(magick, nil, logger)
			if err := conv.Convert(cmd.Context(), args, out); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%d pages)\n", out, len(args))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output PDF path (required)")
	cmd.Flags().StringVar(&magick, "magick", "magick", "ImageMagick binary")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
