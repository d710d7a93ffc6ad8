package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/crs-transform/internal/core/model"
)

type transformOptions struct {
	source string
	target string
	epoch  float64
	output string
}

// NewTransformCommand transforms a GeoJSON or CityJSON file, or stdin for "-".
func NewTransformCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &transformOptions{}
	cmd := &cobra.Command{
		Use:   "transform <file|->",
		Short: "Transform a GeoJSON or CityJSON document",
		Long: `Transform a GeoJSON or CityJSON document to the target CRS.

The source CRS is read from the document (the GeoJSON "crs" member or the
CityJSON metadata.referenceSystem) and falls back to --source-crs.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			h, err := rootOpts.handler(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			q := model.TransformRequest{Source: opts.source, Target: opts.target}
			if cmd.Flags().Changed("epoch") {
				q.Epoch = &opts.epoch
			}
			doc, err := h.Transform(cmd.Context(), body, q)
			if err != nil {
				return err
			}

			if opts.output == "" || opts.output == "-" {
				_, err = cmd.OutOrStdout().Write(append(doc.Body, '\n'))
				return err
			}
			if err := os.WriteFile(opts.output, doc.Body, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			if rootOpts.Verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s, %d bytes)\n", opts.output, doc.ContentType, len(doc.Body))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.source, "source-crs", "s", "", "source CRS when the document names none")
	cmd.Flags().StringVarP(&opts.target, "target-crs", "t", "", "target CRS (AUTH:CODE, URI or URN)")
	cmd.Flags().Float64Var(&opts.epoch, "epoch", 0, "coordinate epoch as decimal year")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("target-crs")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return b, nil
}
