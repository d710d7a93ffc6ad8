package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/crs-transform/internal/api"
	"github.com/mohammed-shakir/crs-transform/internal/core/model"
	"github.com/mohammed-shakir/crs-transform/internal/core/router"
)

type pointOptions struct {
	source string
	target string
	epoch  float64
	wkt    bool
}

// NewPointCommand transforms a single x,y[,z] position.
func NewPointCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &pointOptions{}
	cmd := &cobra.Command{
		Use:          "point <x,y[,z]>",
		Short:        "Transform a single position",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := router.ParseCoordinates(args[0])
			if err != nil {
				return err
			}
			h, err := rootOpts.handler(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			q := model.PointRequest{
				TransformRequest: model.TransformRequest{Source: opts.source, Target: opts.target},
				Coordinates:      cs,
			}
			if cmd.Flags().Changed("epoch") {
				q.Epoch = &opts.epoch
			}
			out, dst, err := h.TransformPoint(cmd.Context(), q)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch {
			case opts.wkt:
				_, err = fmt.Fprintln(w, api.WKT(out))
			case rootOpts.Format == "json":
				err = json.NewEncoder(w).Encode(map[string]any{
					"type":        "Point",
					"coordinates": []float64(out),
					"crs":         dst.AuthorityCode(),
				})
			default:
				parts := make([]string, len(out))
				for i, v := range out {
					parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
				}
				_, err = fmt.Fprintln(w, strings.Join(parts, ","))
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&opts.source, "source-crs", "s", "", "source CRS (AUTH:CODE, URI or URN)")
	cmd.Flags().StringVarP(&opts.target, "target-crs", "t", "", "target CRS (AUTH:CODE, URI or URN)")
	cmd.Flags().Float64Var(&opts.epoch, "epoch", 0, "coordinate epoch as decimal year")
	cmd.Flags().BoolVar(&opts.wkt, "wkt", false, "print the result as WKT")
	_ = cmd.MarkFlagRequired("source-crs")
	_ = cmd.MarkFlagRequired("target-crs")
	return cmd
}
