package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/sfh/internal/output"
)

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := output.VersionResponse{
				TimestampedResponse: output.NewTimestamped(),
				Version:             Version,
				Commit:              Commit,
				BuiltAt:             Date,
				GoVersion:           goVersion(),
				Platform:            goPlatform(),
			}
			return plainFormatter(cmd).OutputData(resp, func(w io.Writer) error {
				if short {
					_, err := fmt.Fprintln(w, Version)
					return err
				}
				fmt.Fprintf(w, "sfh version %s\n", Version)
				fmt.Fprintf(w, "  commit:    %s\n", Commit)
				fmt.Fprintf(w, "  built:     %s\n", Date)
				fmt.Fprintf(w, "  go:        %s\n", goVersion())
				_, err := fmt.Fprintf(w, "  platform:  %s\n", goPlatform())
				return err
			})
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")
	return cmd
}
