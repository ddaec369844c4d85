package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/sfh/internal/config"
	"github.com/Dicklesworthstone/sfh/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the sfh configuration",
	}
	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigPathCmd(),
		newConfigInitCmd(),
		newConfigThemesCmd(),
	)
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return plainFormatter(cmd).OutputData(cfg, func(w io.Writer) error {
				return config.Print(cfg, w)
			})
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			return plainFormatter(cmd).OutputData(output.SuccessResponse{Success: true, Path: path}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, path)
				return err
			})
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefault(cfgFile)
			if err != nil {
				return output.NewCLIError("could not create config").
					WithCause(err.Error()).
					WithCode("CONFIG_EXISTS").
					WithHint("Edit the existing file or pass --config with a new path")
			}
			if IsJSONOutput() {
				return output.WriteJSON(cmd.OutOrStdout(), output.SuccessResponse{
					Success: true,
					Message: "created default config",
					Path:    path,
				}, true)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}
}

func newConfigThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the accepted theme names",
		RunE: func(cmd *cobra.Command, args []string) error {
			if IsJSONOutput() {
				return output.WriteJSON(cmd.OutOrStdout(), config.AvailableThemes, true)
			}
			t := output.NewTable(cmd.OutOrStdout(), "THEME", "PALETTE", "DARK")
			for _, th := range config.AvailableThemes {
				t.AddRow(th.Name, th.Palette, fmt.Sprintf("%t", th.Dark))
			}
			return t.Render()
		},
	}
}
