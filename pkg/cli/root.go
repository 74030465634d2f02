// Package cli implements the pbirag command-line client for the extraction
// service API.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]interface{}{
				"error": err.Error(),
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				errObj["http_status"] = apiErr.HTTPStatus
				errObj["code"] = apiErr.Code
			}
			_ = PrintJSON(os.Stdout, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		host      string
		token     string
		workspace string
		output    string
		profile   string
	)

	rootCmd := &cobra.Command{
		Use:           "pbirag",
		Short:         "Power BI RAG extraction service CLI",
		Long:          "Command-line interface for the Power BI RAG extraction service API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "API host URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authentication")
	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", "", "Default Power BI workspace ID")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "Config profile to use")

	client := NewClient(host, token)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		// Precedence: flag > PBIRAG_* env > profile > default.
		applyEnvOverrides(cmd.Flags())

		cfg, err := LoadUserConfig()
		if err != nil {
			// Config file is optional.
			cfg = &UserConfig{
				CurrentProfile: "default",
				Profiles:       map[string]Profile{},
			}
		}

		p, err := cfg.ActiveProfile(profile)
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("host") && p.Host != "" {
			host = p.Host
		}
		if !cmd.Flags().Changed("token") && p.Token != "" {
			token = p.Token
		}
		if !cmd.Flags().Changed("workspace") && p.Workspace != "" {
			workspace = p.Workspace
		}
		if !cmd.Flags().Changed("output") && p.Output != "" {
			output = p.Output
		}

		if err := validateOutputFormat(output); err != nil {
			return err
		}

		client.BaseURL = strings.TrimSuffix(host, "/")
		client.Token = token
		return nil
	}

	rootCmd.AddCommand(newExtractCmd(client))
	rootCmd.AddCommand(newDatasetsCmd(client, &workspace))
	rootCmd.AddCommand(newRunsCmd(client))
	rootCmd.AddCommand(newHealthCmd(client))
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// applyEnvOverrides fills any flag the user did not pass from its matching
// PBIRAG_* environment variable, marking it changed so the profile fallback
// skips it.
func applyEnvOverrides(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		env := "PBIRAG_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if v := os.Getenv(env); v != "" {
			_ = flags.Set(f.Name, v)
		}
	})
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
