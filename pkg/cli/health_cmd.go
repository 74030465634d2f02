package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

func newHealthCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the service is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := client.Do(http.MethodGet, "/health", nil, nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if err := CheckError(resp); err != nil {
				return err
			}

			var result struct {
				Status  string `json:"status"`
				Service string `json:"service"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, result)
			}
			fmt.Fprintf(os.Stdout, "%s: %s\n", result.Service, result.Status)
			return nil
		},
	}
}
