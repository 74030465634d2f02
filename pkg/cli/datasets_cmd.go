package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func newDatasetsCmd(client *Client, defaultWorkspace *string) *cobra.Command {
	return &cobra.Command{
		Use:   "datasets [workspaceID]",
		Short: "List the datasets in a Power BI workspace",
		Long:  "List the datasets in a Power BI workspace. The workspace ID may be given as an argument or come from --workspace, PBIRAG_WORKSPACE, or the active profile.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			workspaceID := *defaultWorkspace
			if len(args) == 1 {
				workspaceID = args[0]
			}
			if workspaceID == "" {
				return fmt.Errorf("no workspace given: pass an ID or set --workspace or the profile's workspace")
			}

			resp, err := client.Do(http.MethodGet, "/datasets/"+url.PathEscape(workspaceID), nil, nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if err := CheckError(resp); err != nil {
				return err
			}

			// The service relays the upstream Power BI payload unchanged,
			// so render it as JSON in every output mode.
			var payload interface{}
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return PrintJSON(os.Stdout, payload)
		},
	}
}
