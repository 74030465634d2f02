package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newExtractCmd(client *Client) *cobra.Command {
	var (
		dataset     string
		queries     []string
		queriesFile string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run the extraction pipeline for a dataset",
		Long:  "Execute DAX queries against a Power BI dataset, persist the results to blob storage, and index them for retrieval.",
		Example: `  # Run one ad-hoc query
  pbirag extract --dataset 2a514bf4 --query "sales=EVALUATE VALUES(Sales)"

  # Run the queries from a YAML file
  pbirag extract --dataset 2a514bf4 --queries-file queries.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			daxQueries := map[string]string{}
			if queriesFile != "" {
				data, err := os.ReadFile(queriesFile) //nolint:gosec // path comes from the user's own flag
				if err != nil {
					return fmt.Errorf("read queries file: %w", err)
				}
				if err := yaml.Unmarshal(data, &daxQueries); err != nil {
					return fmt.Errorf("parse queries file: %w", err)
				}
			}
			for _, q := range queries {
				name, text, ok := strings.Cut(q, "=")
				if !ok {
					return fmt.Errorf("invalid --query %q: expected name=DAX", q)
				}
				daxQueries[name] = text
			}
			if len(daxQueries) == 0 {
				return fmt.Errorf("no queries given: use --query or --queries-file")
			}

			body := map[string]interface{}{
				"datasetId":  dataset,
				"daxQueries": daxQueries,
			}
			resp, err := client.Do(http.MethodPost, "/extract-and-index", nil, body)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if err := CheckError(resp); err != nil {
				return err
			}

			var result extractResult
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, result)
			}
			fmt.Fprintf(os.Stdout, "Run %s: %s\n", result.RunID, result.Status)
			fmt.Fprintf(os.Stdout, "Extracted records: %d\n", result.ExtractedRecords)
			fmt.Fprintf(os.Stdout, "Indexed documents: %d\n", result.IndexedDocuments)
			for _, f := range result.Failures {
				fmt.Fprintf(os.Stdout, "Failed %s (%s): %s\n", f.Query, f.Stage, f.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "Power BI dataset ID (required)")
	cmd.Flags().StringArrayVar(&queries, "query", nil, "Named DAX query as name=DAX (repeatable)")
	cmd.Flags().StringVar(&queriesFile, "queries-file", "", "YAML file mapping query names to DAX text")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

type extractResult struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	ExtractedRecords int    `json:"extractedRecords"`
	IndexedDocuments int    `json:"indexedDocuments"`
	RunID            string `json:"runId"`
	Failures         []struct {
		Query string `json:"query"`
		Stage string `json:"stage"`
		Error string `json:"error"`
	} `json:"failures,omitempty"`
}
