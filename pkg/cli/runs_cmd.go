package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newRunsCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect extraction run history",
	}

	cmd.AddCommand(newRunsListCmd(client))
	cmd.AddCommand(newRunsGetCmd(client))
	return cmd
}

type runSummary struct {
	ID               string    `json:"id"`
	DatasetID        string    `json:"datasetId"`
	Status           string    `json:"status"`
	ExtractedRecords int       `json:"extractedRecords"`
	IndexedDocuments int       `json:"indexedDocuments"`
	FailureCount     int       `json:"failureCount"`
	StartedAt        time.Time `json:"startedAt"`
	FinishedAt       time.Time `json:"finishedAt"`
}

func newRunsListCmd(client *Client) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent extraction runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			resp, err := client.Do(http.MethodGet, "/runs", q, nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if err := CheckError(resp); err != nil {
				return err
			}

			var result struct {
				Runs []runSummary `json:"runs"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, result)
			}
			columns := []string{"id", "dataset", "status", "extracted", "indexed", "failures", "started"}
			rows := make([][]string, 0, len(result.Runs))
			for _, run := range result.Runs {
				rows = append(rows, []string{
					run.ID,
					run.DatasetID,
					run.Status,
					strconv.Itoa(run.ExtractedRecords),
					strconv.Itoa(run.IndexedDocuments),
					strconv.Itoa(run.FailureCount),
					run.StartedAt.Format(time.RFC3339),
				})
			}
			PrintTable(os.Stdout, columns, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}

func newRunsGetCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <runID>",
		Short: "Show one run with its per-query outcomes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Do(http.MethodGet, "/runs/"+url.PathEscape(args[0]), nil, nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if err := CheckError(resp); err != nil {
				return err
			}

			var result struct {
				runSummary
				Queries []struct {
					QueryName string `json:"queryName"`
					Status    string `json:"status"`
					Stage     string `json:"stage,omitempty"`
					RowCount  int    `json:"rowCount"`
					BlobPath  string `json:"blobPath,omitempty"`
					Error     string `json:"error,omitempty"`
				} `json:"queries"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, result)
			}

			PrintDetail(os.Stdout, map[string]interface{}{
				"id":                result.ID,
				"dataset":           result.DatasetID,
				"status":            result.Status,
				"extracted_records": result.ExtractedRecords,
				"indexed_documents": result.IndexedDocuments,
				"failures":          result.FailureCount,
				"started_at":        result.StartedAt.Format(time.RFC3339),
				"finished_at":       result.FinishedAt.Format(time.RFC3339),
			})

			if len(result.Queries) > 0 {
				fmt.Fprintln(os.Stdout)
				columns := []string{"query", "status", "stage", "rows", "error"}
				rows := make([][]string, 0, len(result.Queries))
				for _, q := range result.Queries {
					rows = append(rows, []string{
						q.QueryName,
						q.Status,
						q.Stage,
						strconv.Itoa(q.RowCount),
						q.Error,
					})
				}
				PrintTable(os.Stdout, columns, rows)
			}
			return nil
		},
	}
}
