package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mossy-p/camrelay/internal/models"
	"github.com/spf13/cobra"
)

var flagURL string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show camera availability and peer counts of a running relay",
	Long: `Query a running relay's /api/status endpoint.

Examples:
  camrelay status
  camrelay status --url https://relay.example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := fetchStatus(&http.Client{Timeout: 5 * time.Second}, flagURL)
		if err != nil {
			return err
		}
		renderStatus(cmd.OutOrStdout(), st)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&flagURL, "url", "u", "http://localhost:8080", "Base URL of the relay")
}

func fetchStatus(client *http.Client, baseURL string) (models.RelayStatus, error) {
	var st models.RelayStatus

	resp, err := client.Get(strings.TrimRight(baseURL, "/") + "/api/status")
	if err != nil {
		return st, fmt.Errorf("failed to reach relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("relay returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("invalid status response: %w", err)
	}
	return st, nil
}

func renderStatus(w io.Writer, st models.RelayStatus) {
	camera := "offline"
	if st.CameraAvailable {
		camera = "online"
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Camera", camera},
		{"Viewers", st.Viewers},
		{"Connections", st.Connections},
	})
	t.Render()
}
