package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"idservices-admin/internal/auth"
	"idservices-admin/internal/domains/statistics/model"
	"idservices-admin/internal/infrastructure/apiclient"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Statistics export commands",
}

var exportStatisticsCmd = &cobra.Command{
	Use:   "statistics",
	Short: "Request a statistics export and wait for the file",
	Long: `Request a statistics export from the console server.

The export runs in the background worker. By default the command polls
the export until it is done and prints the download link.

Example:
  idadmin export statistics --type PROGRESS_ISBN --from 2024-01-01 --to 2024-01-31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		reportType, _ := flags.GetString("type")
		from, _ := flags.GetString("from")
		to, _ := flags.GetString("to")
		format, _ := flags.GetString("format")
		noWait, _ := flags.GetBool("no-wait")
		interval, _ := flags.GetDuration("interval")
		timeout, _ := flags.GetDuration("timeout")

		req := model.CreateExportRequest{
			Type:      model.ReportType(reportType),
			BeginDate: from,
			EndDate:   to,
			Format:    model.Format(format),
		}
		return RunExportStatistics(cmd.Context(), cmd.OutOrStdout(), req, exportOptions{
			Wait:     !noWait,
			Interval: interval,
			Timeout:  timeout,
		})
	},
}

func init() {
	exportStatisticsCmd.Flags().String("type", "", "Report type, e.g. MONTHLY, PROGRESS_ISBN, ISSN_PUBLICATIONS")
	exportStatisticsCmd.Flags().String("from", "", "Begin date (YYYY-MM-DD)")
	exportStatisticsCmd.Flags().String("to", "", "End date (YYYY-MM-DD)")
	exportStatisticsCmd.Flags().String("format", string(model.FormatXLSX), "File format (xlsx, csv)")
	exportStatisticsCmd.Flags().Bool("no-wait", false, "Print the export id and return")
	exportStatisticsCmd.Flags().Duration("interval", 2*time.Second, "Polling interval")
	exportStatisticsCmd.Flags().Duration("timeout", 10*time.Minute, "Give up waiting after this long")

	exportCmd.AddCommand(exportStatisticsCmd)
}

type exportOptions struct {
	Wait     bool
	Interval time.Duration
	Timeout  time.Duration
}

// envelope is the success shape of /api/v1 responses.
type envelope[T any] struct {
	Data T `json:"data"`
}

// ErrExportFailed is returned when the worker marked the export failed.
var ErrExportFailed = errors.New("export failed")

// RunExportStatistics creates an export and optionally polls it to a
// terminal status.
func RunExportStatistics(ctx context.Context, out io.Writer, req model.CreateExportRequest, opts exportOptions) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid export: %w", err)
	}

	session, err := newSession()
	if err != nil {
		return err
	}
	accessToken, ok := session.Token()
	if !ok {
		return fmt.Errorf("%w: pass --token or --token-file", auth.ErrNoToken)
	}

	client := newClient(serverURL())

	var created envelope[model.CreateExportResponse]
	err = client.Call(ctx, apiclient.Request{
		URL:    "/api/v1/exports/statistics",
		Method: http.MethodPost,
		Body:   req,
		Token:  accessToken,
	}, &created)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	fmt.Fprintf(out, "Export %s %s\n", created.Data.ExportID, created.Data.Status)

	if !opts.Wait {
		return nil
	}
	return pollExport(ctx, out, client, accessToken, created.Data.ExportID, opts)
}

func pollExport(ctx context.Context, out io.Writer, client *apiclient.Client, accessToken, id string, opts exportOptions) error {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	last := model.StatusQueued
	for {
		var got envelope[model.Export]
		err := client.Call(ctx, apiclient.Request{URL: "/api/v1/exports/" + id, Token: accessToken}, &got)
		if err != nil {
			return fmt.Errorf("get export %s: %w", id, err)
		}

		exp := got.Data
		if exp.Status != last {
			fmt.Fprintf(out, "Export %s %s\n", id, exp.Status)
			last = exp.Status
		}

		switch exp.Status {
		case model.StatusDone:
			fmt.Fprintf(out, "Rows: %d\n", exp.Rows)
			if exp.URL != "" {
				fmt.Fprintf(out, "Download: %s\n", exp.URL)
			}
			return nil
		case model.StatusFailed:
			return fmt.Errorf("%w: %s", ErrExportFailed, exp.Error)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for export %s: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}
