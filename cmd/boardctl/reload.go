package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serverURL    string
	pollInterval time.Duration
	pollTimeout  time.Duration
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Ask a running board service to re-read its feeds",
	Long: `Starts a reload job on the board service through its admin API and
waits for it to finish. The admin secret is read from ADMIN_SECRET.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		adminSecret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if adminSecret == "" {
			return errors.New("missing ADMIN_SECRET environment variable")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), pollTimeout)
		defer cancel()

		c := &adminClient{base: strings.TrimRight(serverURL, "/"), secret: adminSecret, http: &http.Client{Timeout: 10 * time.Second}}
		jobID, err := c.startReload(ctx)
		if err != nil {
			return err
		}
		logger.Debug("reload job started", zap.String("job_id", jobID))

		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			job, err := c.job(ctx, jobID)
			if err != nil {
				return err
			}
			if job.Status != "running" {
				fmt.Fprintf(cmd.OutOrStdout(), "Job %s %s (events=%d, applications=%d)\n",
					job.ID, job.Status, job.Result.Events, job.Result.Applications)
				if job.Status == "failed" {
					return fmt.Errorf("reload failed: %s", job.Error)
				}
				return nil
			}

			select {
			case <-ctx.Done():
				return fmt.Errorf("waiting for job %s: %w", jobID, ctx.Err())
			case <-ticker.C:
			}
		}
	},
}

func init() {
	reloadCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8081", "board service base URL")
	reloadCmd.Flags().DurationVar(&pollInterval, "poll", time.Second, "job poll interval")
	reloadCmd.Flags().DurationVar(&pollTimeout, "timeout", 2*time.Minute, "give up waiting after this long")
	rootCmd.AddCommand(reloadCmd)
}

type adminClient struct {
	base   string
	secret string
	http   *http.Client
}

type jobStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error"`
	Result struct {
		Events       int `json:"events"`
		Applications int `json:"applications"`
	} `json:"result"`
}

func (c *adminClient) do(ctx context.Context, method, path string, want int, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("X-Admin-Secret", c.secret)
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: unexpected status %s", method, path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *adminClient) startReload(ctx context.Context) (string, error) {
	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/admin/reload", http.StatusAccepted, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}

func (c *adminClient) job(ctx context.Context, id string) (jobStatus, error) {
	var job jobStatus
	err := c.do(ctx, http.MethodGet, "/api/v1/admin/job/"+id, http.StatusOK, &job)
	return job, err
}
