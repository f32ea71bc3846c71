package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

// NewTriggerCmd создаёт команду внепланового запуска через API.
func NewTriggerCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Ask the scheduler to run the dispatch job now",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			resp, err := clientFn().Trigger(reason)
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
				out.Notice("A run is already queued")
				return nil
			}
			if err != nil {
				return err
			}

			out.Notice(fmt.Sprintf("Run queued: job=%s reason=%s", resp.Job, resp.Reason))
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "manual", "Reason recorded in run history")

	return cmd
}
