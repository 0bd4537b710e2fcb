package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewExecCmd создаёт группу команд для управления executions.
func NewExecCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run workflows and inspect executions",
	}

	cmd.AddCommand(
		newExecStartCmd(clientFn, outputFn),
		newExecStatusCmd(clientFn, outputFn),
		newExecListCmd(clientFn, outputFn),
	)

	return cmd
}

func newExecStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "start WORKFLOW_ID",
		Short: "Start a workflow and stream status updates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var last StatusUpdate
			err := client.StartExecution(args[0], func(u StatusUpdate) {
				last = u
				if out.JSONMode() {
					out.JSON(u)
					return
				}
				if u.TaskName != "" {
					out.Line(fmt.Sprintf("[%s] %s: %s", u.Status, u.TaskName, u.Message))
				} else {
					out.Line(fmt.Sprintf("[%s] %s", u.Status, u.Message))
				}
			})
			if err != nil {
				return err
			}

			if last.Status == "FAILED" {
				return fmt.Errorf("execution failed: %s", last.Message)
			}
			if last.ExecutionID != "" {
				out.Success(fmt.Sprintf("Execution finished: %s", last.ExecutionID))
			}
			return nil
		},
	}
}

func newExecStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status EXECUTION_ID",
		Short: "Show execution status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			exec, err := client.GetExecution(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "WORKFLOW_ID", "STATUS", "MESSAGE", "FINISHED"},
				[][]string{{exec.ID, strconv.FormatInt(exec.WorkflowID, 10), exec.Status, exec.LastMessage, exec.FinishedAt}},
				exec,
			)
			return nil
		},
	}
}

func newExecListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list WORKFLOW_ID",
		Short: "List executions of a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			executions, err := client.ListExecutions(args[0], limit)
			if err != nil {
				return err
			}

			headers := []string{"ID", "STATUS", "MESSAGE", "CREATED", "FINISHED"}
			rows := make([][]string, len(executions))
			for i, e := range executions {
				rows[i] = []string{e.ID, e.Status, e.LastMessage, e.CreatedAt, e.FinishedAt}
			}

			out.Print(headers, rows, executions)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}
