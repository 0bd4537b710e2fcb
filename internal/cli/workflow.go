package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewWorkflowCmd создаёт группу команд для управления workflows.
func NewWorkflowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Manage workflows",
	}

	cmd.AddCommand(
		newWorkflowListCmd(clientFn, outputFn),
		newWorkflowShowCmd(clientFn, outputFn),
		newWorkflowCreateCmd(clientFn, outputFn),
		newWorkflowDeleteCmd(clientFn, outputFn),
		newWorkflowTasksCmd(clientFn, outputFn),
	)

	return cmd
}

func newWorkflowListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			workflows, err := client.ListWorkflows(limit)
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "DESCRIPTION", "CREATED"}
			rows := make([][]string, len(workflows))
			for i, w := range workflows {
				rows[i] = []string{strconv.FormatInt(w.ID, 10), w.Name, w.Description, w.CreatedAt}
			}

			out.Print(headers, rows, workflows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newWorkflowShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show workflow details with tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			workflow, err := client.GetWorkflow(args[0])
			if err != nil {
				return err
			}

			if out.JSONMode() {
				out.JSON(workflow)
				return nil
			}

			out.Table(
				[]string{"ID", "NAME", "DESCRIPTION", "CREATED"},
				[][]string{{strconv.FormatInt(workflow.ID, 10), workflow.Name, workflow.Description, workflow.CreatedAt}},
			)

			if len(workflow.Tasks) > 0 {
				out.Line("")
				rows := make([][]string, len(workflow.Tasks))
				for i, t := range workflow.Tasks {
					rows[i] = []string{strconv.FormatInt(t.ID, 10), t.Name, t.ExecutionType, strconv.Itoa(t.Sequence)}
				}
				out.Table([]string{"TASK_ID", "NAME", "TYPE", "SEQ"}, rows)
			}
			return nil
		},
	}
}

func newWorkflowCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var description string
	var tasks []string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new workflow",
		Long: `Create a new workflow, optionally with tasks.

Tasks are passed as repeatable --task flags in the form NAME:TYPE:SEQUENCE,
where TYPE is sync or async:

  civils workflow create deploy --task build:sync:0 --task test-a:async:1 --task test-b:async:1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateWorkflowRequest{
				Name:        args[0],
				Description: description,
			}

			for _, spec := range tasks {
				task, err := parseTaskSpec(spec)
				if err != nil {
					return err
				}
				req.Tasks = append(req.Tasks, task)
			}

			workflow, err := client.CreateWorkflow(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Workflow created: %d", workflow.ID))
			out.Print(
				[]string{"ID", "NAME", "TASKS", "CREATED"},
				[][]string{{strconv.FormatInt(workflow.ID, 10), workflow.Name, strconv.Itoa(len(workflow.Tasks)), workflow.CreatedAt}},
				workflow,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Workflow description")
	cmd.Flags().StringSliceVar(&tasks, "task", nil, "Task as NAME:TYPE:SEQUENCE (repeatable)")

	return cmd
}

func newWorkflowDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteWorkflow(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Workflow deleted: %s", args[0]))
			return nil
		},
	}
}

func newWorkflowTasksCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks WORKFLOW_ID",
		Short: "List tasks in a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			tasks, err := client.ListTasks(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "TYPE", "SEQ", "DESCRIPTION"}
			rows := make([][]string, len(tasks))
			for i, t := range tasks {
				rows[i] = []string{strconv.FormatInt(t.ID, 10), t.Name, t.ExecutionType, strconv.Itoa(t.Sequence), t.Description}
			}

			out.Print(headers, rows, tasks)
			return nil
		},
	}
}

// parseTaskSpec разбирает NAME:TYPE:SEQUENCE.
func parseTaskSpec(spec string) (CreateTaskRequest, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return CreateTaskRequest{}, fmt.Errorf("invalid task format %q, expected NAME:TYPE:SEQUENCE", spec)
	}

	seq, err := strconv.Atoi(parts[2])
	if err != nil {
		return CreateTaskRequest{}, fmt.Errorf("invalid task sequence %q: %w", parts[2], err)
	}

	return CreateTaskRequest{
		Name:          parts[0],
		ExecutionType: parts[1],
		Sequence:      seq,
	}, nil
}
