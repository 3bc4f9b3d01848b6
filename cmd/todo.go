package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adityakmr7/focus25-sub001/internal/model"
)

var (
	todoDesc     string
	todoIcon     string
	todoCategory string
	todoPriority int
	todoEstimate int
	todoTitle    string
	todoActual   int
	todoListAll  bool
	todoListDone bool
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage todos",
}

var todoAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a todo",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTodoAdd,
}

var todoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open todos",
	Args:  cobra.NoArgs,
	RunE:  runTodoList,
}

var todoDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a todo as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTodoCompleted(args[0], true)
	},
}

var todoUndoCmd = &cobra.Command{
	Use:   "undo <id>",
	Short: "Reopen a completed todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTodoCompleted(args[0], false)
	},
}

var todoEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a todo",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoEdit,
}

var todoRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a todo (its sessions are kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoRm,
}

func init() {
	for _, c := range []*cobra.Command{todoAddCmd, todoEditCmd} {
		c.Flags().StringVar(&todoDesc, "desc", "", "Description")
		c.Flags().StringVar(&todoIcon, "icon", "", "Icon")
		c.Flags().StringVar(&todoCategory, "category", "", "Category")
		c.Flags().IntVar(&todoPriority, "priority", 0, "Priority (higher first)")
		c.Flags().IntVar(&todoEstimate, "estimate", 0, "Estimated minutes")
	}
	todoEditCmd.Flags().StringVar(&todoTitle, "title", "", "New title")
	todoEditCmd.Flags().IntVar(&todoActual, "actual", 0, "Actual minutes spent")
	todoListCmd.Flags().BoolVar(&todoListAll, "all", false, "Include completed todos")
	todoListCmd.Flags().BoolVar(&todoListDone, "done", false, "Show only completed todos")

	todoCmd.AddCommand(todoAddCmd, todoListCmd, todoDoneCmd, todoUndoCmd, todoEditCmd, todoRmCmd)
}

func runTodoAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	t := model.Todo{Title: strings.Join(args, " "), Priority: todoPriority}
	if todoDesc != "" {
		t.Description = &todoDesc
	}
	if todoIcon != "" {
		t.Icon = &todoIcon
	}
	if todoCategory != "" {
		t.Category = &todoCategory
	}
	if todoEstimate > 0 {
		t.EstimatedMinutes = &todoEstimate
	}

	created, err := a.store.CreateTodo(ctx, t)
	exitOnErr(err)
	fmt.Printf("Added todo %s %q\n", shortID(created.ID), created.Title)

	a.autoSync(ctx)
	return nil
}

func runTodoList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	todos, err := a.store.ListTodos(ctx)
	exitOnErr(err)

	var shown []model.Todo
	for _, t := range todos {
		switch {
		case todoListDone && !t.IsCompleted:
			continue
		case !todoListAll && !todoListDone && t.IsCompleted:
			continue
		}
		shown = append(shown, t)
	}
	printTodos(shown)
	return nil
}

func printTodos(todos []model.Todo) {
	if len(todos) == 0 {
		fmt.Println("No todos found.")
		return
	}
	for _, t := range todos {
		mark := "[ ]"
		if t.IsCompleted {
			mark = "[x]"
		}
		extra := ""
		if t.Category != nil {
			extra += "  #" + *t.Category
		}
		if t.Priority != 0 {
			extra += fmt.Sprintf("  p%d", t.Priority)
		}
		if t.EstimatedMinutes != nil {
			extra += fmt.Sprintf("  ~%dm", *t.EstimatedMinutes)
		}
		fmt.Printf("%s %s  %s%s\n", mark, shortID(t.ID), t.Title, extra)
	}
}

func setTodoCompleted(ref string, done bool) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	id := mustResolveTodo(ctx, a, ref)
	t, err := a.store.SetTodoCompleted(ctx, id, done)
	exitOnErr(err)
	if done {
		fmt.Printf("Completed %q\n", t.Title)
	} else {
		fmt.Printf("Reopened %q\n", t.Title)
	}

	a.autoSync(ctx)
	return nil
}

func runTodoEdit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	id := mustResolveTodo(ctx, a, args[0])
	t, err := a.store.GetTodo(ctx, id)
	exitOnErr(err)

	flags := cmd.Flags()
	if flags.Changed("title") {
		t.Title = todoTitle
	}
	if flags.Changed("desc") {
		t.Description = optional(todoDesc)
	}
	if flags.Changed("icon") {
		t.Icon = optional(todoIcon)
	}
	if flags.Changed("category") {
		t.Category = optional(todoCategory)
	}
	if flags.Changed("priority") {
		t.Priority = todoPriority
	}
	if flags.Changed("estimate") {
		t.EstimatedMinutes = nil
		if todoEstimate > 0 {
			t.EstimatedMinutes = &todoEstimate
		}
	}
	if flags.Changed("actual") {
		t.ActualMinutes = todoActual
	}

	if err := a.store.UpdateTodo(ctx, *t); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(1)
	}
	fmt.Printf("Updated %s %q\n", shortID(t.ID), t.Title)

	a.autoSync(ctx)
	return nil
}

func runTodoRm(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a := openApp(ctx)
	defer a.Close()

	id := mustResolveTodo(ctx, a, args[0])
	exitOnErr(a.store.DeleteTodo(ctx, id))
	fmt.Printf("Deleted todo %s\n", shortID(id))

	a.autoSync(ctx)
	return nil
}

// optional maps an empty flag value to nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func mustResolveTodo(ctx context.Context, a *app, ref string) string {
	todos, err := a.store.ListTodos(ctx)
	exitOnErr(err)
	ids := make([]string, len(todos))
	for i, t := range todos {
		ids[i] = t.ID
	}
	id, err := resolveID(ids, ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "todo %q: %v\n", ref, err)
		exit(1)
	}
	return id
}

var errAmbiguous = errors.New("ambiguous id prefix")

// resolveID finds the id that equals ref or starts with it.
func resolveID(ids []string, ref string) (string, error) {
	var match string
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if ref != "" && strings.HasPrefix(id, ref) {
			if match != "" {
				return "", errAmbiguous
			}
			match = id
		}
	}
	if match == "" {
		return "", model.ErrNotFound
	}
	return match, nil
}

// shortID is the prefix shown in listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
