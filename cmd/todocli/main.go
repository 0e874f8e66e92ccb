// todocli is a minimal interactive todo list kept entirely in memory.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"todohub/internal/todocli"
)

func main() {
	root := &cobra.Command{
		Use:   "todocli",
		Short: "Interactive in-memory todo list",
		Long:  "A minimal todo REPL. Items live only for the duration of the session.",
		RunE: func(cmd *cobra.Command, args []string) error {
			runREPL(todocli.NewStore(), os.Stdin)
			return nil
		},
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runREPL(store *todocli.Store, input *os.File) {
	fmt.Println("todocli - type 'help' for commands")
	scanner := bufio.NewScanner(input)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		command, rest := splitCommand(line)
		switch command {
		case "quit", "exit", "q":
			fmt.Println("bye")
			return
		default:
			fmt.Println(Execute(store, command, rest))
		}
	}
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	command := strings.ToLower(parts[0])
	rest := ""
	if len(parts) == 2 {
		rest = strings.TrimSpace(parts[1])
	}
	return command, rest
}

// Execute runs one REPL command against the store and returns the text to
// print.
func Execute(store *todocli.Store, command, rest string) string {
	switch command {
	case "add":
		item, err := store.Add(strings.Trim(rest, `"'`))
		if err != nil {
			return "usage: add <title>"
		}
		return fmt.Sprintf("added #%d: %s", item.ID, item.Title)

	case "list", "ls":
		filter := todocli.FilterAll
		switch rest {
		case "done":
			filter = todocli.FilterDone
		case "pending":
			filter = todocli.FilterPending
		}
		items := store.List(filter)
		if len(items) == 0 {
			return "no items"
		}
		lines := make([]string, 0, len(items))
		for _, item := range items {
			marker := "○"
			if item.Done {
				marker = "✓"
			}
			lines = append(lines, fmt.Sprintf("%d. %s %s", item.ID, marker, item.Title))
		}
		return strings.Join(lines, "\n")

	case "done", "complete", "undone", "incomplete":
		id, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Sprintf("usage: %s <id>", command)
		}
		item, err := store.Toggle(id)
		if err != nil {
			return fmt.Sprintf("no item #%d", id)
		}
		state := "pending"
		if item.Done {
			state = "done"
		}
		return fmt.Sprintf("#%d is now %s", item.ID, state)

	case "delete", "del", "rm":
		id, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Sprintf("usage: %s <id>", command)
		}
		if err := store.Remove(id); err != nil {
			return fmt.Sprintf("no item #%d", id)
		}
		return fmt.Sprintf("removed #%d", id)

	case "clear":
		return fmt.Sprintf("removed %d items", store.Clear())

	case "help", "h":
		return strings.Join([]string{
			"add <title>        add a new item",
			"list [done|pending] show items",
			"done <id>          toggle completion",
			"delete <id>        remove an item",
			"clear              remove everything",
			"quit               leave",
		}, "\n")

	default:
		return fmt.Sprintf("unknown command: %s (try 'help')", command)
	}
}
