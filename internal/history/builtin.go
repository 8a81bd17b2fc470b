package history

import (
	"context"
	"fmt"
	"strconv"

	"mvdan.cc/sh/v3/interp"
)

const defaultListLimit = 20

// NewHistoryCommandHandler implements the history builtin.
//
//	history       list the most recent commands
//	history N     list the last N commands
//	history -c    delete all history
func NewHistoryCommandHandler(historyManager *HistoryManager) func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 || args[0] != "history" {
				return next(ctx, args)
			}

			hc := interp.HandlerCtx(ctx)
			limit := defaultListLimit
			if len(args) > 1 {
				if args[1] == "-c" {
					if err := historyManager.ResetHistory(); err != nil {
						fmt.Fprintf(hc.Stderr, "history: %v\n", err)
						return interp.ExitStatus(1)
					}
					return nil
				}
				n, err := strconv.Atoi(args[1])
				if err != nil || n <= 0 {
					fmt.Fprintf(hc.Stderr, "history: %s: numeric argument required\n", args[1])
					return interp.ExitStatus(2)
				}
				limit = n
			}

			entries, err := historyManager.GetRecentEntries("", limit)
			if err != nil {
				fmt.Fprintf(hc.Stderr, "history: %v\n", err)
				return interp.ExitStatus(1)
			}
			for _, entry := range entries {
				fmt.Fprintf(hc.Stdout, "%5d  %s\n", entry.ID, entry.Command)
			}
			return nil
		}
	}
}
