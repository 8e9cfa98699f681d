package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
)

// runShell answers queries read line by line with one long-lived service, so
// the result cache, its broker invalidation and the rate limit span queries.
// An interrupt cancels only the query in flight.
func runShell(ctx context.Context, in io.Reader, out io.Writer, configPath string) error {
	svc, log, closeFn, err := openService(ctx, configPath)
	if err != nil {
		return err
	}
	defer closeFn()

	page := 0
	scanner := bufio.NewScanner(in)
	for ctx.Err() == nil {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if cmd, ok := strings.CutPrefix(line, ":"); ok {
			name, arg, _ := strings.Cut(cmd, " ")
			switch name {
			case "quit", "q":
				return nil
			case "page":
				n, err := strconv.Atoi(strings.TrimSpace(arg))
				if err != nil || n < 0 {
					fmt.Fprintf(out, "error: bad page %q\n", arg)
					continue
				}
				page = n
				fmt.Fprintf(out, "page set to %d\n", page)
			case "ping":
				qctx, stop := signal.NotifyContext(ctx, os.Interrupt)
				v, err := svc.Ping(qctx)
				stop()
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
				fmt.Fprintf(out, "ok %s\n", v)
			default:
				fmt.Fprintf(out, "error: unknown command %q\n", name)
			}
			continue
		}

		qctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		res, err := svc.Search(qctx, line, page)
		stop()
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		printResult(out, log, line, res)
	}
	fmt.Fprintln(out)
	return scanner.Err()
}
