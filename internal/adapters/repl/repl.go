package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"logistics-dashboard/internal/adapters/cli"
	"logistics-dashboard/internal/app"
)

const maxClarifications = 3

var errExit = errors.New("exit")

// Run starts the interactive REPL loop.
// It reads commands from in, dispatches slash commands deterministically,
// and routes free text through the AI query interpreter to a shipment list.
// Run returns when the user exits or in is exhausted.
func Run(ctx context.Context, svc app.ApplicationService, in *bufio.Reader, out io.Writer) {
	fmt.Fprintln(out, "Logistics Dashboard")
	fmt.Fprintf(out, "Source: %s\n", svc.Source())
	fmt.Fprintln(out, "Describe the shipments you want to see, or use /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	r := &session{ctx: ctx, svc: svc, in: in, out: out}
	for {
		input, ok := r.prompt("\n> ")
		if !ok {
			return
		}
		if input == "" {
			continue
		}

		// Slash prefix → deterministic command dispatcher, no AI invoked.
		if strings.HasPrefix(input, "/") {
			if err := r.dispatchSlash(input); err != nil {
				if errors.Is(err, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return
				}
				fmt.Fprintf(out, "Error: %v\n", err)
			}
			continue
		}

		if err := r.interpret(input); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(out, "Goodbye!")
				return
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

type session struct {
	ctx context.Context
	svc app.ApplicationService
	in  *bufio.Reader
	out io.Writer
}

// prompt prints p and reads one trimmed line. ok is false at end of input.
func (r *session) prompt(p string) (string, bool) {
	fmt.Fprint(r.out, p)
	line, err := r.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (r *session) dispatchSlash(input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}

	switch strings.ToLower(tokens[0]) {
	case "help", "h":
		printHelp(r.out)
		return nil
	case "exit", "quit", "e", "q":
		return errExit
	case "new-shipment", "new":
		return r.newShipmentWizard()
	}

	err := cli.Execute(r.ctx, r.svc, r.out, tokens)
	if errors.Is(err, cli.ErrUnknownCommand) {
		fmt.Fprintf(r.out, "Unknown command: /%s  (type /help for all commands)\n", tokens[0])
		return nil
	}
	return err
}

// interpret asks the AI for a shipment query, following up on clarification
// requests a limited number of times.
func (r *session) interpret(input string) error {
	fmt.Fprintln(r.out, "[AI] Processing...")
	accumulated := input

	for round := 1; round <= maxClarifications; round++ {
		result, err := r.svc.InterpretQuery(r.ctx, "shipments", accumulated)
		if err != nil {
			if errors.Is(err, app.ErrInterpreterUnavailable) {
				fmt.Fprintln(r.out, "AI is not configured (set OPENAI_API_KEY). Use slash commands instead, type /help.")
				return nil
			}
			return err
		}

		if !result.IsClarification {
			printQuery(r.out, result)
			page, err := r.svc.ListShipments(r.ctx, result.Query)
			if err != nil {
				return err
			}
			cli.PrintShipments(r.out, page)
			return nil
		}

		fmt.Fprintf(r.out, "\n[AI]: %s\n", result.Clarification)
		followUp, ok := r.prompt("> ")
		if !ok {
			return errExit
		}

		// Slash command during clarification cancels the AI flow and runs it.
		if strings.HasPrefix(followUp, "/") {
			fmt.Fprintln(r.out, "(AI session cancelled)")
			return r.dispatchSlash(followUp)
		}
		if followUp == "" || strings.EqualFold(followUp, "cancel") {
			fmt.Fprintln(r.out, "Cancelled.")
			return nil
		}
		accumulated = fmt.Sprintf("Original request: %s\nClarification requested: %s\nUser response: %s",
			accumulated, result.Clarification, followUp)
		fmt.Fprintln(r.out, "[AI] Thinking...")
	}

	fmt.Fprintln(r.out, "Could not build a filter. Try a slash command instead, type /help.")
	return nil
}
