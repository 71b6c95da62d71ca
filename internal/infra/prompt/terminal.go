// Package prompt supplies point prompts from an interactive terminal.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pangeans/unprompted/internal/domain/entity"
)

// TerminalSource reads prompt signals line by line:
//
//	<x> <y>   add a point at pixel (x, y)
//	accept    commit the candidate mask
//	reset     discard accumulated points and start over
//	skip      abandon the keyword
//
// End of input abandons the keyword as well.
type TerminalSource struct {
	scanner *bufio.Scanner
	out     io.Writer
	primed  map[string]bool
}

func NewTerminalSource(in io.Reader, out io.Writer) *TerminalSource {
	return &TerminalSource{
		scanner: bufio.NewScanner(in),
		out:     out,
		primed:  make(map[string]bool),
	}
}

func (t *TerminalSource) Next(ctx context.Context, keyword string) (entity.Prompt, error) {
	if !t.primed[keyword] {
		fmt.Fprintf(t.out, "\nKeyword %q: enter \"<x> <y>\" to add a point, \"accept\", \"reset\", or \"skip\".\n", keyword)
		t.primed[keyword] = true
	}

	for {
		if err := ctx.Err(); err != nil {
			return entity.Prompt{}, err
		}

		fmt.Fprintf(t.out, "[%s]> ", keyword)
		if !t.scanner.Scan() {
			if err := t.scanner.Err(); err != nil {
				return entity.Prompt{}, err
			}
			return entity.Prompt{Action: entity.PromptAbandon}, nil
		}

		line := strings.TrimSpace(t.scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "accept", "a":
			return entity.Prompt{Action: entity.PromptAccept}, nil
		case "reset", "r":
			return entity.Prompt{Action: entity.PromptReset}, nil
		case "skip", "s":
			return entity.Prompt{Action: entity.PromptAbandon}, nil
		}

		point, err := parsePoint(line)
		if err != nil {
			fmt.Fprintf(t.out, "unrecognized input %q: %v\n", line, err)
			continue
		}
		return entity.Prompt{Action: entity.PromptPoint, Point: point}, nil
	}
}

func parsePoint(line string) (entity.Point, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return entity.Point{}, fmt.Errorf("expected two coordinates")
	}
	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return entity.Point{}, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return entity.Point{}, fmt.Errorf("y: %w", err)
	}
	return entity.Point{X: x, Y: y}, nil
}
