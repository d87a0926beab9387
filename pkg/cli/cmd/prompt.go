package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// promptResolver asks on the terminal which column holds the time
type promptResolver struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptResolver(in io.Reader, out io.Writer) *promptResolver {
	return &promptResolver{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// ResolveTimeKey accepts a column number or name. An empty answer or end of input selects
// no time column.
func (p *promptResolver) ResolveTimeKey(candidates []string) (string, error) {
	fmt.Fprintln(p.out, "Select the time column:")
	for i, candidate := range candidates {
		fmt.Fprintf(p.out, "  [%d] %s\n", i+1, candidate)
	}
	fmt.Fprint(p.out, "Column (empty for none): ")

	answer, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	answer = strings.TrimSpace(answer)

	if answer == "" {
		return "", nil
	}

	if index, err := strconv.Atoi(answer); err == nil {
		if index < 1 || index > len(candidates) {
			return "", fmt.Errorf("column %d does not exist", index)
		}
		return candidates[index-1], nil
	}

	for _, candidate := range candidates {
		if candidate == answer {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("column '%s' does not exist", answer)
}
