package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/mial/lang"
	"github.com/ardnew/mial/log"
	"github.com/ardnew/mial/pkg"
)

const defaultEditor = "vi"

// editIndent is the indent width of the program opened in the editor.
const editIndent = 2

// editCommand implements [tea.ExecCommand] for the edit-evaluate-retry loop.
// It writes the session program to a temporary file, opens the user's
// editor, and replaces the session with the edited program. On error the
// user is asked whether to edit again.
type editCommand struct {
	session *Session
	ctxFunc func() context.Context
	logger  log.Logger
	output  string
	edited  bool
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. It returns [ErrEditDeclined] if the user
// declines to edit again after an error. An emptied file leaves the session
// unchanged.
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := formatSource(ctx, c.session.Source())
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(os.TempDir(), pkg.Name+"-repl-*"+pkg.Extension)
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	for {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path)
		if err != nil {
			return err
		}

		content = string(data)

		if strings.TrimSpace(content) == "" {
			return nil
		}

		out, evalErr := c.session.Replace(ctx, content)

		c.logger.TraceContext(
			ctx,
			"editor evaluate attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", evalErr == nil),
		)

		if evalErr == nil {
			c.edited = true
			c.output = out

			return nil
		}

		fmt.Fprint(c.stderr, out)
		fmt.Fprintf(c.stderr, "\n%s\n", strings.TrimRight(lang.FormatError(evalErr, content), "\n"))
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		if !confirm(c.stdin) {
			return ErrEditDeclined
		}
	}
}

// formatSource renders source in canonical form. Source that does not parse
// is returned unchanged.
func formatSource(ctx context.Context, source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}

	prog, err := lang.Parse(ctx, source)
	if err != nil {
		return source, nil //nolint:nilerr
	}

	var buf bytes.Buffer
	if err := lang.Format(ctx, &buf, prog, editIndent); err != nil {
		return "", fmt.Errorf("format program: %w", err)
	}

	return buf.String(), nil
}

// confirm reads a yes/no answer that defaults to yes.
func confirm(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "n", "no":
		return false
	}

	return true
}

// runEditor opens path in $EDITOR and returns the edited content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	args := strings.Fields(editor)

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
