package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mmynk/tally/internal/service"
)

// promptConfirmer asks on out and reads the answer from in.
type promptConfirmer struct {
	in     io.Reader
	out    io.Writer
	arabic bool
}

// confirmer picks how destructive commands are confirmed: --yes accepts,
// a piped stdin declines, anything else is asked interactively.
func (a *app) confirmer(in io.Reader, out io.Writer) service.Confirmer {
	if a.yes {
		return service.AlwaysConfirm
	}
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return service.ConfirmFunc(func(_ context.Context, p service.Prompt) bool {
			l := a.localizer()
			fmt.Fprintln(out, l.line(l.T(msgNeedYes)))
			slog.Debug("Declined prompt without a terminal", "prompt", p)
			return false
		})
	}
	return &promptConfirmer{in: in, out: out, arabic: a.svc.State().Arabic}
}

func (c *promptConfirmer) Confirm(_ context.Context, p service.Prompt) bool {
	l := newLocalizer(c.arabic)

	fmt.Fprintln(c.out, l.line(l.T(msgWarning)))
	switch p {
	case service.PromptRemoveItem:
		fmt.Fprintln(c.out, l.line(l.T(msgConfirmRemove)))
	case service.PromptClearAll:
		fmt.Fprintln(c.out, l.line(l.T(msgConfirmClear)))
	}
	fmt.Fprint(c.out, l.line(l.T(msgConfirmChoices))+" ")

	answer, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "d", "delete", "y", "yes":
		return true
	}
	return false
}
