package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Help styles
var (
	helpTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).MarginBottom(1)
	helpDescStyle    = lipgloss.NewStyle().Foreground(warnColor).Italic(true).MarginBottom(1)
	helpSectionStyle = lipgloss.NewStyle().Bold(true).Foreground(warnColor).MarginTop(1)
	helpFlagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Bold(true)
	helpArgStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AAAA")).Bold(true)
	helpDefaultStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
)

// helpEntry is one line of the Arguments or Flags section
type helpEntry struct {
	name       string
	help       string
	defaultVal string
}

// examples are shown at the end of --help
var examples = []struct {
	args string
	help string
}{
	{"interview.flac", "full chain, writes \"interview - edit.wav\" alongside the input"},
	{"--no-sat --no-deess ./raw", "every audio file in ./raw without saturation or de-essing"},
	{"--only=limit --suffix=_norm take1.wav take2.wav", "peak limiting only"},
	{"--analyze guest.mp3", "measure levels and print recording tips without processing"},
}

// StyledHelpPrinter creates a custom help printer with Lipgloss styling.
// Names are padded to a common width so descriptions line up.
func StyledHelpPrinter(options kong.HelpOptions) func(options kong.HelpOptions, ctx *kong.Context) error {
	return func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		sb.WriteString(helpTitleStyle.Render("Voicelift 🎙"))
		sb.WriteString("\n")
		if ctx.Model.Help != "" {
			sb.WriteString(helpDescStyle.Render(ctx.Model.Help))
			sb.WriteString("\n")
		}

		writeHelpSection(&sb, "Usage:")
		fmt.Fprintf(&sb, "  %s [flags] <files|directories> ...\n", ctx.Model.Name)

		args, flags := positionals(ctx), flagEntries(ctx)
		width := 0
		for _, e := range append(append([]helpEntry{}, args...), flags...) {
			width = max(width, len(e.name))
		}

		if len(args) > 0 {
			writeHelpSection(&sb, "Arguments:")
			writeEntries(&sb, args, width, helpArgStyle)
		}
		writeHelpSection(&sb, "Flags:")
		writeEntries(&sb, flags, width, helpFlagStyle)

		writeHelpSection(&sb, "Examples:")
		for _, ex := range examples {
			fmt.Fprintf(&sb, "  %s\n      %s\n",
				helpArgStyle.Render(ctx.Model.Name+" "+ex.args), helpDefaultStyle.Render(ex.help))
		}

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

func writeHelpSection(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(title))
	sb.WriteString("\n")
}

func writeEntries(sb *strings.Builder, entries []helpEntry, width int, nameStyle lipgloss.Style) {
	for _, e := range entries {
		sb.WriteString("  ")
		sb.WriteString(nameStyle.Render(e.name))
		if e.help != "" {
			sb.WriteString(strings.Repeat(" ", width-len(e.name)+2))
			sb.WriteString(e.help)
		}
		if e.defaultVal != "" {
			sb.WriteString(" ")
			sb.WriteString(helpDefaultStyle.Render("(default: " + e.defaultVal + ")"))
		}
		sb.WriteString("\n")
	}
}

func positionals(ctx *kong.Context) []helpEntry {
	var entries []helpEntry
	for _, arg := range ctx.Model.Node.Positional {
		entries = append(entries, helpEntry{name: arg.Summary(), help: arg.Help})
	}
	return entries
}

// flagEntries lists -h first, then the model's flags in declaration order
func flagEntries(ctx *kong.Context) []helpEntry {
	entries := []helpEntry{{name: "-h, --help", help: "Show context-sensitive help."}}

	for _, f := range ctx.Model.Node.Flags {
		if f.Name == "help" || f.Hidden {
			continue
		}

		name := "--" + f.Name
		if f.Short != 0 {
			name = fmt.Sprintf("-%c, %s", f.Short, name)
		}
		if !f.IsBool() && f.PlaceHolder != "" {
			name += "=" + strings.ToUpper(f.PlaceHolder)
		}

		entries = append(entries, helpEntry{name: name, help: f.Help, defaultVal: f.Default})
	}
	return entries
}
