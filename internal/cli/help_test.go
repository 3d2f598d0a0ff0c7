package cli

import (
	"bytes"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type helpCLI struct {
	Out   string   `short:"o" help:"Output directory" placeholder:"dir"`
	Debug bool     `help:"Verbose debug log"`
	Files []string `arg:"" name:"files" help:"Audio files or directories" optional:""`
}

func TestStyledHelpPrinter(t *testing.T) {
	var buf bytes.Buffer
	parser, err := kong.New(&helpCLI{},
		kong.Name("voicelift"),
		kong.Description("Speech enhancement for spoken word recordings"),
		kong.Writers(&buf, &buf),
		kong.Exit(func(int) {}),
		kong.Help(StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})
	out := buf.String()

	for _, want := range []string{
		"Voicelift",
		"Speech enhancement for spoken word recordings",
		"voicelift [flags] <files|directories> ...",
		"Audio files or directories",
		"-h, --help",
		"-o, --out=DIR",
		"--debug",
		"Examples:",
		"voicelift --analyze guest.mp3",
	} {
		assert.Contains(t, out, want)
	}
}
