package version

import (
	"fmt"
	"log"
	"strings"

	"github.com/davoram/hearth/theme"
)

var (
	Name        = "hearth"
	Description = "Local GGUF model host with adaptive prompt formatting"
	Version     = "v0.1.0"
	Commit      = "none"
	Date        = "nowish"
	Runtime     = "go"
)

const (
	GithubHomeText  = "github.com/davoram/hearth"
	GithubHomeUri   = "https://github.com/davoram/hearth"
	GithubLatestUri = "https://github.com/davoram/hearth/releases/latest"
)

// Capabilities names what this host adapts per model, surfaced on the
// version endpoint so clients can probe without guessing.
var Capabilities = []string{
	"metadata-extraction",
	"tool-call-detection",
	"stop-token-optimization",
	"chat-templates",
	"tool-call-parsing",
}

func PrintVersionInfo(extendedInfo bool, vlog *log.Logger) {
	githubUri := theme.Hyperlink(GithubHomeUri, GithubHomeText)
	latestUri := theme.Hyperlink(GithubLatestUri, Version)

	var b strings.Builder

	b.WriteString(theme.ColourSplash(`
╔──────────────────────────────────────────────╗
│  ██╗  ██╗███████╗ █████╗ ██████╗ ████████╗██╗  ██╗
│  ██║  ██║██╔════╝██╔══██╗██╔══██╗╚══██╔══╝██║  ██║
│  ███████║█████╗  ███████║██████╔╝   ██║   ███████║
│  ██╔══██║██╔══╝  ██╔══██║██╔══██╗   ██║   ██╔══██║
│  ██║  ██║███████╗██║  ██║██║  ██║   ██║   ██║  ██║
│  ╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝` + "\n"))

	b.WriteString(theme.ColourSplash("│ "))
	b.WriteString(theme.StyleUrl(githubUri))
	b.WriteString(" ")
	b.WriteString(theme.ColourVersion(latestUri))
	b.WriteString("\n")
	b.WriteString(theme.ColourSplash("╚──────────────────────────────────────────────╝"))

	if extendedInfo {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(" Commit: %s\n", Commit))
		b.WriteString(fmt.Sprintf("  Built: %s\n", Date))
		b.WriteString(fmt.Sprintf("  Using: %s\n", Runtime))
	}

	vlog.Println(b.String())
}
