package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/render/preview"
)

// configExtensions are the file extensions offered for config arguments.
var configExtensions = []string{"yaml", "yml", "json", "toml"}

// completeConfig completes the single config argument of layout, units and
// preview with files of a supported format.
func completeConfig(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return configExtensions, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormat completes --format with the decoder names.
func completeFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return completeFrom(toComplete,
		string(config.FormatYAML), string(config.FormatJSON), string(config.FormatTOML))
}

// completePreviewOutput completes --output with files of the preview formats.
func completePreviewOutput(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{preview.FormatSVG, preview.FormatDOT}, cobra.ShellCompDirectiveFilterFileExt
}

func completeFrom(prefix string, values ...string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			out = append(out, v)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for keyplan.

Config arguments of layout, units and preview complete to .yaml, .yml,
.json and .toml files, and --format completes to the supported decoders.

  $ source <(keyplan completion bash)
  $ keyplan completion zsh > "${fpath[1]}/_keyplan"
  $ keyplan completion fish > ~/.config/fish/completions/keyplan.fish
  PS> keyplan completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
