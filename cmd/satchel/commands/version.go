package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/internal/version"
)

// VersionCmd prints version and build information
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if JSONOutput {
			return render(info)
		}
		fmt.Println(info.String())
		fmt.Printf("go: %s, platform: %s\n", info.GoVersion, info.Platform)
		return nil
	},
}
