package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/easiarr/easiarr/internal/artifacts"
)

var (
	genDiff  bool
	genForce bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the compose project and companion files",
	Long: `Generate lays out the stack directory: docker-compose.yml, the .env with
ports and credentials, browser bookmarks, the Homepage dashboard config,
and per-app preseeds. Repeat runs only touch files whose content changed;
changed files leave a .bak sibling behind.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVar(&genDiff, "diff", false, "show unified diffs of changed files")
	generateCmd.Flags().BoolVar(&genForce, "force", false, "rewrite preseeds that are normally left to the apps")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	gen := artifacts.New(settings, log)
	gen.WithDiff = genDiff
	gen.Force = genForce

	arts, err := gen.Run(cmd.Context())
	if err != nil {
		return err
	}

	for _, a := range arts {
		fmt.Printf("%-9s %s\n", a.Action, a.Path)
		if a.Diff != "" {
			fmt.Println(a.Diff)
		}
	}
	return nil
}
