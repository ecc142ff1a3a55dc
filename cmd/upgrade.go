package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/easiarr/easiarr/internal/update"
	"github.com/easiarr/easiarr/internal/version"
)

var (
	upgradeCheck   bool
	upgradeVersion string
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Update easiarr to the newest release",
	Long: `Upgrade replaces the running binary with the newest GitHub release on the
same channel: stable builds only take stable releases, prerelease builds
follow their prerelease tag.`,
	RunE: runUpgrade,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
	rootCmd.AddCommand(versionCmd)

	upgradeCmd.Flags().BoolVar(&upgradeCheck, "check", false, "only report whether an update exists")
	upgradeCmd.Flags().StringVar(&upgradeVersion, "version", "", "install this release instead of the newest")
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	if upgradeVersion == "" {
		status, err := update.Check(cmd.Context())
		if err != nil {
			return err
		}
		if !status.Available {
			fmt.Printf("%s is up to date\n", status.Current)
			return nil
		}
		fmt.Printf("update available: %s -> %s\n", status.Current, status.Latest)
		if upgradeCheck {
			return nil
		}
	} else if upgradeCheck {
		return fmt.Errorf("--check and --version cannot be combined")
	}

	return update.Apply(cmd.Context(), log, upgradeVersion)
}
