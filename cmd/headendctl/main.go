// Command headendctl is the operator CLI for the head-end controller:
// it writes to the same command-surface files a web remote would, for
// scripting and manual testing.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tsali/retro-tv/internal/config"
	"github.com/tsali/retro-tv/internal/store"
)

var settingsFile string

var rootCmd = &cobra.Command{
	Use:   "headendctl",
	Short: "Operator CLI for the broadcast head-end controller",
}

var channelCmd = &cobra.Command{
	Use:   "channel [up|down|NUMBER]",
	Short: "Change the tuned channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntimeStore()
		if err != nil {
			return err
		}
		return rt.WriteChannelCommand(args[0])
	},
}

var muteCmd = &cobra.Command{
	Use:   "mute",
	Short: "Toggle mute",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntimeStore()
		if err != nil {
			return err
		}
		return rt.WriteMuteToggle()
	},
}

var volumeCmd = &cobra.Command{
	Use:   "volume DELTA",
	Short: "Adjust volume by a signed amount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid volume delta %q: %w", args[0], err)
		}
		rt, err := openRuntimeStore()
		if err != nil {
			return err
		}
		return rt.WriteVolumeDelta(delta)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsFile, "config", "", "path to a settings file (optional)")
	rootCmd.AddCommand(channelCmd, muteCmd, volumeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openRuntimeStore() (*store.RuntimeStore, error) {
	cfg, err := config.Load(settingsFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return store.NewRuntimeStore(cfg.StateDir)
}
