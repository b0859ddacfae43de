package main

import (
	"fmt"
	"os"

	"github.com/ArthurCbn/photobot/internal/config"
	"github.com/spf13/cobra"
)

var (
	appVersion = "0.1.0"
	cfgFile    string
	groupsFile string
	exifTool   string
	recursive  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "photobot",
	Short: "Sort photos and videos into folders by date and place",
	Long: `photobot reads the capture date and GPS position of each photo or video,
matches it against user-defined groups (date ranges, circles, polygons) and
moves it to DEST/YEAR/GROUP[/MONTH]. Groups are edited on a map with
"photobot map" or from the command line.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&groupsFile, "groups", "", "group store (.json, or read-only .csv)")
	rootCmd.PersistentFlags().StringVar(&exifTool, "exiftool", "", "path to the exiftool binary")

	rootCmd.AddCommand(sortCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers the config file, PHOTOBOT_* variables and the shared
// flags, in that order.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}
	cfg.ApplyEnv()

	if groupsFile != "" {
		cfg.GroupsFile = groupsFile
	}
	if exifTool != "" {
		cfg.ExifToolPath = exifTool
	}
	if recursive {
		cfg.Recursive = true
	}
	return cfg, nil
}
