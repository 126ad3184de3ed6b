package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/claude-linux/claude-desktop-builder/internal/config"
	"github.com/claude-linux/claude-desktop-builder/internal/pipeline"
	"github.com/claude-linux/claude-desktop-builder/internal/utils/logger"
)

var (
	configPath     string
	logLevel       string
	workDir        string
	keepWorkDir    bool
	archiveWorkDir bool
	signKeyPath    string
)

func main() {
	root := createRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "claude-desktop-builder",
		Short: "repackages the Claude Desktop Windows installer as a Linux package",
		Long: `claude-desktop-builder downloads the vendor Windows installer,
		extracts the embedded application, replaces the native-integration
		module with a Linux-safe stub and produces an RPM (Fedora) or a
		PKGBUILD recipe (Asahi). Must be run as root: missing build tools
		are installed through the host package manager.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          executeBuild,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"Shorthand for --log-level debug")

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Optional YAML build configuration")
	rootCmd.Flags().StringVar(&workDir, "work-dir", "",
		"Override the build working directory")
	rootCmd.Flags().BoolVar(&keepWorkDir, "keep-workdir", false,
		"Leave the working directory in place for inspection")
	rootCmd.Flags().BoolVar(&archiveWorkDir, "archive-workdir", false,
		"Bundle the work dir's text artifacts into a .tar.xz next to the build report")
	rootCmd.Flags().StringVar(&signKeyPath, "sign-key", "",
		"Armored GPG private key used to sign the built RPM")

	rootCmd.AddCommand(createVersionCommand())
	return rootCmd
}

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "prints the upstream release this builder packages",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "claude-desktop %s\n", pipeline.Version)
		},
	}
}

func executeBuild(cmd *cobra.Command, args []string) error {
	if err := logger.Init(resolveRequestedLogLevel(cmd)); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	return pipeline.Run(cfg)
}

// resolveRequestedLogLevel prefers an explicit --log-level, then --verbose,
// then the default.
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd != nil {
		if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && verbose {
			return "debug"
		}
	}
	return ""
}

func loadConfig() (*config.BuildConfig, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if workDir != "" {
		cfg.WorkDir = workDir
	}
	cfg.KeepWorkDir = keepWorkDir
	cfg.ArchiveWorkDir = archiveWorkDir
	cfg.SignKeyPath = signKeyPath
	return cfg, nil
}
