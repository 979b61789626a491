package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirei-dev/kirei/internal/config"
	"github.com/kirei-dev/kirei/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		name  string
		queue string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default kirei.json",
		Long: `Write a kirei.json with default settings into dir
(default: the current directory).

Examples:
  kirei init
  kirei init ./service --name=orders
  kirei init --queue=deferred`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			path, err := runInit(dir, name, queue, force)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name")
	cmd.Flags().StringVarP(&queue, "queue", "q", config.QueueSync, "Scheduler queue mode (sync, deferred)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing kirei.json")

	return cmd
}

func runInit(dir, name, queue string, force bool) (string, error) {
	if config.Exists(dir) && !force {
		return "", errors.New("CLI002").
			WithDetail("kirei.json already exists in " + dir).
			WithSuggestion("Pass --force to overwrite it")
	}

	cfg := config.New()
	cfg.Name = name
	cfg.Fx.Queue = queue
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	path := filepath.Join(dir, config.ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		return "", err
	}
	return path, nil
}
