package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/flemzord/chatlist/internal/config"
	"github.com/flemzord/chatlist/internal/cron"
)

func initCmd() *cobra.Command {
	var (
		path  string
		yes   bool
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: "Asks a few questions and writes a configuration file. With --yes the\n" +
			"questions are skipped and defaults are written.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}

			s := config.Starter{LogLevel: "info"}
			if !yes {
				if err := runWizard(&s); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
						return nil
					}
					return err
				}
			}

			out, err := s.Render()
			if err != nil {
				return err
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating %s: %w", dir, err)
				}
			}
			// The file may carry a bearer token.
			if err := os.WriteFile(path, out, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "output", "o", "chatlist.yaml", "Where to write the configuration")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the questions and write defaults")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func runWizard(s *config.Starter) error {
	var gateway bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("info", "debug", "warn", "error")...).
				Value(&s.LogLevel),
			huh.NewInput().
				Title("Database path").
				Description("Leave empty to use the data directory.").
				Value(&s.DatabasePath),
			huh.NewInput().
				Title("Time zone for labels").
				Placeholder("Local").
				Validate(validLocation).
				Value(&s.Location),
			huh.NewInput().
				Title("Relabel schedule").
				Description("Cron expression; refreshes Today/Yesterday labels.").
				Placeholder("0 0 * * *").
				Validate(validSchedule).
				Value(&s.RelabelSchedule),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Serve the HTTP API?").
				Value(&gateway),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Bind address").
				Placeholder("127.0.0.1:8080").
				Validate(validBind).
				Value(&s.Bind),
			huh.NewInput().
				Title("Bearer token").
				Description("Use ${VAR} to read it from the environment.").
				EchoMode(huh.EchoModePassword).
				Value(&s.AuthToken),
		).WithHideFunc(func() bool { return !gateway }),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if gateway && s.Bind == "" {
		s.Bind = "127.0.0.1:8080"
	}
	if !gateway {
		s.Bind, s.AuthToken = "", ""
	}
	return nil
}

func validLocation(name string) error {
	if name == "" {
		return nil
	}
	_, err := time.LoadLocation(name)
	return err
}

func validSchedule(spec string) error {
	if spec == "" {
		return nil
	}
	return cron.ValidateSchedule(spec)
}

func validBind(addr string) error {
	if addr == "" {
		return nil
	}
	_, err := net.ResolveTCPAddr("tcp", addr)
	return err
}
