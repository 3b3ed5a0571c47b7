package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-odoo-sync/internal/app"
	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/pkg/config"
	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
	"github.com/noah-isme/sma-odoo-sync/pkg/logger"
)

type cliState struct {
	app *app.App
}

func rootCommand() *cobra.Command {
	state := &cliState{}

	rootCmd := &cobra.Command{
		Use:           "schoolctl",
		Short:         "School management sync CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("odoo-host", "", "Odoo base URL, overrides ODOO_HOST")
	flags.String("odoo-database", "", "Odoo database, overrides ODOO_DATABASE")
	flags.String("username", "", "Sign in with this user when no session is stored")
	flags.String("password", "", "Password for --username, defaults to SCHOOLCTL_PASSWORD")
	flags.String("log-level", "warn", "Log level")

	v := viper.New()
	v.SetEnvPrefix("schoolctl")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if host := v.GetString("odoo-host"); host != "" {
			cfg.Odoo.Host = host
		}
		if db := v.GetString("odoo-database"); db != "" {
			cfg.Odoo.Database = db
		}
		cfg.Log.Level = v.GetString("log-level")
		cfg.Log.Format = "console"

		logr, err := logger.New(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		state.app, err = app.New(cfg, logr)
		return err
	}
	rootCmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		if state.app == nil {
			return nil
		}
		_ = state.app.Logger.Sync()
		return state.app.Close()
	}

	rootCmd.AddCommand(
		healthCommand(state),
		loginCommand(state, v),
		logoutCommand(state),
		listCommand(state, v),
		syncCommand(state, v),
		attendanceCommand(state, v),
	)
	return rootCmd
}

// ensureSession returns the stored session, signing in with the global
// credentials when there is none.
func (s *cliState) ensureSession(ctx context.Context, v *viper.Viper) (*models.UserSession, error) {
	session, err := s.app.Sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}
	username := v.GetString("username")
	if username == "" {
		return nil, appErrors.ErrNoSession
	}
	session, err = s.app.Sessions.Login(ctx, models.LoginRequest{Username: username, Password: v.GetString("password")})
	if err != nil {
		return nil, err
	}
	s.app.Logger.Debug("signed in", zap.String("username", session.Username))
	return session, nil
}
