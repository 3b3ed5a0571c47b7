package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/noah-isme/sma-odoo-sync/internal/lists"
	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/pkg/export"
)

func healthCommand(s *cliState) *cobra.Command {
	var (
		retries int
		delay   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check whether the Odoo server answers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			health := s.app.Sessions.CheckServerHealthWithRetry(cmd.Context(), retries, delay)
			if !health.OK {
				return fmt.Errorf("odoo unreachable after %d attempt(s): %s", retries, health.Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "odoo reachable at %s (%s)\n", s.app.Config.Odoo.Host, health.Duration)
			return nil
		},
	}
	cmd.Flags().IntVar(&retries, "retries", 3, "Number of attempts")
	cmd.Flags().DurationVar(&delay, "delay", 2*time.Second, "Delay between attempts")
	return cmd
}

func loginCommand(s *cliState, v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with --username/--password and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			username := v.GetString("username")
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			session, err := s.app.Sessions.Login(cmd.Context(), models.LoginRequest{Username: username, Password: v.GetString("password")})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", session.FullName, session.Role)
			return nil
		},
	}
}

func logoutCommand(s *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.app.Sessions.Logout(cmd.Context())
		},
	}
}

func listCommand(s *cliState, v *viper.Viper) *cobra.Command {
	var (
		search string
		page   int
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:       "list <entity>",
		Short:     "Load a list, optionally searching and paging",
		Args:      cobra.ExactArgs(1),
		ValidArgs: s.listNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := s.ensureSession(ctx, v); err != nil {
				return err
			}
			l, ok := s.app.Lists.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown list %q, expected one of %s", args[0], strings.Join(s.app.Lists.Names(), ", "))
			}
			l.Start(ctx)
			if search != "" {
				l.ApplySearch(ctx, search)
			}
			if page > 0 {
				if _, err := l.GoToPage(ctx, page); err != nil {
					return err
				}
			}
			if l.Offline() {
				fmt.Fprintf(cmd.ErrOrStderr(), "offline: %s\n", l.Notice())
			}

			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(l.State())
			case "table":
				return printTable(cmd.OutOrStdout(), l.Export())
			default:
				renderer, err := export.ForFormat(format)
				if err != nil {
					return err
				}
				body, err := renderer.Render(l.Export())
				if err != nil {
					return err
				}
				if output == "" {
					output = export.Filename(l.Name(), renderer)
				}
				if err := os.WriteFile(output, body, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
				return nil
			}
		},
	}
	cmd.Flags().StringVarP(&search, "search", "q", "", "Search query")
	cmd.Flags().IntVarP(&page, "page", "p", 0, "Page to show")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "table, json, csv or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "File for csv/pdf output")
	return cmd
}

func syncCommand(s *cliState, v *viper.Viper) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Load every list once and report its state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := s.ensureSession(ctx, v); err != nil {
				return err
			}
			if err := s.app.StartWarmup(ctx); err != nil {
				return err
			}
			drainCtx, cancel := contextWithTimeout(ctx, timeout)
			defer cancel()
			if err := s.app.Warmup.Drain(drainCtx); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "sync incomplete: %v\n", err)
			}
			for _, name := range s.app.Lists.Names() {
				l, _ := s.app.Lists.Get(name)
				status := "online"
				if l.Offline() {
					status = "offline " + l.Notice()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %4d rows  %s\n", name, len(l.Export().Rows), status)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Give up waiting after this long")
	return cmd
}

func attendanceCommand(s *cliState, v *viper.Viper) *cobra.Command {
	attendanceCmd := &cobra.Command{
		Use:   "attendance",
		Short: "Attendance operations",
	}

	var (
		file       string
		scheduleID int64
		date       string
	)
	bulkCmd := &cobra.Command{
		Use:   "bulk",
		Short: "Register a class from a JSON file of student rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := s.ensureSession(ctx, v); err != nil {
				return err
			}
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var req models.BulkStudentAttendance
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}
			if scheduleID > 0 {
				req.ScheduleID = scheduleID
			}
			if date != "" {
				req.Date = date
			}
			res := s.app.Services.Attendance.RegisterBulk(ctx, req)
			if !res.Success {
				if res.SessionExpired {
					return fmt.Errorf("session expired, sign in again")
				}
				return fmt.Errorf("attendance rejected: %s", res.Message)
			}
			ids := append([]int64(nil), res.IDs...)
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			fmt.Fprintf(cmd.OutOrStdout(), "registered %d record(s): %v\n", len(ids), ids)
			return nil
		},
	}
	bulkCmd.Flags().StringVar(&file, "file", "", "JSON file with schedule_id, date and students")
	bulkCmd.Flags().Int64Var(&scheduleID, "schedule", 0, "Override schedule_id")
	bulkCmd.Flags().StringVar(&date, "date", "", "Override date, YYYY-MM-DD")
	_ = bulkCmd.MarkFlagRequired("file")

	attendanceCmd.AddCommand(bulkCmd)
	return attendanceCmd
}

func (s *cliState) listNames() []string {
	return []string{
		lists.NameSchoolYears, lists.NameEvaluations, lists.NameProfessors,
		lists.NameSections, lists.NameEnrolledSections, lists.NameSubjects, lists.NameStudents,
		lists.NameEnrollments, lists.NameAttendance, lists.NameTimeSlots,
	}
}
