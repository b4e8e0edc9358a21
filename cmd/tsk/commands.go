package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taxilian/tsk/internal/config"
	"github.com/taxilian/tsk/internal/db"
	"github.com/taxilian/tsk/internal/tui"
)

var (
	flagPriority      int
	flagTime          string
	flagClearTime     bool
	flagClearPriority bool
	flagClearProject  bool
	flagExportYAML    bool
	flagExportOutput  string
	flagConfigForce   bool
)

// optionalInt returns the flag value only when it was given.
func optionalInt(cmd *cobra.Command, name string, value int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func optionalString(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

var addCmd = &cobra.Command{
	Use:     "add <text...>",
	Aliases: []string{"a"},
	Short:   "Add a new task",
	Long: `Add a task. Words starting with + become tags and @name sets the project.

Deadlines accept casual expressions:
  today, tomorrow, today 5pm, tomorrow 9:30am, fri, monday 2pm,
  3pm, 14:00, in 2 hours, in 3 days, 12/25, 2024-12-25

Examples:
  tsk add Buy milk
  tsk add "Write report" -p 1 -t "tomorrow 3pm" +work @acme`,
	RunE: func(cmd *cobra.Command, args []string) error {
		priority := optionalInt(cmd, "priority", flagPriority)
		timeExpr := optionalString(cmd, "time", flagTime)
		return withApp(cmd, func(a *app) error { return a.add(args, priority, timeExpr) })
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List open tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error { return a.list(listOpen) })
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Show all tasks including completed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error { return a.list(listAll) })
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show overdue, due today and high priority tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error { return a.today() })
	},
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show tasks due within seven days",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error { return a.list(listWeek) })
	},
}

var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "Show overdue tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error { return a.list(listOverdue) })
	},
}

var doneCmd = &cobra.Command{
	Use:     "done <id>...",
	Aliases: []string{"d"},
	Short:   "Mark task(s) as done",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error { return a.done(args) })
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Aliases: []string{"rm"},
	Short:   "Delete task(s)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error { return a.delete(args) })
	},
}

var editCmd = &cobra.Command{
	Use:     "edit <id> [text...]",
	Aliases: []string{"e"},
	Short:   "Edit a task",
	Long: `Edit a task's text, priority, deadline, project or tags.

Words starting with + add a tag, -tag removes one and @name sets the project.
Remaining words replace the text. Put -tag words after "--" so they are not
read as flags.

Examples:
  tsk edit 3 Call the bank
  tsk edit 3 -t fri -- +urgent -someday
  tsk edit 3 --clear-time --clear-priority`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := editOptions{
			priority:      optionalInt(cmd, "priority", flagPriority),
			timeExpr:      optionalString(cmd, "time", flagTime),
			clearTime:     flagClearTime,
			clearPriority: flagClearPriority,
			clearProject:  flagClearProject,
		}
		return withApp(cmd, func(a *app) error { return a.edit(args, opts) })
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all completed tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error { return a.clear() })
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error { return a.stats() })
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Revert the last change",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error { return a.undo() })
	},
}

var projectCmd = &cobra.Command{
	Use:   "project <name>",
	Short: "Show open tasks in a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error { return a.project(args[0]) })
	},
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects with open task counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error { return a.projects() })
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every task as JSON or YAML",
	Long: `Export the full task list, including completed tasks.

Examples:
  tsk export                 # JSON to stdout
  tsk export --yaml          # YAML to stdout
  tsk export -o tasks.json   # Write to a file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error { return a.export(flagExportYAML, flagExportOutput) })
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse and edit tasks interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return tui.Run(a.backend, tui.Options{
				Now:    clock,
				Sort:   a.sort,
				Filter: a.filter,
				Color:  a.view.UseColor,
			})
		})
	},
}

var errNeedsSQLite = errors.New("backups require store.backend = \"sqlite\"")

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the SQLite store",
	Long: `Write a snapshot of the SQLite store to the backups directory next to it.
The newest 10 backups are kept; older ones are pruned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			database, ok := a.backend.(*db.DB)
			if !ok {
				return errNeedsSQLite
			}
			path, err := database.Backup()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Backup created: %s\n", path)
			return nil
		})
	},
}

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List SQLite store backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			database, ok := a.backend.(*db.DB)
			if !ok {
				return errNeedsSQLite
			}
			backups, err := database.ListBackups()
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Fprintln(a.out, "No backups found")
				return nil
			}
			for _, b := range backups {
				fmt.Fprintf(a.out, "%s  %s  %d bytes\n", b.ModTime.Format("2006-01-02 15:04:05"), b.Name, b.Size)
			}
			return nil
		})
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if err := config.Default().Write(path, flagConfigForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := cfg.Encode()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func configPath() (string, error) {
	if flagConfigPath != "" {
		return flagConfigPath, nil
	}
	return config.DefaultPath()
}

func init() {
	// add and edit flags
	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().IntVarP(&flagPriority, "priority", "p", 0, "Priority (1=high, 2=medium, 3=low)")
		c.Flags().StringVarP(&flagTime, "time", "t", "", "Deadline, e.g. \"tomorrow 3pm\"")
	}

	// edit flags
	editCmd.Flags().BoolVar(&flagClearTime, "clear-time", false, "Clear the deadline")
	editCmd.Flags().BoolVar(&flagClearPriority, "clear-priority", false, "Clear the priority")
	editCmd.Flags().BoolVar(&flagClearProject, "clear-project", false, "Clear the project")

	// export flags
	exportCmd.Flags().BoolVar(&flagExportYAML, "yaml", false, "Export YAML instead of JSON")
	exportCmd.Flags().StringVarP(&flagExportOutput, "output", "o", "", "Write to file instead of stdout")

	// config subcommands
	configInitCmd.Flags().BoolVar(&flagConfigForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(allCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(overdueCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(configCmd)
}
