// Command vordr manages design intent notes and enforces them through the
// PreToolUse hook.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/vordr/internal"
	"github.com/starford/vordr/internal/ack"
	"github.com/starford/vordr/internal/apperr"
	"github.com/starford/vordr/internal/audit"
	"github.com/starford/vordr/internal/authoring"
	"github.com/starford/vordr/internal/conflict"
	"github.com/starford/vordr/internal/hook"
	"github.com/starford/vordr/internal/mcpserver"
	"github.com/starford/vordr/internal/note"
	"github.com/starford/vordr/internal/notestore"
	pkgconfig "github.com/starford/vordr/pkg/config"
)

func main() {
	// CLI logging goes to stderr; stdout is reserved for command output and
	// the hook protocol.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	cmd := &cli.Command{
		Name:  "vordr",
		Usage: "Design intent notes for source files, enforced at edit time",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root (defaults to the working directory)",
				Sources: cli.EnvVars("VORDR_PROJECT_ROOT"),
			},
		},
		Commands: []*cli.Command{
			createCmd(), viewCmd(), deleteCmd(), listCmd(), migrateCmd(),
			checkCmd(), rebuildCmd(), auditCmd(), hookCmd(), serveCmd(), mcpCmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		// cli.Exit errors carry their own message and code.
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			cli.HandleExitCoder(err)
			return
		}
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

func openStore(cmd *cli.Command) (*notestore.Store, error) {
	return notestore.Open(cmd.String("root"), slog.Default())
}

func fail(format string, args ...any) error {
	return cli.Exit(fmt.Sprintf("✗ "+format, args...), 1)
}

func requireArg(cmd *cli.Command, i int, name string) (string, error) {
	v := cmd.Args().Get(i)
	if v == "" {
		return "", fail("missing argument: %s", name)
	}
	return v, nil
}

func createCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a design intent note for a file",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "defaults",
				Usage: "Skip the interactive flow and write an empty note skeleton",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			path, err := requireArg(cmd, 0, "path")
			if err != nil {
				return err
			}
			store, err := openStore(cmd)
			if err != nil {
				return fail("%v", err)
			}

			normalized := store.Resolver().Normalize(path)
			var n *note.Note
			if cmd.Bool("defaults") {
				n = note.New(normalized)
			} else {
				n, err = authoring.Build(normalized)
				if errors.Is(err, huh.ErrUserAborted) {
					return fail("cancelled")
				}
				if err != nil {
					return fail("%v", err)
				}
			}

			if err := store.Create(path, n); err != nil {
				if errors.Is(err, apperr.ErrAlreadyExists) {
					return fail("note already exists for %s", path)
				}
				return fail("%v", err)
			}
			fmt.Printf("✓ Note created for %s\n", normalized)
			return nil
		},
	}
}

func viewCmd() *cli.Command {
	return &cli.Command{
		Name:      "view",
		Usage:     "Show the note attached to a file",
		ArgsUsage: "<path>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			path, err := requireArg(cmd, 0, "path")
			if err != nil {
				return err
			}
			store, err := openStore(cmd)
			if err != nil {
				return fail("%v", err)
			}
			n := store.Load(path)
			if n == nil {
				return fail("no note found for %s", path)
			}
			fmt.Print(ack.Format(n, n.FilePath))
			fmt.Printf("Created: %s\nUpdated: %s\n", n.CreatedAt.Format("2006-01-02 15:04:05"), n.UpdatedAt.Format("2006-01-02 15:04:05"))
			if len(n.Tags) > 0 {
				fmt.Printf("Tags: %s\n", strings.Join(n.Tags, ", "))
			}
			for _, m := range n.MigrationHistory {
				fmt.Printf("Migrated %s → %s (%s)\n", m.OldPath, m.NewPath, m.Timestamp.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func deleteCmd() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete the note attached to a file",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Skip confirmation"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			path, err := requireArg(cmd, 0, "path")
			if err != nil {
				return err
			}
			store, err := openStore(cmd)
			if err != nil {
				return fail("%v", err)
			}

			if !cmd.Bool("force") {
				confirmed := false
				prompt := huh.NewForm(huh.NewGroup(
					huh.NewConfirm().Title(fmt.Sprintf("Delete note for %s?", path)).Value(&confirmed),
				))
				if err := prompt.Run(); err != nil || !confirmed {
					return fail("cancelled")
				}
			}

			if err := store.Delete(path); err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return fail("no note found for %s", path)
				}
				return fail("%v", err)
			}
			fmt.Printf("✓ Note deleted for %s\n", path)
			return nil
		},
	}
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all notes in the project",
		Action: func(_ context.Context, cmd *cli.Command) error {
			store, err := openStore(cmd)
			if err != nil {
				return fail("%v", err)
			}
			entries := store.List()
			if len(entries) == 0 {
				fmt.Println("No notes found.")
				return nil
			}
			for _, e := range entries {
				marker := " "
				if e.Critical {
					marker = "!"
				}
				fmt.Printf("%s %s  %s\n    %s (updated %s)\n",
					marker, e.FilePathHash[:8], e.FilePath,
					e.DesignIntentSummary, e.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:      "migrate",
		Usage:     "Move a note to a new file path (after a rename)",
		ArgsUsage: "<old-path> <new-path>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			oldPath, err := requireArg(cmd, 0, "old-path")
			if err != nil {
				return err
			}
			newPath, err := requireArg(cmd, 1, "new-path")
			if err != nil {
				return err
			}
			store, err := openStore(cmd)
			if err != nil {
				return fail("%v", err)
			}
			if err := store.Migrate(oldPath, newPath); err != nil {
				switch {
				case errors.Is(err, apperr.ErrNotFound):
					return fail("no note found for %s", oldPath)
				case errors.Is(err, apperr.ErrAlreadyExists):
					return fail("note already exists for %s", newPath)
				default:
					return fail("%v", err)
				}
			}
			fmt.Printf("✓ Note migrated %s → %s\n", oldPath, newPath)
			return nil
		},
	}
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Run the conflict detector against proposed content",
		ArgsUsage: "<path> <new-content-file> [old-content-file]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			path, err := requireArg(cmd, 0, "path")
			if err != nil {
				return err
			}
			newFile, err := requireArg(cmd, 1, "new-content-file")
			if err != nil {
				return err
			}
			store, err := openStore(cmd)
			if err != nil {
				return fail("%v", err)
			}

			n := store.Load(path)
			if n == nil {
				return fail("no note found for %s", path)
			}

			newContent, err := os.ReadFile(newFile)
			if err != nil {
				return fail("read %s: %v", newFile, err)
			}
			oldContent := ""
			if oldFile := cmd.Args().Get(2); oldFile != "" {
				data, err := os.ReadFile(oldFile)
				if err != nil {
					return fail("read %s: %v", oldFile, err)
				}
				oldContent = string(data)
			}

			rep := conflict.Detect(n, string(newContent), oldContent)
			out, _ := json.MarshalIndent(rep, "", "  ")
			fmt.Println(string(out))
			if rep.Frozen != nil {
				return cli.Exit("✗ frozen section violation: "+rep.Frozen.FrozenID, 1)
			}
			return nil
		},
	}
}

func rebuildCmd() *cli.Command {
	return &cli.Command{
		Name:  "rebuild",
		Usage: "Regenerate the note index from the note files on disk",
		Action: func(_ context.Context, cmd *cli.Command) error {
			store, err := openStore(cmd)
			if err != nil {
				return fail("%v", err)
			}
			if err := store.Rebuild(); err != nil {
				return fail("%v", err)
			}
			fmt.Printf("✓ Index rebuilt (%d notes)\n", len(store.List()))
			return nil
		},
	}
}

func auditCmd() *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "Show recent enforcement decisions",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Number of decisions to show"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			store, err := openStore(cmd)
			if err != nil {
				return fail("%v", err)
			}
			log, err := audit.Open(audit.FileFor(store.Root()))
			if err != nil {
				return fail("%v", err)
			}
			defer log.Close()

			decisions, err := log.Recent(int(cmd.Int("limit")))
			if err != nil {
				return fail("%v", err)
			}
			if len(decisions) == 0 {
				fmt.Println("No decisions recorded.")
				return nil
			}
			for _, d := range decisions {
				fmt.Printf("%s  %-5s  %-5s  %s  %s\n",
					d.At.Format("2006-01-02 15:04:05"), d.Decision, d.Tool, d.FilePath, d.Reason)
			}
			return nil
		},
	}
}

func hookCmd() *cli.Command {
	return &cli.Command{
		Name:  "hook",
		Usage: "Run as a PreToolUse hook (JSON on stdin)",
		Action: func(_ context.Context, cmd *cli.Command) error {
			runner := hook.NewRunner(slog.Default())
			code := runner.Run(os.Stdin, os.Stdout, os.Stderr)
			if code != 0 {
				return cli.Exit("", code)
			}
			return nil
		},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the read-only notes dashboard API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   "vordr.yaml",
				Sources: cli.EnvVars("VORDR_CONFIG_FILE"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := internal.NewDefaultConfig()
			if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
				return fail("failed to parse config: %v", err)
			}
			// The --root flag wins over the config file.
			if root := cmd.String("root"); root != "" {
				cfg.Project.Root = root
			}
			if err := cfg.Validate(); err != nil {
				return fail("invalid config: %v", err)
			}
			if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
				return fail("%v", err)
			}
			return nil
		},
	}
}

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve design note tools over MCP (stdio)",
		Action: func(_ context.Context, cmd *cli.Command) error {
			store, err := openStore(cmd)
			if err != nil {
				return fail("%v", err)
			}
			if err := mcpserver.New(store).ServeStdio(); err != nil {
				return fail("%v", err)
			}
			return nil
		},
	}
}
