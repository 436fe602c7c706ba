package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/azln/zenith/internal/applog"
	"github.com/azln/zenith/internal/bridge"
	"github.com/azln/zenith/internal/export"
	"github.com/azln/zenith/internal/prefs"
	"github.com/azln/zenith/internal/preview"
	"github.com/azln/zenith/internal/snapshot"
	"github.com/azln/zenith/internal/storage"
	"github.com/azln/zenith/internal/tui"
	"github.com/azln/zenith/internal/types"
)

const defaultPort = 8747

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "snapshot":
			runSnapshot(os.Args[2:])
			return
		case "export":
			runExport(os.Args[2:])
			return
		case "windows":
			runWindows(os.Args[2:])
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}

	fs := flag.NewFlagSet("zenith", flag.ExitOnError)
	port := fs.Int("port", defaultPort, "WebSocket port the extension connects to")
	fs.Parse(os.Args[1:])

	dataDir := resolveDataDir()
	if err := applog.Init(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer applog.Close()

	ps, err := prefs.Open(prefs.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening preferences: %v\n", err)
		os.Exit(1)
	}
	defer ps.Close()

	pc, err := preview.NewCache(filepath.Join(dataDir, "previews"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening preview cache: %v\n", err)
		os.Exit(1)
	}

	b := bridge.New(resolvePort(*port))

	// External edits to the prefs file surface in the UI as a refresh.
	ps.Watch(func(prefs.Prefs) {
		b.NotifyPrefsChanged()
	})

	model := tui.NewModel(b, ps, pc)
	if err := tui.Run(model); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Print(`zenith — browser tab sidebar for the terminal

Usage:
  zenith                                     Start the sidebar (default)
    --port <n>           WebSocket port the extension connects to (default: 8747)

  zenith export                              Export live tabs to stdout or file
    --json               Export as JSON instead of markdown
    --out <file>         Output file path (default: stdout)
    --port <n>           WebSocket port (default: 8747)

  zenith windows                             List open browser windows

  zenith snapshot [--label "text"]           Archive the live window
  zenith snapshot list                       List saved archives
  zenith snapshot diff [rev]                 Compare an archive against live tabs
  zenith snapshot delete <rev> [--yes]       Delete an archive

Environment:
  ZENITH_PORT        Default WebSocket port (overridden by --port flag)
  ZENITH_DATA_DIR    Data directory (default: ~/.local/share/zenith)
`)
}

func resolveDataDir() string {
	if dir := os.Getenv("ZENITH_DATA_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "zenith")
}

// resolvePort returns the flag value unless it is the default and
// ZENITH_PORT is set.
func resolvePort(flagValue int) int {
	if flagValue != defaultPort {
		return flagValue
	}
	if env := os.Getenv("ZENITH_PORT"); env != "" {
		if p, err := strconv.Atoi(env); err == nil {
			return p
		}
	}
	return flagValue
}

// fetchLive stands up the bridge and waits for the extension to connect
// and deliver a snapshot. One-shot commands pay this cost each run.
func fetchLive(port int) (*types.Snapshot, error) {
	b := bridge.New(port)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	go b.ListenAndServe(ctx)
	fmt.Fprintf(os.Stderr, "Waiting for extension on port %d...\n", port)

	for {
		select {
		case ev := <-b.Events():
			if ev.Kind != bridge.EventConnected {
				continue
			}
			snap, ok := b.FetchSnapshot(ctx, 0)
			if !ok {
				return nil, fmt.Errorf("extension connected but snapshot fetch failed")
			}
			return snap, nil
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for extension (15s)")
		}
	}
}

func openDB() (*sql.DB, error) {
	dbPath, err := storage.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return storage.OpenDB(dbPath)
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	jsonFlag := fs.Bool("json", false, "Export as JSON instead of markdown")
	outFile := fs.String("out", "", "Output file path (default: stdout)")
	port := fs.Int("port", defaultPort, "WebSocket port")
	fs.Parse(args)

	snap, err := fetchLive(resolvePort(*port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var output string
	if *jsonFlag {
		output, err = export.JSON(snap)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating JSON: %v\n", err)
			os.Exit(1)
		}
	} else {
		output = export.Markdown(snap)
	}

	if *outFile != "" {
		if err := os.WriteFile(*outFile, []byte(output), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Print(output)
	}
}

func runWindows(args []string) {
	fs := flag.NewFlagSet("windows", flag.ExitOnError)
	port := fs.Int("port", defaultPort, "WebSocket port")
	fs.Parse(args)

	b := bridge.New(resolvePort(*port))
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	go b.ListenAndServe(ctx)
	fmt.Fprintf(os.Stderr, "Waiting for extension on port %d...\n", resolvePort(*port))

	for {
		select {
		case ev := <-b.Events():
			if ev.Kind != bridge.EventConnected {
				continue
			}
			windows := b.GetWindows(ctx)
			if len(windows) == 0 {
				fmt.Println("No windows reported.")
				return
			}
			for _, w := range windows {
				suffix := ""
				if w.Focused {
					suffix = " [focused]"
				}
				fmt.Printf("window %d: %d tabs%s\n", w.ID, w.TabCount, suffix)
			}
			return
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "Error: timed out waiting for extension (15s)")
			os.Exit(1)
		}
	}
}

func runSnapshot(args []string) {
	// No args or a leading flag means the create flow.
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		runSnapshotCreate(args)
		return
	}

	subcmd := args[0]
	subArgs := args[1:]

	switch subcmd {
	case "create":
		runSnapshotCreate(subArgs)
	case "list":
		runSnapshotList()
	case "diff":
		runSnapshotDiff(subArgs)
	case "delete":
		runSnapshotDelete(subArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown snapshot command %q. Use list, diff, or delete.\n", subcmd)
		os.Exit(1)
	}
}

func runSnapshotCreate(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	label := fs.String("label", "", "Optional label for the archive")
	port := fs.Int("port", defaultPort, "WebSocket port")
	fs.Parse(args)

	snap, err := fetchLive(resolvePort(*port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	rev, err := storage.CreateArchive(db, snap, *label)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating archive: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Archive #%d created: %d tabs in %d groups\n", rev, len(snap.Tabs), len(snap.Groups))
}

func runSnapshotList() {
	db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	archives, err := storage.ListArchives(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing archives: %v\n", err)
		os.Exit(1)
	}

	if len(archives) == 0 {
		fmt.Println("No archives found.")
		return
	}

	fmt.Printf("%-5s %5s  %-20s  %s\n", "REV", "TABS", "LABEL", "CREATED")
	for _, a := range archives {
		fmt.Printf("%5d %5d  %-20s  %s\n",
			a.Rev,
			a.TabCount,
			a.Label,
			a.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
}

func runSnapshotDiff(args []string) {
	fs := flag.NewFlagSet("snapshot diff", flag.ExitOnError)
	port := fs.Int("port", defaultPort, "WebSocket port")
	fs.Parse(reorderArgs(args))

	rev := 0
	if fs.NArg() > 0 {
		var err error
		rev, err = strconv.Atoi(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid revision number: %s\n", fs.Arg(0))
			os.Exit(1)
		}
	}

	db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// No rev argument means diff against the newest archive.
	if rev == 0 {
		latest, err := storage.GetLatestArchive(db)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if latest == nil {
			fmt.Fprintln(os.Stderr, "No archives to diff against.")
			os.Exit(1)
		}
		rev = latest.Rev
	}

	snap, err := fetchLive(resolvePort(*port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	result, err := snapshot.Diff(db, rev, snap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(snapshot.FormatDiff(result))
}

func runSnapshotDelete(args []string) {
	fs := flag.NewFlagSet("snapshot delete", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Skip confirmation prompt")
	fs.Parse(reorderArgs(args))

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: zenith snapshot delete <rev> [--yes]")
		os.Exit(1)
	}

	rev, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid revision number: %s\n", fs.Arg(0))
		os.Exit(1)
	}

	if !*yes {
		fmt.Printf("Delete archive #%d? [y/N] ", rev)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return
		}
	}

	db, err := openDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.DeleteArchive(db, rev); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting archive: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Archive #%d deleted.\n", rev)
}

// reorderArgs moves flag arguments before positional arguments so that
// flag.Parse handles them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			flags = append(flags, args[i])
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				flags = append(flags, args[i+1])
				i++
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
