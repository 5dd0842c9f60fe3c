package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
	"go.uber.org/zap"

	"dlcini/internal/catalog"
	"dlcini/internal/config"
	"dlcini/internal/logging"
	"dlcini/internal/model"
	"dlcini/internal/report"
	"dlcini/internal/service"
	"dlcini/internal/store"
	"dlcini/internal/tui"
	"dlcini/internal/web"
)

func checkUpdate(currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      "dlcini",
		Repository: "dlcini",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not check for updates: %v\n", err)
		return
	}

	if res.Outdated {
		fmt.Printf("\n✨ A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Println("👉 Download it from https://github.com/dlcini/dlcini/releases")
	} else {
		fmt.Printf("✅ You are using the latest version: %s\n", currentVer)
	}
}

// cliOptions are the flags that edit or print the document without the TUI.
type cliOptions struct {
	show      bool
	verbose   bool
	asJSON    bool
	asYAML    bool
	output    string
	add       []string
	remove    []string
	set       []string
	unlockAll string
	discover  string
	search    string
}

func (o cliOptions) active() bool {
	return o.show || o.asJSON || o.asYAML || len(o.add) > 0 || len(o.remove) > 0 ||
		len(o.set) > 0 || o.unlockAll != "" || o.discover != "" || o.search != ""
}

func (o cliOptions) edits() bool {
	return len(o.add) > 0 || len(o.remove) > 0 || len(o.set) > 0 || o.unlockAll != ""
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dlcini [options]\n\n")
		fmt.Fprintf(os.Stderr, "dlcini edits the [dlc] list and [steam] settings of a CreamAPI cream_api.ini,\n")
		fmt.Fprintf(os.Stderr, "leaving comments and every other section of the file untouched.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  dlcini                               # Start TUI mode on the last used file\n")
		fmt.Fprintf(os.Stderr, "  dlcini -f cream_api.ini --show       # Print a report\n")
		fmt.Fprintf(os.Stderr, "  dlcini --add 110902='Soundtrack'     # Add a DLC entry\n")
		fmt.Fprintf(os.Stderr, "  dlcini --set appid=480 --unlock-all=true\n")
		fmt.Fprintf(os.Stderr, "  dlcini --discover 480 --json         # List store DLCs of app 480\n")
		fmt.Fprintf(os.Stderr, "  dlcini -w --port 9000                # Start Web Mode\n")
	}

	var opts cliOptions
	fileFlag := pflag.StringP("file", "f", "", "cream_api.ini to edit (remembered for next time)")
	pflag.BoolVarP(&opts.show, "show", "s", false, "Print a report of the file")
	pflag.BoolVarP(&opts.verbose, "verbose", "v", false, "Include the [dlc] block location in the report")
	pflag.BoolVarP(&opts.asJSON, "json", "j", false, "Print the file (or lookup results) as JSON")
	pflag.BoolVarP(&opts.asYAML, "yaml", "y", false, "Print the file as YAML")
	pflag.StringVarP(&opts.output, "output", "o", "", "Save the report to the specified file (combined with --show)")
	pflag.StringArrayVar(&opts.add, "add", nil, "Add or rename a DLC, as id=name (repeatable)")
	pflag.StringArrayVar(&opts.remove, "remove", nil, "Remove a DLC by id (repeatable)")
	pflag.StringArrayVar(&opts.set, "set", nil, "Set a [steam] field, as key=value (repeatable)")
	pflag.StringVar(&opts.unlockAll, "unlock-all", "", "Set unlockall to true or false")
	pflag.StringVar(&opts.discover, "discover", "", "List the store DLCs of an app id")
	pflag.StringVar(&opts.search, "search", "", "Search the store for DLCs by name")
	webFlag := pflag.BoolP("web", "w", false, "Start Web Mode on http://localhost:<port>")
	portFlag := pflag.Int("port", 0, "Web Mode port (default from settings, 8080)")
	configFlag := pflag.String("config", "", "Settings file (default "+config.DefaultPath()+")")
	logLevelFlag := pflag.String("log-level", "", "Log level: debug, info, warn, error")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	updateFlag := pflag.BoolP("update", "u", false, "Check for the latest version")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("dlcini version %s\n", model.Version)
		return
	}

	if *updateFlag {
		checkUpdate(model.Version)
		return
	}

	settingsMgr := config.NewManager(*configFlag)
	if err := settingsMgr.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	settings := settingsMgr.Get()

	level := settings.LogLevel
	if *logLevelFlag != "" {
		level = *logLevelFlag
	}
	tuiMode := !*webFlag && !opts.active()
	logFile := settings.LogFile
	if tuiMode && logFile == "" {
		// the TUI owns the terminal
		logFile = filepath.Join(filepath.Dir(settingsMgr.Path()), "dlcini.log")
	}
	log := logging.Must(level, logFile)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	finder := catalog.New(catalog.Options{
		BaseURL:        settings.Store.BaseURL,
		Language:       settings.Store.Language,
		Country:        settings.Store.Country,
		TimeoutSeconds: settings.Store.TimeoutSeconds,
		ChunkSize:      settings.Store.ChunkSize,
		SearchLimit:    settings.Store.SearchLimit,
	}, log)
	editor := service.NewEditor(store.NewSession(settings.LastFile, log), finder, settingsMgr, log)

	if *fileFlag != "" {
		if _, err := editor.ChooseFile(*fileFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *webFlag {
		port := settings.WebPort
		if *portFlag > 0 {
			port = *portFlag
		}
		if err := web.StartServer(ctx, editor, port, log); err != nil {
			log.Error("web server stopped", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if opts.active() {
		if err := runCLIMode(ctx, editor, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Default: TUI
	runTuiMode(ctx, editor, log)
}

// runCLIMode applies the edit flags in a fixed order (set, unlock-all,
// remove, add), then prints whatever was asked for.
func runCLIMode(ctx context.Context, editor *service.Editor, opts cliOptions) error {
	for _, kv := range opts.set {
		key, value, err := parsePair(kv)
		if err != nil {
			return err
		}
		if err := editor.SetPrimaryField(ctx, key, value); err != nil {
			return err
		}
	}
	if opts.unlockAll != "" {
		on, err := strconv.ParseBool(opts.unlockAll)
		if err != nil {
			return fmt.Errorf("--unlock-all: expected true or false, got %q", opts.unlockAll)
		}
		if err := editor.SetUnlockAll(ctx, on); err != nil {
			return err
		}
	}
	for _, id := range opts.remove {
		if _, err := editor.RemoveEntry(ctx, id); err != nil {
			return err
		}
	}
	if len(opts.add) > 0 {
		cands := make([]model.Candidate, 0, len(opts.add))
		for _, kv := range opts.add {
			id, name, err := parsePair(kv)
			if err != nil {
				return err
			}
			cands = append(cands, model.Candidate{AppID: id, Name: name})
		}
		if _, err := editor.AddEntries(ctx, cands); err != nil {
			return err
		}
	}

	if opts.discover != "" || opts.search != "" {
		var res service.Result[[]model.Candidate]
		if opts.discover != "" {
			res = service.Do(func() ([]model.Candidate, error) { return editor.DiscoverByAppID(ctx, opts.discover) })
		} else {
			res = service.Do(func() ([]model.Candidate, error) { return editor.SearchByName(ctx, opts.search) })
		}
		if opts.asJSON {
			return printJSON(res)
		}
		if !res.OK {
			return errors.New(res.Error)
		}
		fmt.Println(candidateTable(res.Value))
		return nil
	}

	if !opts.show && !opts.asJSON && !opts.asYAML {
		if opts.edits() {
			fmt.Printf("Updated %s\n", editor.Path())
		}
		return nil
	}

	res := service.Do(func() (service.Document, error) { return editor.Load(ctx) })
	switch {
	case opts.asJSON:
		return printJSON(res)
	case !res.OK:
		return errors.New(res.Error)
	case opts.asYAML:
		out, err := report.YAML(res.Value)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	text := report.Generate(res.Value, opts.verbose)
	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing report to %s: %w", opts.output, err)
		}
		fmt.Printf("Report saved to %s\n", opts.output)
		return nil
	}
	fmt.Print(text)
	return nil
}

// parsePair splits "key=value" at the first '='.
func parsePair(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return "", "", fmt.Errorf("expected key=value, got %q", s)
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func candidateTable(cands []model.Candidate) string {
	if len(cands) == 0 {
		return "No DLCs found."
	}
	rows := make([][]string, 0, len(cands))
	for _, c := range cands {
		rows = append(rows, []string{c.AppID, c.Name, c.ReleaseDate, c.Price})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("APPID", "NAME", "RELEASED", "PRICE").
		Rows(rows...).
		String()
}

func runTuiMode(ctx context.Context, editor *service.Editor, log *zap.Logger) {
	m := tui.InitialModel(ctx, editor, log)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
