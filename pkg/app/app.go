package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/zurustar/heaplab/pkg/cli"
	"github.com/zurustar/heaplab/pkg/console"
	"github.com/zurustar/heaplab/pkg/logger"
	"github.com/zurustar/heaplab/pkg/script"
	"github.com/zurustar/heaplab/pkg/vm"
)

// 対話モードの設定
const (
	prompt             = "> "
	defaultHistoryFile = ".heaplab_history"
)

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config  *cli.Config
	log     *slog.Logger
	session *console.Session

	stdout io.Writer
	stderr io.Writer
}

// Option is a functional option for configuring the Application.
type Option func(*Application)

// WithOutput 標準出力と標準エラー出力の代わりに使う出力先を設定
func WithOutput(stdout, stderr io.Writer) Option {
	return func(app *Application) {
		app.stdout = stdout
		app.stderr = stderr
	}
}

// New Applicationを作成
func New(opts ...Option) *Application {
	app := &Application{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// 3. ネイティブ関数一覧の出力
	if app.config.DumpBuiltins {
		return app.dumpBuiltins()
	}

	app.log.Info("Application started",
		"memorySize", app.config.MemorySize, "displayBase", app.config.DisplayBase)

	// 4. VMとセッションの作成
	app.session = app.newSession()

	// 5. スクリプトの実行、または対話モード
	if app.config.ScriptPath != "" {
		if err := app.runScripts(app.config.ScriptPath); err != nil {
			return err
		}
	} else if err := app.runREPL(); err != nil {
		return err
	}

	app.log.Info("Application terminated normally")
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化（出力は標準エラー出力）
func (app *Application) initLogger() error {
	if err := logger.InitLoggerTo(app.config.LogLevel, app.stderr); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

// newSession 設定に従ってVMとセッションを作成
func (app *Application) newSession() *console.Session {
	machine := vm.New(
		vm.WithLogger(app.log),
		vm.WithMemorySize(app.config.MemorySize),
		vm.WithDisplayBase(app.config.DisplayBase),
	)
	return console.NewSession(machine, console.WithLogger(app.log))
}

// dumpBuiltins ネイティブ関数一覧をYAMLで出力
func (app *Application) dumpBuiltins() error {
	data, err := vm.MarshalRegistry()
	if err != nil {
		return fmt.Errorf("failed to marshal builtins: %w", err)
	}
	_, err = app.stdout.Write(data)
	return err
}

// runScripts スクリプトを読み込んで順に実行
// 最初のエラーで停止する
func (app *Application) runScripts(path string) error {
	loader, err := script.NewLoader(app.config.Encoding)
	if err != nil {
		return err
	}

	scripts, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load scripts: %w", err)
	}

	app.log.Info("Scripts loaded", "count", len(scripts), "encoding", loader.Encoding())
	for _, s := range scripts {
		app.log.Debug("Running script", "name", s.FileName, "size", s.Size, "statements", len(s.Statements))
		if err := app.session.RunLines(s.FileName, s.Statements, app.stdout); err != nil {
			return err
		}
	}
	return nil
}

// runREPL liner を使った対話モード
func (app *Application) runREPL() error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := app.historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			} else {
				app.log.Warn("Failed to save history", "path", histPath, "error", err)
			}
		}()
	}

	fmt.Fprintf(app.stdout, "heaplab: %d byte heap, display base %d\n",
		app.session.VM().Heap().Len(), app.session.VM().DisplayBase())
	fmt.Fprintln(app.stdout, console.Welcome.Text)

	return app.repl(ln)
}

// Prompter は1行ずつ入力を読む（*liner.State が満たす）
type Prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// repl 入力がなくなるか :quit まで1行ずつ実行
func (app *Application) repl(p Prompter) error {
	for {
		line, err := p.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(app.stdout)
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		p.AppendHistory(line)

		text, err := app.session.Execute(line)
		if errors.Is(err, console.ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(app.stderr, err)
			continue
		}
		if text != "" {
			fmt.Fprintln(app.stdout, text)
		}
	}
}

// historyPath 履歴ファイルのパス（ホームディレクトリが不明なら空）
func (app *Application) historyPath() string {
	if app.config.HistoryFile != "" {
		return app.config.HistoryFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, defaultHistoryFile)
}
