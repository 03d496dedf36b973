package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zurustar/heaplab/pkg/script"
	"github.com/zurustar/heaplab/pkg/vm"
)

// 既定値
const (
	DefaultLogLevel = "warn"
	MaxMemorySize   = 65536
)

// Config はコマンドライン引数、環境変数、設定ファイルから解析された設定を保持する
type Config struct {
	ScriptPath   string // 実行するスクリプトファイルまたはディレクトリ（空ならREPL）
	ConfigPath   string // YAML設定ファイルのパス
	MemorySize   int    // ヒープのバイト数
	DisplayBase  int    // 表示の基数（10または16）
	LogLevel     string // ログレベル（debug, info, warn, error）
	HistoryFile  string // REPL履歴ファイル（空なら既定の場所）
	Encoding     string // スクリプトの文字エンコーディング
	DumpBuiltins bool   // ネイティブ関数一覧をYAMLで出力して終了
	ShowHelp     bool   // ヘルプ表示フラグ
}

// FileConfig はYAML設定ファイルの内容
type FileConfig struct {
	MemorySize  int    `yaml:"memorySize"`
	DisplayBase int    `yaml:"displayBase"`
	LogLevel    string `yaml:"logLevel"`
	HistoryFile string `yaml:"historyFile"`
	Encoding    string `yaml:"encoding"`
}

// LoadConfigFile YAML設定ファイルを読み込む
// 未知のキーはエラーとする
func LoadConfigFile(path string) (*FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	fc := &FileConfig{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fc, nil
}

// ParseArgs コマンドライン引数を解析してConfigを返す
// 優先順位: フラグ > 環境変数 > 設定ファイル > 既定値
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("heaplab", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}

	fs.IntVar(&config.MemorySize, "memory-size", vm.DefaultMemorySize, "ヒープのバイト数")
	fs.IntVar(&config.MemorySize, "m", vm.DefaultMemorySize, "ヒープのバイト数（短縮形）")
	fs.IntVar(&config.DisplayBase, "display-base", vm.DefaultDisplayBase, "表示の基数（10または16）")
	fs.IntVar(&config.DisplayBase, "b", vm.DefaultDisplayBase, "表示の基数（短縮形）")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", DefaultLogLevel, "ログレベル（短縮形）")
	fs.StringVar(&config.ConfigPath, "config", "", "YAML設定ファイル")
	fs.StringVar(&config.ConfigPath, "c", "", "YAML設定ファイル（短縮形）")
	fs.StringVar(&config.HistoryFile, "history", "", "REPL履歴ファイル")
	fs.StringVar(&config.Encoding, "encoding", script.EncodingUTF8, "スクリプトの文字エンコーディング")
	fs.StringVar(&config.Encoding, "e", script.EncodingUTF8, "スクリプトの文字エンコーディング（短縮形）")
	fs.BoolVar(&config.DumpBuiltins, "dump-builtins", false, "ネイティブ関数一覧をYAMLで出力")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 明示的に指定されたフラグを記録
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	isSet := func(names ...string) bool {
		for _, n := range names {
			if set[n] {
				return true
			}
		}
		return false
	}

	// 設定ファイル（フラグと環境変数が優先）
	if config.ConfigPath != "" {
		fc, err := LoadConfigFile(config.ConfigPath)
		if err != nil {
			return nil, err
		}
		if fc.MemorySize != 0 && !isSet("memory-size", "m") {
			config.MemorySize = fc.MemorySize
		}
		if fc.DisplayBase != 0 && !isSet("display-base", "b") {
			config.DisplayBase = fc.DisplayBase
		}
		if fc.LogLevel != "" && !isSet("log-level", "l") {
			config.LogLevel = fc.LogLevel
		}
		if fc.HistoryFile != "" && !isSet("history") {
			config.HistoryFile = fc.HistoryFile
		}
		if fc.Encoding != "" && !isSet("encoding", "e") {
			config.Encoding = fc.Encoding
		}
	}

	// 環境変数からの設定（コマンドラインフラグが優先）
	if !isSet("memory-size", "m") {
		if env := os.Getenv("HEAPLAB_MEMORY_SIZE"); env != "" {
			n, err := strconv.Atoi(env)
			if err != nil {
				return nil, fmt.Errorf("invalid HEAPLAB_MEMORY_SIZE: %q", env)
			}
			config.MemorySize = n
		}
	}
	if !isSet("display-base", "b") {
		if env := os.Getenv("HEAPLAB_DISPLAY_BASE"); env != "" {
			n, err := strconv.Atoi(env)
			if err != nil {
				return nil, fmt.Errorf("invalid HEAPLAB_DISPLAY_BASE: %q", env)
			}
			config.DisplayBase = n
		}
	}
	if !isSet("log-level", "l") {
		if env := os.Getenv("LOG_LEVEL"); env != "" {
			config.LogLevel = env
		}
	}
	config.LogLevel = strings.ToLower(config.LogLevel)
	config.Encoding = strings.ToLower(config.Encoding)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// 位置引数（スクリプトのパス）
	if fs.NArg() > 1 {
		return nil, fmt.Errorf("too many arguments: %s", strings.Join(fs.Args(), " "))
	}
	if fs.NArg() == 1 {
		config.ScriptPath = fs.Arg(0)
	}

	return config, nil
}

// Validate 設定値を検証
func (c *Config) Validate() error {
	if c.MemorySize < 1 || c.MemorySize > MaxMemorySize {
		return fmt.Errorf("memory size must be between 1 and %d, got %d", MaxMemorySize, c.MemorySize)
	}
	if c.DisplayBase != 10 && c.DisplayBase != 16 {
		return fmt.Errorf("display base must be 10 or 16, got %d", c.DisplayBase)
	}

	// ログレベルの検証
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	if !slices.Contains(script.Encodings(), c.Encoding) {
		return fmt.Errorf("invalid encoding: %s (must be %s)", c.Encoding, strings.Join(script.Encodings(), ", "))
	}
	return nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			// -m=64 の形式は値を含む
			if strings.Contains(arg, "=") {
				continue
			}

			// 次の引数が値である可能性をチェック
			// （-m 64 のような場合）
			if i+1 < len(args) && !isBoolFlag(arg) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	return append(flags, positional...)
}

func isBoolFlag(arg string) bool {
	switch strings.TrimLeft(arg, "-") {
	case "h", "help", "dump-builtins":
		return true
	}
	return false
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `heaplab - typed expression console over a byte heap

Usage:
  heaplab [options] [script]

Arguments:
  script        実行するスクリプトファイル、または.heapファイルを含むディレクトリ（省略可）
                省略した場合は対話モード（REPL）で起動

Options:
  -m, --memory-size <bytes>   ヒープのバイト数（デフォルト: %d、最大: %d）
  -b, --display-base <base>   表示の基数: 10 または 16（デフォルト: %d）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: %s）
  -c, --config <file>         YAML設定ファイル
  --history <file>            REPL履歴ファイル（デフォルト: ~/.heaplab_history）
  -e, --encoding <name>       スクリプトの文字エンコーディング: %s
  --dump-builtins             ネイティブ関数一覧をYAMLで出力して終了
  -h, --help                  このヘルプを表示

Environment Variables:
  HEAPLAB_MEMORY_SIZE=<bytes> ヒープのバイト数
  HEAPLAB_DISPLAY_BASE=<base> 表示の基数
  LOG_LEVEL=<level>           ログレベル

Config File (YAML):
  memorySize: 256
  displayBase: 16
  logLevel: warn
  historyFile: /path/to/history
  encoding: utf-8

Examples:
  heaplab                         対話モードで起動
  heaplab demo.heap               スクリプトを実行
  heaplab -e shift_jis demo.heap  Shift-JISのスクリプトを実行
  heaplab -m 64 -b 10             64バイトのヒープ、10進表示
`, vm.DefaultMemorySize, MaxMemorySize, vm.DefaultDisplayBase, DefaultLogLevel,
		strings.Join(script.Encodings(), ", "))
}
