package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"platypus/internal/util"
	"strings"
)

var (
	// Version is the current version of the platypus binary, set at build time.
	Version   = "0.1.0"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// config file
	configFile string
	// logging
	logLevel string
	logFile  string
	// parser config
	debugAST       bool
	debugASTFormat string
	// evaluator config
	maxDepth int
	// repl config
	historyDSN    string
	historyDriver string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configFile, "config", "", "Path to a TOML configuration file (default $PLATYPUS_HOME/config.toml)")
	// parser config
	flag.BoolVar(&debugAST, "debug-ast", false, "Write the parsed AST next to the source file")
	flag.StringVar(&debugASTFormat, "debug-ast-format", "json", "AST dump format: json, yaml, text")
	// evaluator config
	flag.IntVar(&maxDepth, "max-depth", 10000, "Maximum nested call depth, 0 disables the guard")
	// repl config
	flag.StringVar(&historyDSN, "history", "", "REPL history database (sqlite file path or DSN)")
	flag.StringVar(&historyDriver, "history-driver", "sqlite3", "REPL history driver: sqlite3, mysql, postgres")
	// log config
	flag.StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {

	flag.Parse()

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	// Creates a new Logger that uses a JSONHandler to write to the configured log writer
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	os.Exit(dispatch(config, flag.Args()))
}

// loadConfiguration layers defaults, the TOML file and explicitly set flags,
// in that order.
func loadConfiguration() (util.Configuration, error) {
	config := util.DefaultConfiguration()
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	config, err := util.LoadConfiguration(config, config.ConfigPath(configFile), configFile != "")
	if err != nil {
		return config, err
	}

	flag.Visit(func(f *flag.Flag) {
		applyFlag(&config, f.Name)
	})
	return config, nil
}

func applyFlag(config *util.Configuration, name string) {
	switch name {
	case "log-level":
		config.LogLevel = logLevel
	case "log-file":
		config.LogFile = logFile
	case "debug-ast":
		config.DebugAST = debugAST
	case "debug-ast-format":
		config.DebugASTFormat = debugASTFormat
	case "max-depth":
		config.MaxDepth = maxDepth
	case "history":
		config.History.DSN = historyDSN
	case "history-driver":
		config.History.Driver = historyDriver
	}
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {

	fmt.Printf("platypus version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: platypus [options] <command>

Commands:
  run <file>         Parse and execute a Platypus source file.
  repl               Start an interactive session.

Options:
  -config <path>             Load settings from a TOML file. Default is $PLATYPUS_HOME/config.toml.
  -debug-ast                 Write the parsed AST next to the source file.
  -debug-ast-format <fmt>    AST dump format: json, yaml or text. Default is 'json'.
  -max-depth <n>             Maximum nested call depth. Default is 10000.
  -history <dsn>             Journal REPL input to this database.
  -history-driver <driver>   History database driver: sqlite3, mysql, postgres.
  -help                      Display this help information and exit.
  -version                   Display version information and exit.
  -log-level <level>         Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>           Specify a log file to write logs. Default is stderr.

Examples:
  platypus run hello.plat                    Execute the provided file
  platypus -debug-ast run hello.plat         Execute and write hello.plat.ast.json
  platypus -history ~/.platypus.db repl      Start a session with a persistent journal

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
