package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"kifu_editor/internal/bootstrap"
	"kifu_editor/internal/delivery/tui"
	repo "kifu_editor/internal/repository"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: tui <file.sgf>")
		os.Exit(2)
	}

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.Debug)
	defer logger.Sync()

	path, err := filepath.Abs(os.Args[1])
	if err != nil {
		logger.Fatal(err)
	}

	dir := cfg.AutosaveDir
	if dir == "" {
		cache, err := os.UserCacheDir()
		if err != nil {
			logger.Fatal(err)
		}
		dir = filepath.Join(cache, "kifu_editor", "autosave")
	}
	snapshots, err := repo.NewAutosaveStorage(dir)
	if err != nil {
		logger.Fatal(err)
	}
	defer snapshots.Close()

	err = tui.Run(tui.Options{
		Path:      path,
		BoardSize: cfg.BoardSize,
		AppName:   cfg.AppName,
		Files:     repo.NewFileStorage(),
		Snapshots: snapshots,
		Log:       logger,
	})
	if err != nil {
		logger.Error(err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// терминал занят интерфейсом, поэтому лог пишется в файл и только с DEBUG
func newLogger(debug bool) *zap.SugaredLogger {
	if !debug {
		return zap.NewNop().Sugar()
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.OutputPaths = []string{"kifu-tui.log"}
	zcfg.ErrorOutputPaths = []string{"kifu-tui.log"}
	logger, err := zcfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}
