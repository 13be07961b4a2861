package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/skyward/skyguide/pkg/config"
)

func main() {
	mode := flag.String("mode", "chat", "Run mode (chat|restore|analyze)")
	configPath := flag.String("config", "", "Config file path (default ~/.skyguide/config.json)")
	sessionID := flag.String("session", "", "Local session id (default: most recent)")
	imagePath := flag.String("image", "", "Image file to analyze (analyze mode)")
	language := flag.String("lang", "", "Narration language override (analyze mode)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	if *debug {
		if cfg.Log == nil {
			cfg.Log = config.DefaultLogConfig()
		}
		cfg.Log.Level = "debug"
	}
	log, err := cfg.Log.CreateLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}
	defer log.Close()

	switch *mode {
	case "chat":
		err = runChat(cfg, log, *sessionID, flag.Args())
	case "restore":
		err = runRestore(cfg, log, *sessionID)
	case "analyze":
		err = runAnalyze(cfg, log, *imagePath, *language)
	default:
		err = fmt.Errorf("invalid mode %q (valid: chat|restore|analyze)", *mode)
	}
	if err != nil {
		log.Error("%s mode: %v", *mode, err)
		os.Exit(1)
	}
}
