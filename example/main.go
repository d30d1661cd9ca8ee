// FILE: nofus/example/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/lixenwraith/nofus"
)

// AppConfig is the typed view of the demo file.
type AppConfig struct {
	Server struct {
		Host     string `nofus:"host"`
		Port     int    `nofus:"port"`
		LogLevel string `nofus:"log_level"`
	} `nofus:"server"`
	Features []string `nofus:"features"`
	Metrics  bool     `nofus:"metrics"`
}

const initialConf = `# demo configuration
metrics
features = search
features = export

[server]
host = "0.0.0.0"
port = 8080
`

func main() {
	dir, err := os.MkdirTemp("", "nofus-example")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)
	configPath := filepath.Join(dir, "app.conf")

	log.Println("---")
	log.Println("Creating initial configuration file...")
	if err := os.WriteFile(configPath, []byte(initialConf), 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", configPath, err)
	}

	defaults := AppConfig{}
	defaults.Server.Host = "localhost"
	defaults.Server.Port = 80
	defaults.Server.LogLevel = "info"

	validator := func(c *nofus.ConfigFile) error {
		port, err := strconv.Atoi(c.GetOr("server.port", ""))
		if err != nil {
			return fmt.Errorf("server.port is not a number: %w", err)
		}
		if port < 1024 || port > 65535 {
			return fmt.Errorf("port %d is outside the recommended range (1024-65535)", port)
		}
		return nil
	}

	log.Println("---")
	log.Println("Building config with defaults and a validator...")
	cfg, err := nofus.NewBuilder().
		WithFile(configPath).
		WithDefaultsStruct("", defaults).
		WithValidator(validator).
		Build()
	if err != nil {
		log.Fatalf("Builder failed: %v", err)
	}

	var initial AppConfig
	if err := cfg.Scan("", &initial); err != nil {
		log.Fatalf("Scan failed: %v", err)
	}
	printCurrentState(&initial, "Initial State (file over defaults)")

	log.Println("---")
	log.Println("Testing the file watcher...")
	opts := nofus.DefaultWatchOptions()
	opts.Debounce = 100 * time.Millisecond
	changes := cfg.WatchWithOptions(opts)
	defer cfg.StopAutoUpdate()

	var wg sync.WaitGroup
	wg.Add(1)
	go modifyFileOnDisk(&wg, configPath)

	select {
	case key := <-changes:
		log.Printf("Watcher reported a change for key '%s'", key)

		var updated AppConfig
		if err := cfg.Scan("", &updated); err != nil {
			log.Fatalf("Scan failed after update: %v", err)
		}
		if updated.Server.LogLevel != "debug" {
			log.Fatalf("Expected log_level 'debug', got '%s'", updated.Server.LogLevel)
		}
		printCurrentState(&updated, "Final State (updated by watcher)")

	case <-time.After(5 * time.Second):
		log.Fatalf("Timed out waiting for watcher notification")
	}

	wg.Wait()
}

// modifyFileOnDisk rewrites the file the way an external program would.
func modifyFileOnDisk(wg *sync.WaitGroup, path string) {
	defer wg.Done()
	time.Sleep(500 * time.Millisecond)

	modifier := nofus.New(path)
	if err := modifier.Load(); err != nil {
		log.Fatalf("Modifier failed to load file: %v", err)
	}

	// File values win over defaults, so the change goes into a fresh file.
	out := nofus.New("")
	overrides := map[string]any{"server.log_level": "debug"}
	for _, key := range modifier.Keys() {
		if _, set := overrides[key]; !set {
			overrides[key] = modifier.GetArray(key)
		}
	}
	if err := out.Preload(overrides); err != nil {
		log.Fatalf("Modifier failed to preload values: %v", err)
	}
	if err := out.Save(path); err != nil {
		log.Fatalf("Modifier failed to save file: %v", err)
	}
}

func printCurrentState(cfg *AppConfig, title string) {
	fmt.Println("   --------------------------------------------------")
	fmt.Printf("             %s\n", title)
	fmt.Println("   --------------------------------------------------")
	fmt.Printf("     Server Host:      %s\n", cfg.Server.Host)
	fmt.Printf("     Server Port:      %d\n", cfg.Server.Port)
	fmt.Printf("     Server Log Level: %s\n", cfg.Server.LogLevel)
	fmt.Printf("     Features:         %v\n", cfg.Features)
	fmt.Printf("     Metrics:          %t\n", cfg.Metrics)
	fmt.Println("   --------------------------------------------------")
}
