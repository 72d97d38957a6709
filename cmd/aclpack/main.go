// Command aclpack compresses a directory of raw animation clips into a
// clip database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"

	"acl/pkg/anim/encoder"
	"acl/pkg/anim/format"
	"acl/pkg/clipdb"
	"acl/pkg/log"
	"acl/pkg/system"
)

type config struct {
	ClipDir           string  `yaml:"clipDir"`
	DBPath            string  `yaml:"dbPath"`
	RotationFormat    string  `yaml:"rotationFormat"`
	TranslationFormat string  `yaml:"translationFormat"`
	Threshold         float64 `yaml:"threshold"`
	Precision         float64 `yaml:"precision"`
}

func loadConfig(path string) (*config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &config{
		ClipDir: ".",
		DBPath:  "clips.db",
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func encoderOptions(cfg *config) (encoder.Options, error) {
	opts := encoder.DefaultOptions()

	if cfg.RotationFormat != "" {
		f, err := format.ParseRotationFormat(cfg.RotationFormat)
		if err != nil {
			return opts, err
		}
		opts.RotationFormat = f
	}
	if cfg.TranslationFormat != "" {
		f, err := format.ParseVectorFormat(cfg.TranslationFormat)
		if err != nil {
			return opts, err
		}
		opts.TranslationFormat = f
	}
	if cfg.Threshold != 0 {
		opts.Threshold = cfg.Threshold
	}
	if cfg.Precision != 0 {
		opts.Precision = cfg.Precision
	}
	return opts, nil
}

func main() {
	configPath := flag.String("config", "aclpack.yml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "aclpack: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	opts, err := encoderOptions(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())

	wg := &sync.WaitGroup{}
	logger := log.NewLogger(wg)
	logger.Start(ctx)
	go logger.LogToStdout(ctx)

	go system.New(logger).StatusLoop(ctx)

	db := clipdb.NewDB(cfg.DBPath, wg)
	if err := db.Init(ctx); err != nil {
		cancel()
		wg.Wait()
		return err
	}

	err = compressDir(cfg.ClipDir, opts, db, logger)

	cancel()
	wg.Wait()
	return err
}

func compressDir(dir string, opts encoder.Options, db *clipdb.DB, logger *log.Logger) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no clips in %v", dir)
	}

	for _, path := range paths {
		if err := compressClip(path, opts, db, logger); err != nil {
			return fmt.Errorf("%v: %w", path, err)
		}
	}
	return nil
}

func compressClip(path string, opts encoder.Options, db *clipdb.DB, logger *log.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	rawClip := &encoder.RawClip{}
	if err := json.Unmarshal(raw, rawClip); err != nil {
		return fmt.Errorf("unmarshal clip: %w", err)
	}
	if rawClip.Name == "" {
		rawClip.Name = strings.TrimSuffix(filepath.Base(path), ".json")
	}

	blob, err := encoder.Compress(rawClip, opts, logger)
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	if err := db.Put(rawClip.Name, blob); err != nil {
		return fmt.Errorf("save clip: %w", err)
	}

	logger.Info().Src("aclpack").Clip(rawClip.Name).Msgf(
		"%d -> %d bytes", len(raw), len(blob))
	return nil
}
