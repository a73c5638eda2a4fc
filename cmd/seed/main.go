package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/Bluenz7/pdfredactor/internal/config"
	"github.com/Bluenz7/pdfredactor/internal/infrastructure"
	"github.com/joho/godotenv"
)

func main() {
	var (
		all     = flag.Bool("all", false, "Run all seeders")
		samples = flag.Bool("samples", false, "Seed sample documents")
		dir     = flag.String("dir", "", "Import PDFs and images from a directory")
		list    = flag.Bool("list", false, "List available seeders")
	)
	flag.Parse()

	if *list {
		fmt.Println("Available seeders:")
		for _, s := range listSeeders() {
			fmt.Printf("  - %s: %s\n", s.Name(), s.Description())
		}
		return
	}

	var names []string
	switch {
	case *all:
		names = []string{"samples"}
		if *dir != "" {
			names = append(names, "dir")
		}
	case *samples:
		names = []string{"samples"}
	case *dir != "":
		names = []string{"dir"}
	default:
		fmt.Println("usage: seed [-all|-samples] [-dir <path>] [-list]")
		flag.PrintDefaults()
		return
	}

	if *dir != "" {
		if seeder, ok := getSeeder("dir"); ok {
			seeder.(*DirectorySeeder).SetDir(*dir)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("env file load failed: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		log.Fatalf("config finalize failed: %v", err)
	}

	ctx := context.Background()
	infra, err := infrastructure.New(ctx, cfg)
	if err != nil {
		log.Fatalf("infrastructure init failed: %v", err)
	}
	if err := infra.Start(); err != nil {
		log.Fatalf("infrastructure start failed: %v", err)
	}
	infra.Lifecycle.WaitForStartup()
	defer infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())

	env := &Env{
		Store:  infra.Store,
		Codec:  infra.Codec,
		Logger: infra.Logger.With("system", "seed"),
		Now:    time.Now,
	}

	count, err := runSeeders(ctx, env, names...)
	if err != nil {
		infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())
		log.Fatalf("seeding failed: %v", err)
	}
	fmt.Printf("seeded %d document(s) into %s store\n", count, cfg.Store.Backend)
}
