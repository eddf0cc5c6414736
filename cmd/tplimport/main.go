// tplimport seeds the object_templates table from a YAML template file.
//
// Usage:
//
//	go run ./cmd/tplimport -file assets/templates.yaml -dsn postgres://...
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/pokerune/engine/internal/config"
	"github.com/pokerune/engine/internal/data"
	"github.com/pokerune/engine/internal/persist"
)

func main() {
	file := flag.String("file", "assets/templates.yaml", "YAML template file to import")
	dsn := flag.String("dsn", "", "Postgres DSN")
	flag.Parse()

	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "usage: tplimport -file <templates.yaml> -dsn <postgres dsn>")
		os.Exit(2)
	}
	if err := run(*file, *dsn); err != nil {
		fmt.Fprintf(os.Stderr, "tplimport: %v\n", err)
		os.Exit(1)
	}
}

func run(file, dsn string) error {
	table, err := data.LoadTemplateTable(file)
	if err != nil {
		return err
	}
	templates := table.All()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := persist.Connect(ctx, config.DatabaseConfig{
		DSN:             dsn,
		MaxOpenConns:    4,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	if err := persist.NewTemplateRepo(db).SeedFrom(ctx, templates); err != nil {
		return err
	}

	fmt.Printf("imported %d templates from %s\n", len(templates), file)
	return nil
}
