package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"candysurvival.ai/internal/persistence/indexdb"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (default: <data>/index/sessions.sqlite)")
	_ = fs.Parse(args)

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "sessions.sqlite")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}

	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer idx.Close()

	if err := runQuery(context.Background(), idx, fs.Args(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		idx.Close()
		os.Exit(2)
	}
}

// runQuery prints one JSON row per line for sessions, days <id> or events <id>.
func runQuery(ctx context.Context, idx *indexdb.SQLiteIndex, args []string, out io.Writer) error {
	q := "sessions"
	if len(args) > 0 {
		q = strings.TrimSpace(args[0])
	}
	needID := func() (string, error) {
		if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
			return "", fmt.Errorf("%s: missing session id", q)
		}
		return strings.TrimSpace(args[1]), nil
	}

	enc := json.NewEncoder(out)
	switch q {
	case "sessions":
		rows, err := idx.Sessions(ctx)
		if err != nil {
			return err
		}
		for _, r := range rows {
			_ = enc.Encode(r)
		}
	case "days":
		id, err := needID()
		if err != nil {
			return err
		}
		rows, err := idx.Days(ctx, id)
		if err != nil {
			return err
		}
		for _, r := range rows {
			_ = enc.Encode(r)
		}
	case "events":
		id, err := needID()
		if err != nil {
			return err
		}
		rows, err := idx.Events(ctx, id)
		if err != nil {
			return err
		}
		for _, r := range rows {
			_ = enc.Encode(r)
		}
	default:
		return fmt.Errorf("unknown query: %s (want sessions|days|events)", q)
	}
	return nil
}
