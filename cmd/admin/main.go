package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"candysurvival.ai/internal/persistence/session"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "list":
			listCmd(os.Args[2:])
			return
		}
	}
	// Bare flags fall through to the index query: admin -db <path> sessions.
	dbCmd(os.Args[1:])
}

// listCmd prints recorded session directories with their headers.
func listCmd(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	base := filepath.Join(*dataDir, "sessions")
	entries, err := os.ReadDir(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	var hdrs []session.Header
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		h, err := session.Read(filepath.Join(base, e.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", e.Name(), err)
			continue
		}
		hdrs = append(hdrs, h)
	}
	sort.Slice(hdrs, func(i, j int) bool { return hdrs[i].StartedAt.Before(hdrs[j].StartedAt) })
	for _, h := range hdrs {
		fmt.Printf("%s\tseed=%d\tstarted=%s\tmap=%s\n", h.SessionID, h.Seed, h.StartedAt.Format("2006-01-02T15:04:05Z"), h.MapPath)
	}
}
