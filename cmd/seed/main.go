package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"travmap.dev/internal/atlas/stargen"
	"travmap.dev/internal/store"
)

// seed synthesizes star systems for a rectangle of sectors and bulk
// loads them into the sqlite store, so the server can run with
// generation disabled against fixed data.
func main() {
	var (
		dbPath = flag.String("db", "./data/atlas.db", "sqlite store path")
		seed   = flag.Int64("seed", 1337, "generator seed")
		fromX  = flag.Int("from_x", 0, "first sector column (inclusive)")
		fromY  = flag.Int("from_y", 0, "first sector row (inclusive)")
		toX    = flag.Int("to_x", 0, "last sector column (inclusive)")
		toY    = flag.Int("to_y", 0, "last sector row (inclusive)")
		force  = flag.Bool("force", false, "regenerate sectors that already have stored systems")
	)
	flag.Parse()

	if *fromX > *toX || *fromY > *toY {
		fmt.Fprintln(os.Stderr, "empty sector rectangle: from must not exceed to")
		os.Exit(2)
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}
	defer st.Close()

	gen := stargen.New(*seed)
	ctx := context.Background()

	start := time.Now()
	var sectors, skipped, systems int
	for sy := *fromY; sy <= *toY; sy++ {
		for sx := *fromX; sx <= *toX; sx++ {
			if !*force {
				has, err := st.HasSector(ctx, sx, sy)
				if err != nil {
					fmt.Fprintln(os.Stderr, "check sector:", err)
					os.Exit(1)
				}
				if has {
					skipped++
					continue
				}
			}
			batch := gen.Sector(sx, sy)
			if err := st.UpsertSystems(ctx, batch); err != nil {
				fmt.Fprintf(os.Stderr, "upsert sector %d.%d: %v\n", sx, sy, err)
				os.Exit(1)
			}
			sectors++
			systems += len(batch)
		}
	}

	fmt.Printf("seeded %d sectors (%d systems, %d skipped) into %s in %s\n",
		sectors, systems, skipped, *dbPath, time.Since(start).Round(time.Millisecond))
}
