package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"travmap.dev/internal/atlas"
	"travmap.dev/internal/config"
	"travmap.dev/internal/hexmap"
	"travmap.dev/internal/persistence/qlog"
	"travmap.dev/internal/protocol"
	"travmap.dev/internal/store"
	"travmap.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configPath = flag.String("config", "", "path to atlas.yaml (optional)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		staticDir  = flag.String("static", "", "webapp directory (default from config)")
		seed       = flag.Int64("seed", 0, "generator seed override (0 keeps config value)")
		disableDB  = flag.Bool("disable_db", false, "serve generated sectors only, skip the sqlite store")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if strings.TrimSpace(*staticDir) != "" {
		cfg.StaticDir = *staticDir
	}

	var st *store.Store
	if !*disableDB {
		dbPath := filepath.Join(*dataDir, "atlas.db")
		st, err = store.Open(dbPath)
		if err != nil {
			logger.Fatalf("open store: %v", err)
		}
		defer st.Close()
		logger.Printf("store: %s", dbPath)
	} else {
		logger.Printf("store disabled; serving generated sectors only")
	}

	svc := atlas.New(cfg, st, logger)

	if dir := strings.TrimSpace(cfg.QueryLogDir); dir != "" {
		ql := qlog.NewQueryLogger(dir)
		defer ql.Close()
		svc.SetQueryLogger(ql)
	}

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := svc.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("atlas stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		m := svc.Metrics()

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP travmap_sessions Current number of connected sessions.\n")
		fmt.Fprintf(rw, "# TYPE travmap_sessions gauge\n")
		fmt.Fprintf(rw, "travmap_sessions %d\n", m.Sessions)

		fmt.Fprintf(rw, "# HELP travmap_loaded_sectors Sectors currently cached in memory.\n")
		fmt.Fprintf(rw, "# TYPE travmap_loaded_sectors gauge\n")
		fmt.Fprintf(rw, "travmap_loaded_sectors %d\n", m.LoadedSectors)

		fmt.Fprintf(rw, "# HELP travmap_queries_total Total viewport and range requests served.\n")
		fmt.Fprintf(rw, "# TYPE travmap_queries_total counter\n")
		fmt.Fprintf(rw, "travmap_queries_total %d\n", m.Queries)

		fmt.Fprintf(rw, "# HELP travmap_hexes_served_total Total hexes covered by served requests.\n")
		fmt.Fprintf(rw, "# TYPE travmap_hexes_served_total counter\n")
		fmt.Fprintf(rw, "travmap_hexes_served_total %d\n", m.HexesServed)
	})

	if envBool("TM_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	mux.HandleFunc("/v1/sector/", sectorHandler(svc))
	mux.HandleFunc("/v1/range", rangeHandler(svc))
	mux.HandleFunc("/v1/ws", ws.NewServer(svc, logger).Handler())
	mux.HandleFunc("/", staticHandler(cfg, logger))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (static=%s seed=%d)", *addr, cfg.StaticDir, cfg.Seed)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

// sectorHandler serves GET /v1/sector/{sector_x}/{sector_y} as JSON.
func sectorHandler(svc *atlas.Service) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/v1/sector/")
		parts := strings.Split(strings.Trim(rest, "/"), "/")
		if len(parts) != 2 {
			http.Error(rw, "want /v1/sector/{sector_x}/{sector_y}", http.StatusBadRequest)
			return
		}
		sx, err1 := strconv.Atoi(parts[0])
		sy, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			http.Error(rw, "sector indices must be integers", http.StatusBadRequest)
			return
		}

		resp, ok := runQuery(r.Context(), svc,
			hexmap.SectorHex{SectorX: sx, SectorY: sy, LocalX: 1, LocalY: 1},
			hexmap.SectorHex{SectorX: sx, SectorY: sy, LocalX: hexmap.SectorColumns, LocalY: hexmap.SectorRows})
		if !ok {
			http.Error(rw, "atlas busy", http.StatusServiceUnavailable)
			return
		}
		if resp.ErrCode != "" {
			writeError(rw, resp.ErrCode)
			return
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(struct {
			SectorX   int               `json:"sector_x"`
			SectorY   int               `json:"sector_y"`
			SectorKey string            `json:"sector_key"`
			Systems   []protocol.System `json:"systems"`
		}{
			SectorX:   sx,
			SectorY:   sy,
			SectorKey: fmt.Sprintf("%d.%d", sx, sy),
			Systems:   resp.Systems,
		})
	}
}

// rangeHandler serves GET /v1/range?ax=&ay=&bx=&by= over universal
// coordinates. Corner order does not matter.
func rangeHandler(svc *atlas.Service) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		coords := make([]int, 4)
		for i, name := range []string{"ax", "ay", "bx", "by"} {
			v, err := strconv.Atoi(q.Get(name))
			if err != nil {
				http.Error(rw, "want integer params ax, ay, bx, by", http.StatusBadRequest)
				return
			}
			coords[i] = v
		}
		a := hexmap.UniversalHex{X: coords[0], Y: coords[1]}.Sector()
		b := hexmap.UniversalHex{X: coords[2], Y: coords[3]}.Sector()

		resp, ok := runQuery(r.Context(), svc, a, b)
		if !ok {
			http.Error(rw, "atlas busy", http.StatusServiceUnavailable)
			return
		}
		if resp.ErrCode != "" {
			writeError(rw, resp.ErrCode)
			return
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(struct {
			Count   int               `json:"count"`
			Systems []protocol.System `json:"systems"`
		}{Count: len(resp.Systems), Systems: resp.Systems})
	}
}

func runQuery(ctx context.Context, svc *atlas.Service, a, b hexmap.SectorHex) (atlas.QueryResponse, bool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req := atlas.QueryRequest{CornerA: a, CornerB: b, Resp: make(chan atlas.QueryResponse, 1)}
	select {
	case svc.Queries() <- req:
	case <-ctx.Done():
		return atlas.QueryResponse{}, false
	}
	select {
	case resp := <-req.Resp:
		return resp, true
	case <-ctx.Done():
		return atlas.QueryResponse{}, false
	}
}

func writeError(rw http.ResponseWriter, code string) {
	status := http.StatusBadRequest
	if code == protocol.ErrInternal {
		status = http.StatusInternalServerError
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(map[string]string{"code": code})
}

// staticHandler serves the webapp directory. Paths without a known
// asset extension fall back to index.html so client-side routes and
// bare sector URLs resolve to the app shell.
func staticHandler(cfg config.Config, logger *log.Logger) http.HandlerFunc {
	dir := cfg.StaticDir
	if _, err := os.Stat(dir); err != nil {
		logger.Printf("static dir %s unavailable: %v", dir, err)
	}
	fs := http.FileServer(http.Dir(dir))
	return func(rw http.ResponseWriter, r *http.Request) {
		if cfg.ServesExtension(r.URL.Path) {
			fs.ServeHTTP(rw, r)
			return
		}
		http.ServeFile(rw, r, filepath.Join(dir, "index.html"))
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func envBool(name string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
