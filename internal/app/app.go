package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/five82/leaddesk/internal/cache"
	"github.com/five82/leaddesk/internal/config"
	"github.com/five82/leaddesk/internal/crmapi"
	"github.com/five82/leaddesk/internal/events"
	"github.com/five82/leaddesk/internal/fetcher"
	"github.com/five82/leaddesk/internal/kvstore"
	"github.com/five82/leaddesk/internal/prefs"
	"github.com/five82/leaddesk/internal/session"
	"github.com/five82/leaddesk/internal/state"
	"github.com/five82/leaddesk/internal/ui"
	"github.com/five82/leaddesk/internal/uistate"
	"github.com/five82/leaddesk/internal/workspace"
)

// Options configure the leaddesk application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/leaddesk/prefs.toml
	PollEvery  int    // seconds; zero uses the configured interval
}

// Run boots the leaddesk TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.Refresh.Interval = time.Duration(opts.PollEvery) * time.Second
	}

	logger, closeLog, err := openLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	userPrefs := prefs.Load(opts.PrefsPath)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if cfg.Metrics.Listen != "" {
		go serveMetrics(ctx, cfg.Metrics.Listen, reg, logger)
	}

	kv, err := kvstore.OpenSQLite(cfg.Storage.StateDB)
	if err != nil {
		return fmt.Errorf("open state db: %w", err)
	}
	defer kv.Close()

	client, err := crmapi.NewClient(cfg.API.BaseURL,
		crmapi.WithTimeout(cfg.API.Timeout),
		crmapi.WithUserAgent(cfg.API.UserAgent),
	)
	if err != nil {
		return fmt.Errorf("init crm client: %w", err)
	}

	var program programRef
	bus := events.NewBus()
	store := &state.Store{}
	ws := workspace.New(client, store,
		workspace.WithBus(bus),
		workspace.WithLogger(logger),
		workspace.WithNotifier(workspace.NotifierFunc(func(n workspace.Notice) {
			program.Send(ui.NoticeMsg(n))
		})),
	)

	lists := ws.NewLists(workspace.ListOptions{
		LeadCache: cache.New[crmapi.LeadPage](
			cache.WithTTL(cfg.Cache.LeadsTTL),
			cache.WithMaxSize(cfg.Cache.LeadsMaxSize),
			cache.WithMetrics(reg, "leads"),
		),
		TodoCache: cache.New[crmapi.TodoPage](
			cache.WithTTL(cfg.Cache.TTL),
			cache.WithMaxSize(cfg.Cache.MaxSize),
			cache.WithMetrics(reg, "todos"),
		),
		Leads: []fetcher.Option[crmapi.LeadPage]{fetcher.WithMetrics[crmapi.LeadPage](reg, "leads")},
		Todos: []fetcher.Option[crmapi.TodoPage]{fetcher.WithMetrics[crmapi.TodoPage](reg, "todos")},
	})

	views := uistate.NewManager(kv, uistate.WithLogger(logger))
	gate := session.NewGate(kv, client, logger)

	refresher := NewRefresher(store, bus, cfg.Refresh.Interval, cfg.Refresh.MinGap, func(r Request) {
		program.Send(ui.RefreshMsg{Background: r.Background, Force: r.Force, Topic: r.Topic})
	}, logger)

	model := ui.New(ui.Options{
		Context:   ctx,
		Workspace: ws,
		Lists:     lists,
		Views:     views,
		Gate:      gate,
		Bus:       bus,
		LogPath:   cfg.Log.File,
		PerPage:   cfg.API.PerPage,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		Logger:    logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithReportFocus())
	program.Store(p)

	go refresher.Run(ctx)
	go lists.Watch(ctx, bus, func(topic events.Topic) {
		go refresher.Invalidated(ctx, topic)
	})

	logger.Info("leaddesk started", "api", cfg.API.BaseURL, "state_db", cfg.Storage.StateDB)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// programRef lets callbacks built before the program exists send to it.
type programRef struct {
	p atomic.Pointer[tea.Program]
}

func (r *programRef) Store(p *tea.Program) { r.p.Store(p) }

func (r *programRef) Send(msg tea.Msg) {
	if p := r.p.Load(); p != nil {
		p.Send(msg)
	}
}

// openLogger returns a JSON logger writing to cfg.File. The terminal belongs
// to the UI, so nothing goes to stderr.
func openLogger(cfg config.LogConfig) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: parseLevel(cfg.Level)})
	return slog.New(handler), func() { _ = file.Close() }, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("metrics server stopped", "error", err)
	}
}
