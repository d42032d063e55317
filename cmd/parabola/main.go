package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/pavelanni/parabola/internal/exercise"
	"github.com/pavelanni/parabola/internal/handler"
	appI18n "github.com/pavelanni/parabola/internal/i18n"
	"github.com/pavelanni/parabola/internal/kvstore"
	"github.com/pavelanni/parabola/internal/llm"
	"github.com/pavelanni/parabola/internal/llm/prompts"
	"github.com/pavelanni/parabola/internal/model"
	"github.com/pavelanni/parabola/internal/progress"
	"github.com/pavelanni/parabola/internal/store"
)

const (
	backendSQLite = "sqlite"
	backendBadger = "badger"

	badgerGCInterval = 10 * time.Minute
	shutdownTimeout  = 10 * time.Second
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "parabola",
		Short: "Quadratic function tutor: exercises, conversions and progress",
	}

	serve := serveCmd()
	root.AddCommand(serve, generateCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `parabola --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "parabola.db", "SQLite database path")
	f.String("progress-backend", backendSQLite, "Progress storage (sqlite, badger)")
	f.String("badger-dir", "parabola-progress", "Badger directory for --progress-backend=badger")
	f.StringP("lang", "l", "en", "Default language (en, de)")
	f.String("llm-url", "", "OpenAI-compatible API base URL (empty disables the tutor)")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.String("tutor-variant", string(prompts.VariantStandard), "Tutor prompt variant (brief, standard, detailed)")
	f.Float64("tutor-rate", 1, "Tutor explanations per second across all learners")
	f.Int("tutor-burst", 3, "Tutor requests allowed in a burst")
	f.Int("max-attempts", 1000, "Attempts kept in memory before the oldest are dropped")
	f.String("admin-password", "", "Initial admin password (or set PARABOLA_ADMIN_PASSWORD)")
	addLogFlags(cmd)
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a generated exercise as JSON",
		RunE:  runGenerate,
	}
	f := cmd.Flags()
	f.StringP("topic", "t", string(model.TopicVertexToNormal), "Exercise topic")
	f.StringP("difficulty", "d", string(model.DifficultyEasy), "Difficulty (easy, medium, hard)")
	f.Int64P("seed", "s", exercise.DefaultSeed, "Random seed")
	f.StringP("lang", "l", "en", "Language of the exercise text (en, de)")
	addLogFlags(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export learner progress and completion history",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "parabola.db", "SQLite database path")
	f.String("progress-backend", backendSQLite, "Progress storage (sqlite, badger)")
	f.String("badger-dir", "parabola-progress", "Badger directory for --progress-backend=badger")
	f.String("format", "json", "Output format (json, yaml)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(cmd)
	return cmd
}

func addLogFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().String("log-format", "auto", "Log format (text, json, auto)")
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	handlerOpts := &slog.HandlerOptions{Level: parseLogLevel(v.GetString("log-level"))}
	format := strings.ToLower(v.GetString("log-format"))
	if format == "auto" {
		format = "json"
		if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			format = "text"
		}
	}

	var logHandler slog.Handler
	switch format {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("PARABOLA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("parabola")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/parabola")
	v.AddConfigPath("/etc/parabola")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// openProgress returns the key-value backend for progress records. The
// second result is non-nil only for Badger and must be closed by the caller.
func openProgress(backend, badgerDir string, db *store.Store) (progress.KV, *kvstore.Store, error) {
	switch strings.ToLower(backend) {
	case backendSQLite, "":
		return db.KV(), nil, nil
	case backendBadger:
		cfg := kvstore.DefaultConfig(badgerDir)
		cfg.Logger = slog.Default()
		kv, err := kvstore.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv, nil
	default:
		return nil, nil, fmt.Errorf("unknown progress backend %q (want %s or %s)", backend, backendSQLite, backendBadger)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	// Open database.
	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := seedAdmin(db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	backend := strings.ToLower(v.GetString("progress-backend"))
	kv, badgerStore, err := openProgress(backend, v.GetString("badger-dir"), db)
	if err != nil {
		return fmt.Errorf("open progress backend: %w", err)
	}
	if badgerStore != nil {
		defer badgerStore.Close()
	}

	// Initialize i18n.
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	tutor, err := newTutor(v)
	if err != nil {
		return err
	}

	cfg := model.ServiceConfig{
		Lang:            lang,
		TutorEnabled:    tutor != nil,
		TutorRate:       v.GetFloat64("tutor-rate"),
		TutorBurst:      v.GetInt("tutor-burst"),
		MaxAttempts:     v.GetInt("max-attempts"),
		ProgressBackend: backend,
	}
	h, err := handler.New(db, progress.NewTracker(kv), tutor, cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server",
			"addr", addr,
			"lang", lang,
			"progress_backend", backend,
			"tutor", cfg.TutorEnabled,
			"max_attempts", cfg.MaxAttempts,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if badgerStore != nil {
		g.Go(func() error {
			return badgerStore.RunGC(gctx, badgerGCInterval, slog.Default())
		})
	}

	return g.Wait()
}

// newTutor returns nil when no LLM endpoint is configured.
func newTutor(v *viper.Viper) (handler.Tutor, error) {
	url := v.GetString("llm-url")
	if url == "" {
		slog.Info("tutor disabled: no --llm-url")
		return nil, nil
	}
	if err := prompts.Load(prompts.FS); err != nil {
		return nil, fmt.Errorf("load tutor prompts: %w", err)
	}

	variant := strings.ToLower(strings.TrimSpace(v.GetString("tutor-variant")))
	if !prompts.IsValidVariant(variant) {
		slog.Warn("invalid tutor-variant, using standard", "variant", variant)
		variant = string(prompts.VariantStandard)
	}
	client := llm.New(url, v.GetString("llm-key"), v.GetString("llm-model"), prompts.Variant(variant))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("LLM health check: %w", err)
	}
	slog.Info("LLM endpoint OK", "url", url, "model", v.GetString("llm-model"), "variant", variant)
	return client, nil
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	gen := exercise.New(appI18n.NewTranslator(lang))
	ex, err := gen.Generate(
		model.Topic(v.GetString("topic")),
		model.Difficulty(v.GetString("difficulty")),
		v.GetInt64("seed"),
	)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(ex)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	backend := strings.ToLower(v.GetString("progress-backend"))
	kv, badgerStore, err := openProgress(backend, v.GetString("badger-dir"), db)
	if err != nil {
		return fmt.Errorf("open progress backend: %w", err)
	}
	if badgerStore != nil {
		defer badgerStore.Close()
	}

	learners, err := db.ExportProgress(progress.NewTracker(kv))
	if err != nil {
		return fmt.Errorf("export progress: %w", err)
	}
	export := model.ProgressExport{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Backend:     backend,
		Learners:    learners,
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := writeExport(w, export, v.GetString("format")); err != nil {
		return err
	}
	slog.Info("exported progress", "learners", len(learners), "output", outPath)
	return nil
}

func writeExport(w io.Writer, export model.ProgressExport, format string) error {
	switch strings.ToLower(format) {
	case "json", "":
		data, err := json.MarshalIndent(export, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		// Ensure trailing newline.
		_, _ = fmt.Fprintln(w)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(export); err != nil {
			return fmt.Errorf("write YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q (json, yaml)", format)
	}
}

// seedAdmin creates the admin user on first start. Without a password the
// admin endpoints stay unusable until a user exists.
func seedAdmin(db *store.Store, password string) error {
	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		slog.Warn("no admin user: set --admin-password or PARABOLA_ADMIN_PASSWORD to enable /admin")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.CreateUser(model.User{
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: string(hash),
		Role:         model.UserRoleAdmin,
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.Info("seeded default admin user", "username", "admin")
	return nil
}
