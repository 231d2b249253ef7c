package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"label-resolver/internal/config"
	"label-resolver/internal/labelcache"
	"label-resolver/internal/locator"
	"label-resolver/internal/resolver"
	"label-resolver/internal/server"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "label-resolver",
		Short: "Label reference resolution for layered metadata trees",
		Long: "Resolves @FileId:LabelId references against per-language label files\n" +
			"discovered under a package/model metadata root, with an in-memory cache.",
	}
	rootCmd.PersistentFlags().String("root", "", "Label metadata root (overrides LABEL_ROOT)")

	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(languagesCmd())
	rootCmd.AddCommand(filesCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <reference>",
		Short: "Resolve one label reference to its text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			language, _ := cmd.Flags().GetString("language")
			asJSON, _ := cmd.Flags().GetBool("json")
			root, _ := cmd.Flags().GetString("root")
			return runResolve(args[0], language, root, asJSON)
		},
	}
	cmd.Flags().String("language", "", "Language code (defaults to LABEL_DEFAULT_LANGUAGE)")
	cmd.Flags().Bool("json", false, "Print the result as JSON")
	return cmd
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <reference>...",
		Short: "Resolve many label references in one pass",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			language, _ := cmd.Flags().GetString("language")
			asJSON, _ := cmd.Flags().GetBool("json")
			root, _ := cmd.Flags().GetString("root")
			return runBatch(args, language, root, asJSON)
		},
	}
	cmd.Flags().String("language", "", "Language code (defaults to LABEL_DEFAULT_LANGUAGE)")
	cmd.Flags().Bool("json", false, "Print the result as JSON")
	return cmd
}

func languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages <package> <model> <fileId>",
		Short: "List the languages a package/model provides for a label file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			return runLanguages(args[0], args[1], args[2], root)
		},
	}
}

func filesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files <package> <model> <language>",
		Short: "List the label file IDs a package/model provides for a language",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			return runFiles(args[0], args[1], args[2], root)
		},
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve label resolution tools over stdio JSON-RPC",
		Long: "Speaks JSON-RPC 2.0 on stdin/stdout for editor and assistant integrations.\n" +
			"An HTTP facade and a label file watcher can run alongside.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			httpAddr, _ := cmd.Flags().GetString("http")
			watch, _ := cmd.Flags().GetBool("watch")
			root, _ := cmd.Flags().GetString("root")
			return runServe(root, httpAddr, watch)
		},
	}
	cmd.Flags().String("http", "", "Also serve the REST facade on this address (overrides LABEL_HTTP_ADDR)")
	cmd.Flags().Bool("watch", false, "Clear the cache when label files change under the root")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("label-resolver " + version)
		},
	}
}

// runResolve handles the `resolve` command.
func runResolve(reference, language, rootOverride string, asJSON bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	applyLogLevel(cfg.LogLevel)
	if language == "" {
		language = cfg.DefaultLanguage
	}

	engine, _, err := buildEngine(cfg, rootOverride)
	if err != nil {
		return err
	}

	res, err := engine.Resolve(ctx, reference, language)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", reference, err)
	}

	if asJSON {
		return printJSON(res)
	}
	if !res.Found {
		fmt.Printf("%s: not found (%s)\n", reference, language)
		return nil
	}
	fmt.Println(res.Text)
	if res.Description != "" {
		fmt.Printf("  %s\n", res.Description)
	}
	return nil
}

// runBatch handles the `batch` command.
func runBatch(references []string, language, rootOverride string, asJSON bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	applyLogLevel(cfg.LogLevel)
	if language == "" {
		language = cfg.DefaultLanguage
	}

	engine, _, err := buildEngine(cfg, rootOverride)
	if err != nil {
		return err
	}

	res, err := engine.ResolveBatch(ctx, references, language)
	if err != nil {
		return fmt.Errorf("resolve batch: %w", err)
	}

	if asJSON {
		return printJSON(res)
	}
	for _, ref := range references {
		if text, ok := res.Found[ref]; ok {
			fmt.Printf("%s\t%s\n", ref, text)
		} else {
			fmt.Printf("%s\t(not found)\n", ref)
		}
	}
	fmt.Printf("%d of %d found\n", res.FoundCount, res.RequestedCount)
	return nil
}

// runLanguages handles the `languages` command.
func runLanguages(pkg, model, fileID, rootOverride string) error {
	_, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	applyLogLevel(cfg.LogLevel)

	engine, _, err := buildEngine(cfg, rootOverride)
	if err != nil {
		return err
	}

	langs, err := engine.Languages(pkg, model, fileID)
	if err != nil {
		return fmt.Errorf("list languages: %w", err)
	}
	for _, lang := range langs {
		fmt.Println(lang)
	}
	return nil
}

// runFiles handles the `files` command.
func runFiles(pkg, model, language, rootOverride string) error {
	_, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	applyLogLevel(cfg.LogLevel)

	engine, _, err := buildEngine(cfg, rootOverride)
	if err != nil {
		return err
	}

	ids, err := engine.LabelFiles(pkg, model, language)
	if err != nil {
		return fmt.Errorf("list label files: %w", err)
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

// runServe handles the `serve` command.
func runServe(rootOverride, httpAddr string, watch bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	applyLogLevel(cfg.LogLevel)
	if httpAddr == "" {
		httpAddr = cfg.HTTPAddr
	}

	engine, root, err := buildEngine(cfg, rootOverride)
	if err != nil {
		return err
	}
	if watch && root == "" {
		log.Warn().Msg("No label root configured, watcher disabled")
		watch = false
	}

	srv := server.New(engine, server.Options{
		HTTPAddr: httpAddr,
		Watch:    watch,
		Root:     root,
	})
	return srv.Run(ctx)
}

// buildEngine assembles the resolver from config plus the --root override.
// The returned string is the absolute root, empty when unconfigured.
func buildEngine(cfg *config.Config, rootOverride string) (*resolver.Resolver, string, error) {
	root := cfg.Root
	if rootOverride != "" {
		root = rootOverride
	}

	loc, err := locator.New(root)
	if err != nil {
		return nil, "", err
	}
	return resolver.New(loc, labelcache.New(), cfg.WorkerCount), loc.Root(), nil
}

func applyLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}
