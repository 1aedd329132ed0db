package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JoeShih716/go-tx-engine/internal/app/core/adapter/in/csvfile"
	memory_adapter "github.com/JoeShih716/go-tx-engine/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-tx-engine/internal/app/core/adapter/out/mysql"
	"github.com/JoeShih716/go-tx-engine/internal/app/core/adapter/out/report"
	"github.com/JoeShih716/go-tx-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-tx-engine/internal/app/core/usecase"
	"github.com/JoeShih716/go-tx-engine/internal/config"
	"github.com/JoeShih716/go-tx-engine/internal/logger"
	"github.com/JoeShih716/go-tx-engine/pkg/jsonl"
	"github.com/JoeShih716/go-tx-engine/pkg/mysql"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	format := flag.String("format", "", "output format: csv, json, yaml, table (overrides config)")
	output := flag.String("o", "", "write snapshot to file instead of stdout (overrides config)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <transactions.csv>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	// 1. 載入設定
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *output != "" {
		cfg.Output.Path = *output
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// 2. 初始化 Logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Ctrl-C 中斷時不輸出不完整的快照
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, flag.Arg(0), os.Stdout, log)
	stop()
	if err != nil {
		log.Error("run failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

// run 讀檔 -> 狀態機 -> 輸出快照 (-> MySQL)
//
// 參數:
//
//	ctx: 上下文
//	cfg: 設定
//	inputPath: 交易 CSV 路徑
//	stdout: cfg.Output.Path 為空時的輸出目的地
//	log: zap logger
func run(ctx context.Context, cfg config.Config, inputPath string, stdout io.Writer, log *zap.Logger) error {
	runID := uuid.New()
	log = log.With(zap.String("run_id", runID.String()))
	started := time.Now()

	encoder, err := report.NewEncoder(cfg.Output.Format)
	if err != nil {
		return err
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	reader, err := csvfile.NewReader(in)
	if err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}

	var sink usecase.RejectionSink
	if cfg.Output.Rejections != "" {
		rejections, err := jsonl.Open(cfg.Output.Rejections, true)
		if err != nil {
			return fmt.Errorf("open rejection report: %w", err)
		}
		defer rejections.Close()
		sink = rejections
	}

	// 3. 初始化狀態機 (帳本 + 交易紀錄)
	engine := usecase.NewEngine(memory_adapter.NewLedger(), memory_adapter.NewJournal())
	sequencer := usecase.NewSequencer(engine, log, sink, runID)

	// 4. 讀取端與單一寫入端
	records := make(chan usecase.Envelope, cfg.Input.Buffer)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return reader.Stream(gctx, records, cfg.Input.Strict)
	})
	g.Go(func() error {
		return sequencer.Run(gctx, records)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	// 5. 輸出快照
	snapshot := engine.Snapshot()
	if err := writeSnapshot(cfg.Output.Path, stdout, encoder, snapshot); err != nil {
		return err
	}

	// 6. 匯出 MySQL (選用)
	if cfg.MySQL.Enabled {
		if err := exportSnapshot(ctx, cfg.MySQL.Config, runID, snapshot, log); err != nil {
			return err
		}
	}

	stats := sequencer.Stats()
	fields := []zap.Field{
		zap.String("input", inputPath),
		zap.Int("records", stats.Total()),
		zap.Int("accounts", len(snapshot)),
		zap.Duration("elapsed", time.Since(started)),
	}
	for kind, n := range stats.Applied {
		fields = append(fields, zap.Int("applied_"+kind.String(), n))
	}
	for code, n := range stats.Rejected {
		fields = append(fields, zap.Int("rejected_"+code, n))
	}
	log.Info("run completed", fields...)
	return nil
}

func writeSnapshot(path string, stdout io.Writer, encoder report.Encoder, snapshot []domain.Account) error {
	if path == "" {
		return encoder.Encode(stdout, snapshot)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := encoder.Encode(f, snapshot); err != nil {
		f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	return f.Close()
}

func exportSnapshot(ctx context.Context, cfg mysql.Config, runID uuid.UUID, snapshot []domain.Account, log *zap.Logger) error {
	client, err := mysql.NewClient(cfg, log)
	if err != nil {
		return err
	}
	defer client.Close()

	exporter := mysql_adapter.NewSnapshotExporter(client)
	if err := exporter.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate account_snapshots: %w", err)
	}
	n, err := exporter.Export(ctx, runID, snapshot)
	if err != nil {
		return err
	}
	log.Info("snapshot exported to mysql", zap.Int64("rows", n), zap.String("db", cfg.DBName))
	return nil
}
