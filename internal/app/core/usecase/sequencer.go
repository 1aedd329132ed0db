package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-tx-engine/internal/app/core/domain"
)

// Envelope 輸送帶上的單筆資料
// Record 與 Err 只會有一個有值；Err 代表該行無法解析成紀錄
type Envelope struct {
	Line   int
	Record domain.Record
	Err    error
}

// RejectionSink 拒絕紀錄的輸出目的地 (例如 JSON Lines 報表)
type RejectionSink interface {
	Write(v any) error
}

// Rejection 寫入 RejectionSink 的內容
type Rejection struct {
	RunID  string `json:"run_id"`
	Line   int    `json:"line"`
	Kind   string `json:"kind,omitempty"`
	Client uint16 `json:"client"`
	Tx     uint32 `json:"tx"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Stats 單次執行的統計
type Stats struct {
	Applied  map[domain.RecordKind]int
	Rejected map[string]int
}

// Total 已處理筆數 (含拒絕)
func (s Stats) Total() int {
	n := 0
	for _, c := range s.Applied {
		n += c
	}
	for _, c := range s.Rejected {
		n += c
	}
	return n
}

// Sequencer 單一寫入者：依序從輸送帶取出紀錄交給 Engine
//
// 結構:
//
//	engine: 狀態機 (只有 Run 的 goroutine 會碰)
//	logger: 診斷輸出
//	sink: 拒絕報表，可為 nil
//	runID: 本次執行 ID
type Sequencer struct {
	engine *Engine
	logger *zap.Logger
	sink   RejectionSink
	runID  uuid.UUID
	stats  Stats
}

// NewSequencer 建立 Sequencer
//
// 參數:
//
//	engine: 狀態機
//	logger: zap logger
//	sink: 拒絕報表 (nil 表示不輸出)
//	runID: 本次執行 ID
func NewSequencer(engine *Engine, logger *zap.Logger, sink RejectionSink, runID uuid.UUID) *Sequencer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sequencer{
		engine: engine,
		logger: logger,
		sink:   sink,
		runID:  runID,
		stats: Stats{
			Applied:  make(map[domain.RecordKind]int),
			Rejected: make(map[string]int),
		},
	}
}

// Run 消化輸送帶直到 channel 關閉
//
// 回傳:
//
//	error: ctx 取消或報表寫入失敗；單筆拒絕不會中斷
func (s *Sequencer) Run(ctx context.Context, in <-chan Envelope) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-in:
			if !ok {
				return nil
			}
			if err := s.process(env); err != nil {
				return err
			}
		}
	}
}

// Stats 回傳統計 (Run 結束後才可呼叫)
func (s *Sequencer) Stats() Stats {
	return s.stats
}

func (s *Sequencer) process(env Envelope) error {
	if env.Err != nil {
		return s.reject(env, nil, env.Err)
	}

	if err := s.engine.Apply(env.Record); err != nil {
		return s.reject(env, env.Record, err)
	}
	s.stats.Applied[env.Record.Kind()]++
	return nil
}

func (s *Sequencer) reject(env Envelope, rec domain.Record, cause error) error {
	code := domain.RejectionCode(cause)
	s.stats.Rejected[code]++

	rejection := Rejection{
		RunID:  s.runID.String(),
		Line:   env.Line,
		Code:   code,
		Reason: reason(cause),
	}
	fields := []zap.Field{
		zap.String("run_id", rejection.RunID),
		zap.Int("line", env.Line),
		zap.String("code", code),
		zap.String("reason", rejection.Reason),
	}
	if rec != nil {
		rejection.Kind = rec.Kind().String()
		rejection.Client = uint16(rec.ClientID())
		rejection.Tx = uint32(rec.TxID())
		fields = append(fields,
			zap.Stringer("kind", rec.Kind()),
			zap.Uint16("client", rejection.Client),
			zap.Uint32("tx", rejection.Tx),
		)
	}
	s.logger.Warn("record rejected", fields...)

	if s.sink == nil {
		return nil
	}
	if err := s.sink.Write(rejection); err != nil {
		return fmt.Errorf("write rejection report: %w", err)
	}
	return nil
}

// reason 去掉 RejectionError 的前綴，只留原因
func reason(err error) string {
	var rejection *domain.RejectionError
	if errors.As(err, &rejection) {
		return rejection.Err.Error()
	}
	return err.Error()
}
