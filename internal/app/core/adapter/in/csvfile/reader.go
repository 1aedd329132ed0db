package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JoeShih716/go-tx-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-tx-engine/internal/app/core/usecase"
)

// 必要欄位名稱
const (
	columnType   = "type"
	columnClient = "client"
	columnTx     = "tx"
	columnAmount = "amount"
)

// RowError 單行資料無法轉成紀錄 (非 CSV 語法錯誤)
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// row 單行原始欄位
type row struct {
	Type   string `validate:"required,oneof=deposit withdrawal dispute resolve chargeback"`
	Client string `validate:"required,number"`
	Tx     string `validate:"required,number"`
	Amount string
}

// Reader 將 CSV 逐行解析為 domain.Record
//
// 標頭必須包含 type, client, tx；amount 欄可省略，
// 欄位前後空白會被去除，爭議類紀錄的 amount 可留空或不寫
type Reader struct {
	csv      *csv.Reader
	validate *validator.Validate
	columns  map[string]int
}

// NewReader 讀取並檢查標頭
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{columnType, columnClient, columnTx} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("read header: missing column %q", required)
		}
	}

	return &Reader{
		csv:      cr,
		validate: validator.New(),
		columns:  columns,
	}, nil
}

// Next 讀取下一筆
//
// 回傳:
//
//	domain.Record: 紀錄
//	int: 行號
//	error: io.EOF 表示結束；*RowError 表示該行無效但可繼續；其他錯誤為 CSV 語法錯誤
func (r *Reader) Next() (domain.Record, int, error) {
	fields, err := r.csv.Read()
	if err != nil {
		return nil, 0, err
	}
	line, _ := r.csv.FieldPos(0)

	rec, err := r.decode(fields)
	if err != nil {
		return nil, line, &RowError{Line: line, Err: err}
	}
	return rec, line, nil
}

// Stream 將所有紀錄依序送上輸送帶，結束時關閉 out
//
// 參數:
//
//	ctx: 上下文
//	out: 輸送帶
//	strict: true 時遇到無效行即中止
func (r *Reader) Stream(ctx context.Context, out chan<- usecase.Envelope, strict bool) error {
	defer close(out)
	for {
		rec, line, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		env := usecase.Envelope{Line: line, Record: rec}
		if err != nil {
			var rowErr *RowError
			if !errors.As(err, &rowErr) || strict {
				return err
			}
			env.Err = rowErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- env:
		}
	}
}

func (r *Reader) decode(fields []string) (domain.Record, error) {
	raw := row{
		Type:   strings.ToLower(r.field(fields, columnType)),
		Client: r.field(fields, columnClient),
		Tx:     r.field(fields, columnTx),
		Amount: r.field(fields, columnAmount),
	}
	if err := r.validate.Struct(raw); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedRecord, describe(err))
	}

	kind, err := domain.ParseRecordKind(raw.Type)
	if err != nil {
		return nil, err
	}
	client, err := strconv.ParseUint(raw.Client, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: client %q out of range", domain.ErrMalformedRecord, raw.Client)
	}
	tx, err := strconv.ParseUint(raw.Tx, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: tx %q out of range", domain.ErrMalformedRecord, raw.Tx)
	}

	var amount *domain.Money
	if raw.Amount != "" && (kind == domain.KindDeposit || kind == domain.KindWithdrawal) {
		m, err := domain.ParseMoney(raw.Amount)
		if err != nil {
			return nil, err
		}
		amount = &m
	}
	return domain.NewRecord(kind, domain.ClientID(client), domain.TxID(tx), amount)
}

func (r *Reader) field(fields []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
