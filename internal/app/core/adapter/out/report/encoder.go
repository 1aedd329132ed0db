package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-tx-engine/internal/app/core/domain"
)

// 支援的輸出格式
const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// columns 欄位順序固定
var columns = []string{"client", "available", "held", "total", "locked"}

// Encoder 帳戶快照輸出
type Encoder interface {
	Encode(w io.Writer, accounts []domain.Account) error
}

// NewEncoder 依格式建立 Encoder
func NewEncoder(format string) (Encoder, error) {
	switch format {
	case FormatCSV, "":
		return CSVEncoder{}, nil
	case FormatJSON:
		return JSONEncoder{}, nil
	case FormatYAML:
		return YAMLEncoder{}, nil
	case FormatTable:
		return TableEncoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

func fields(a domain.Account) []string {
	return []string{
		strconv.FormatUint(uint64(a.Client), 10),
		a.Available.String(),
		a.Held.String(),
		a.Total().String(),
		strconv.FormatBool(a.Locked),
	}
}

// CSVEncoder client,available,held,total,locked
type CSVEncoder struct{}

func (CSVEncoder) Encode(w io.Writer, accounts []domain.Account) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, a := range accounts {
		if err := cw.Write(fields(a)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonAccount struct {
	Client    uint16      `json:"client"`
	Available json.Number `json:"available"`
	Held      json.Number `json:"held"`
	Total     json.Number `json:"total"`
	Locked    bool        `json:"locked"`
}

// JSONEncoder 金額輸出為數字 (固定 4 位小數)
type JSONEncoder struct{}

func (JSONEncoder) Encode(w io.Writer, accounts []domain.Account) error {
	out := make([]jsonAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, jsonAccount{
			Client:    uint16(a.Client),
			Available: json.Number(a.Available.String()),
			Held:      json.Number(a.Held.String()),
			Total:     json.Number(a.Total().String()),
			Locked:    a.Locked,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// YAMLEncoder 直接組 yaml.Node，確保金額保留 4 位小數且不加引號
type YAMLEncoder struct{}

func (YAMLEncoder) Encode(w io.Writer, accounts []domain.Account) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, a := range accounts {
		values := fields(a)
		tags := []string{"!!int", "!!float", "!!float", "!!float", "!!bool"}
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for i, name := range columns {
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: tags[i], Value: values[i]},
			)
		}
		seq.Content = append(seq.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}

// TableEncoder 給人看的表格
type TableEncoder struct{}

func (TableEncoder) Encode(w io.Writer, accounts []domain.Account) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, a := range accounts {
		table.Append(fields(a))
	}
	table.Render()
	return nil
}
