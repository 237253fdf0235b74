package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/tidemark/signalforge/Internal/types"
)

// loadBars reads an OHLCV CSV: timestamp,open,high,low,close,volume.
// A header row is detected by its unparseable open column.
func loadBars(path string) ([]types.RawBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read bars csv: %w", err)
	}

	raw := make([]types.RawBar, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			if _, err := strconv.ParseFloat(row[1], 64); err != nil {
				continue
			}
		}
		bar, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		raw = append(raw, bar)
	}
	return raw, nil
}

func parseRow(row []string) (types.RawBar, error) {
	fields := [5]float64{}
	for i, col := range row[1:] {
		v, err := strconv.ParseFloat(col, 64)
		if err != nil {
			return types.RawBar{}, fmt.Errorf("column %d: %w", i+2, err)
		}
		fields[i] = v
	}
	return types.RawBar{
		Timestamp: row[0],
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
	}, nil
}

// writeTrades exports the trade ledger next to the backtest output.
func writeTrades(path string, trades []types.TradeRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trades file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"id", "direction", "entry_time", "entry_price", "exit_time", "exit_price", "size", "r_multiple", "pnl", "exit_reason"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write trades header: %w", err)
	}

	for _, tr := range trades {
		row := []string{
			tr.ID,
			string(tr.Direction),
			tr.EntryTime.Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(tr.EntryPrice, 'f', -1, 64),
			tr.ExitTime.Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(tr.ExitPrice, 'f', -1, 64),
			strconv.FormatFloat(tr.Size, 'f', -1, 64),
			strconv.FormatFloat(tr.RMultiple, 'f', 4, 64),
			tr.PnL.StringFixed(2),
			tr.ExitReason,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write trade row: %w", err)
		}
	}
	return nil
}
