package gateway

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/centavo-app/centavo/internal/checksum"
	"github.com/centavo-app/centavo/internal/models"
)

// Columns is the fixed durable column order. The first eleven columns must
// never be reordered; readers tolerate rows with missing trailing fields and
// ignore columns they do not recognize, so billingDay and active travel as
// trailing additions.
var Columns = []string{
	"id", "type", "date", "description", "value", "category",
	"account", "paymentMethod", "status", "notes", "relatedId",
	"billingDay", "active",
}

// CSV persists the record set as a single delimited file, overwritten whole
// on every Save. Writes are atomic: temp file, fsync, rename.
type CSV struct {
	path string

	mu      sync.Mutex
	lastSum string // checksum of the durable bytes last read or written
}

// NewCSV creates a CSV gateway at path, creating the parent directory if
// needed. The file itself is created on the first Save.
func NewCSV(path string) (*CSV, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("gateway: resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("gateway: create data dir: %w", err)
	}
	return &CSV{path: abs}, nil
}

// Path returns the absolute path of the durable file.
func (c *CSV) Path() string {
	return c.path
}

// LastChecksum returns the checksum of the bytes last loaded or saved, so a
// file watcher can tell this process's own writes from external ones.
func (c *CSV) LastChecksum() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSum
}

// Load reads the whole durable file. A missing file yields an empty set.
func (c *CSV) Load() (models.RecordSet, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.setSum("")
			return nil, nil
		}
		return nil, fmt.Errorf("gateway: read %s: %w", c.path, err)
	}

	set, err := decodeCSV(data)
	if err != nil {
		return nil, fmt.Errorf("gateway: parse %s: %w", c.path, err)
	}
	c.setSum(checksum.Sum(data))
	return set, nil
}

// Save overwrites the durable file with the full set.
func (c *CSV) Save(set models.RecordSet) error {
	data, err := encodeCSV(set)
	if err != nil {
		return fmt.Errorf("gateway: encode: %w", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".centavo-tmp-*")
	if err != nil {
		return fmt.Errorf("gateway: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("gateway: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("gateway: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("gateway: close temp: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("gateway: rename: %w", err)
	}
	success = true
	c.setSum(checksum.Sum(data))
	return nil
}

func (c *CSV) setSum(sum string) {
	c.mu.Lock()
	c.lastSum = sum
	c.mu.Unlock()
}

func encodeCSV(set models.RecordSet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, err
	}
	for _, r := range set {
		value := ""
		if !r.Value.IsZero() {
			value = r.Value.String()
		}
		billingDay := ""
		if r.BillingDay != 0 {
			billingDay = strconv.Itoa(r.BillingDay)
		}
		active := ""
		if r.Active {
			active = "true"
		}
		row := []string{
			r.ID, string(r.Type), r.Date, r.Description, value, r.Category,
			r.Account, r.PaymentMethod, string(r.Status), r.Notes, r.RelatedID,
			billingDay, active,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeCSV(data []byte) (models.RecordSet, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // tolerate short and long rows

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Map header names to positions so extra or reordered columns from other
	// writers do not break the reader.
	header := rows[0]
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var set models.RecordSet
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		rec := models.Record{
			ID:            field(row, "id"),
			Type:          models.RecordType(field(row, "type")),
			Date:          field(row, "date"),
			Description:   field(row, "description"),
			Category:      field(row, "category"),
			Account:       field(row, "account"),
			PaymentMethod: field(row, "paymentMethod"),
			Status:        models.Status(field(row, "status")),
			Notes:         field(row, "notes"),
			RelatedID:     field(row, "relatedId"),
		}
		if v := field(row, "value"); v != "" {
			if d, err := decimal.NewFromString(v); err == nil {
				rec.Value = d
			}
		}
		if v := field(row, "billingDay"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				rec.BillingDay = n
			}
		}
		if v := field(row, "active"); v != "" {
			rec.Active = v == "true" || v == "1"
		}
		set = append(set, rec)
	}
	return set, nil
}