// Package decisionlog appends decision and reevaluation history as one
// JSON object per line, one file per day.
package decisionlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var mu sync.Mutex

type Entry struct {
	Time       string
	Symbol     string
	Action     string
	Reason     string
	Confidence float64
	Price      float64
	Window     string         `json:"window,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// ReevaluationEntry records an open position re-checked outside its
// normal trading hours.
type ReevaluationEntry struct {
	Time    string
	Symbol  string
	Reason  string
	Price   float64
	HeldQty int
}

func logDir() string {
	if v := os.Getenv("HARNESS_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	return filepath.Join(logDir(), "decisions", t.Format("2006-01-02")+".txt")
}

func reevalFilepath(t time.Time) string {
	return filepath.Join(logDir(), "reevaluations", t.Format("2006-01-02")+".txt")
}

func appendLine(path string, v any) error {
	mu.Lock()
	defer mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(v)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

func Append(e Entry) error {
	now := time.Now()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(dailyFilepath(now), e)
}

func AppendReevaluation(e ReevaluationEntry) error {
	now := time.Now()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(reevalFilepath(now), e)
}

// CompressOlder gzips log files older than retentionDays and removes
// the originals. Zero or negative retention disables compression.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || info.ModTime().After(cutoff) {
			return nil
		}
		if er := gzipFile(p); er == nil {
			_ = os.Remove(p)
		}
		return nil
	})
}

func gzipFile(p string) error {
	in, err := os.Open(p)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(p + ".gz")
	if err != nil {
		return err
	}
	defer out.Close()
	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
