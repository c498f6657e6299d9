package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile は既定の設定ファイル名
	DefaultFile = "config.txt"

	// DefaultThreads と DefaultMaxNumber はファイルがない場合の既定値
	DefaultThreads   = 4
	DefaultMaxNumber = 65536

	// MalformedThreads と MalformedMaxNumber は値が不正な場合の代替値
	// threads だけ既定値と異なる
	MalformedThreads   = 255
	MalformedMaxNumber = 65536
)

const (
	keyThreads   = "threads"
	keyMaxNumber = "max_number"
	keyStrategy  = "strategy"
	keyMode      = "mode"
)

var (
	// ErrUnreadable は設定ファイルが読めなかったことを表す
	ErrUnreadable = errors.New("config file unreadable")
	// ErrMalformedField は項目の値が整数として解釈できなかったことを表す
	ErrMalformedField = errors.New("malformed config field")
)

// FieldError は不正な項目と代替値を表す
type FieldError struct {
	Key      string
	Value    string
	Fallback int
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s=%q, using %d", ErrMalformedField, e.Key, e.Value, e.Fallback)
}

// Unwrap は ErrMalformedField を返す
func (e *FieldError) Unwrap() error {
	return ErrMalformedField
}

// Config は実行設定
// ワーカー起動前に一度だけ読み込まれ、実行中は変更されない
type Config struct {
	Threads   int
	MaxNumber int
	Strategy  string // 空の場合は呼び出し側の既定値
	Mode      string // 空の場合は呼び出し側の既定値
}

// Default はファイルがない場合の設定を返す
func Default() Config {
	return Config{
		Threads:   DefaultThreads,
		MaxNumber: DefaultMaxNumber,
	}
}

// fileConfig は YAML 設定ファイルの構造
// 不正な値を項目ごとに扱うため文字列で受け取る
type fileConfig struct {
	Threads   string `yaml:"threads"`
	MaxNumber string `yaml:"max_number"`
	Strategy  string `yaml:"strategy"`
	Mode      string `yaml:"mode"`
}

// Load は設定ファイルを読み込む
// 返される Config は常に利用可能で、エラーは復旧済みの問題を表す
//   - ファイルが読めない: 全項目が既定値、ErrUnreadable
//   - 項目の値が不正: その項目だけ代替値、ErrMalformedField (*FieldError)
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return Parse(bytes.NewReader(data))
	}
}

// Parse は key=value 形式の設定を読み込む
// 未知の行は無視し、同じキーが複数ある場合は後の行が優先される
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	var errs []error

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		switch key {
		case keyThreads:
			cfg.Threads = parseField(&errs, keyThreads, value, MalformedThreads)
		case keyMaxNumber:
			cfg.MaxNumber = parseField(&errs, keyMaxNumber, value, MalformedMaxNumber)
		case keyStrategy:
			cfg.Strategy = strings.TrimSpace(value)
		case keyMode:
			cfg.Mode = strings.TrimSpace(value)
		}
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrUnreadable, err))
	}

	return cfg, errors.Join(errs...)
}

// parseYAML は YAML 形式の設定を読み込む
func parseYAML(data []byte) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Default(), fmt.Errorf("%w: failed to parse YAML: %w", ErrUnreadable, err)
	}

	cfg := Default()
	var errs []error

	if fc.Threads != "" {
		cfg.Threads = parseField(&errs, keyThreads, fc.Threads, MalformedThreads)
	}
	if fc.MaxNumber != "" {
		cfg.MaxNumber = parseField(&errs, keyMaxNumber, fc.MaxNumber, MalformedMaxNumber)
	}
	cfg.Strategy = strings.TrimSpace(fc.Strategy)
	cfg.Mode = strings.TrimSpace(fc.Mode)

	return cfg, errors.Join(errs...)
}

// parseField は整数値を解釈し、失敗した場合は fallback を返してエラーを追加する
func parseField(errs *[]error, key, value string, fallback int) int {
	n, ok := parseLeadingInt(value)
	if !ok {
		*errs = append(*errs, &FieldError{Key: key, Value: value, Fallback: fallback})
		return fallback
	}
	return n
}

// parseLeadingInt は先頭の空白を読み飛ばし、符号と数字の並びだけを整数として解釈する
// "12abc" は 12、"abc" や 32 ビット整数の範囲外の値は失敗になる
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:end], 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// Validate は設定を検証する
// MaxNumber < 1 は空のキューとして有効
func (c Config) Validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", c.Threads)
	}
	return nil
}

// String は設定の概要を返す
func (c Config) String() string {
	return fmt.Sprintf("%d threads, searching up to %d", c.Threads, c.MaxNumber)
}
