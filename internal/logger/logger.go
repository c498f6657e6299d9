package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// TimestampLayout はログと実行時刻の表示形式 (YYYY-MM-DD HH:MM:SS.mmm)
const TimestampLayout = "2006-01-02 15:04:05.000"

// Level はログレベルを表す
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel は文字列をログレベルに変換する
// 空文字列は info として扱う
func ParseLevel(s string) (Level, error) {
	switch name := strings.ToLower(strings.TrimSpace(s)); name {
	case "":
		return LevelInfo, nil
	case "warning":
		return LevelWarn, nil
	default:
		for l, n := range levelNames {
			if strings.EqualFold(n, name) {
				return Level(l), nil
			}
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level: %q", s)
}

// Logger はスレッドセーフなロガー
// レベル判定はロックを取らず、出力時だけ書き込み先を直列化する
type Logger struct {
	minLevel atomic.Int32

	mu  sync.Mutex
	out io.Writer
	buf []byte
}

// Default はデフォルトのロガー
// 結果出力 (stdout) と混ざらないよう stderr に書き込む
var Default = New(os.Stderr, LevelInfo)

// New は新しいロガーを作成する
func New(out io.Writer, minLevel Level) *Logger {
	l := &Logger{out: out}
	l.minLevel.Store(int32(minLevel))
	return l
}

// SetLevel はログレベルを設定する
func (l *Logger) SetLevel(level Level) {
	l.minLevel.Store(int32(level))
}

// SetOutput は出力先を変更する
func (l *Logger) SetOutput(out io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = out
}

// Enabled は level のログが出力されるかどうかを返す
func (l *Logger) Enabled(level Level) bool {
	return level >= Level(l.minLevel.Load())
}

// Log は指定されたレベルでログを出力する
// 無効なレベルではメッセージを組み立てない
func (l *Logger) Log(level Level, source string, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	now := time.Now()
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	// [timestamp] [LEVEL] [source] message
	b := append(l.buf[:0], '[')
	b = now.AppendFormat(b, TimestampLayout)
	b = append(b, "] ["...)
	b = append(b, level.String()...)
	b = append(b, ']')
	if source != "" {
		b = append(b, " ["...)
		b = append(b, source...)
		b = append(b, ']')
	}
	b = append(b, ' ')
	b = append(b, strings.TrimSuffix(msg, "\n")...)
	b = append(b, '\n')
	l.buf = b

	_, _ = l.out.Write(b)
}

// Printf は printf 形式のロガーを受け取るライブラリ向けの関数を返す
func (l *Logger) Printf(level Level, source string) func(format string, args ...any) {
	return func(format string, args ...any) {
		l.Log(level, source, format, args...)
	}
}

// Debug はデバッグログを出力する
func (l *Logger) Debug(source string, format string, args ...any) {
	l.Log(LevelDebug, source, format, args...)
}

// Info は情報ログを出力する
func (l *Logger) Info(source string, format string, args ...any) {
	l.Log(LevelInfo, source, format, args...)
}

// Warn は警告ログを出力する
func (l *Logger) Warn(source string, format string, args ...any) {
	l.Log(LevelWarn, source, format, args...)
}

// Error はエラーログを出力する
func (l *Logger) Error(source string, format string, args ...any) {
	l.Log(LevelError, source, format, args...)
}

// WorkerSource はワーカーのログ出力元名を返す
func WorkerSource(id int) string {
	return fmt.Sprintf("worker-%d", id)
}

// グローバル関数（デフォルトロガーを使用）

// SetLevel はデフォルトロガーのログレベルを設定する
func SetLevel(level Level) { Default.SetLevel(level) }

// Debug はデバッグログを出力する
func Debug(source string, format string, args ...any) {
	Default.Log(LevelDebug, source, format, args...)
}

// Info は情報ログを出力する
func Info(source string, format string, args ...any) {
	Default.Log(LevelInfo, source, format, args...)
}

// Warn は警告ログを出力する
func Warn(source string, format string, args ...any) {
	Default.Log(LevelWarn, source, format, args...)
}

// Error はエラーログを出力する
func Error(source string, format string, args ...any) {
	Default.Log(LevelError, source, format, args...)
}
