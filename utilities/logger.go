package utilities

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	infoLog  = log.New(os.Stderr, "INFO: ", log.Ldate|log.Ltime)
	warnLog  = log.New(os.Stderr, "WARNING: ", log.Ldate|log.Ltime)
	errorLog = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime)
	debugLog = log.New(io.Discard, "DEBUG: ", log.Ldate|log.Ltime)
	logMutex sync.Mutex
	closers  []io.Closer
)

// SetupLogging sends each level to its own rotating file in logDir, tee'd to
// the console. Debug output is only written when debug is set.
func SetupLogging(logDir string, debug bool) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	infoFile := rotatingFile(logDir, "info.log")
	warnFile := rotatingFile(logDir, "warn.log")
	errorFile := rotatingFile(logDir, "error.log")

	logMutex.Lock()
	defer logMutex.Unlock()

	infoWriter := io.MultiWriter(os.Stdout, infoFile)
	infoLog.SetOutput(infoWriter)
	warnLog.SetOutput(io.MultiWriter(os.Stdout, warnFile))
	errorLog.SetOutput(io.MultiWriter(os.Stderr, errorFile))
	closers = append(closers, infoFile, warnFile, errorFile)
	if debug {
		debugFile := rotatingFile(logDir, "debug.log")
		debugLog.SetOutput(io.MultiWriter(os.Stdout, debugFile))
		closers = append(closers, debugFile)
	}

	// Override Go's default log
	log.SetOutput(infoWriter)
	return nil
}

// CloseLogs flushes and closes the log files.
func CloseLogs() {
	logMutex.Lock()
	defer logMutex.Unlock()
	for _, c := range closers {
		c.Close()
	}
	closers = nil
}

func rotatingFile(dir, name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, name),
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}

func getCallerInfo() string {
	pc, _, _, ok := runtime.Caller(3)
	if !ok {
		return "unknown"
	}
	name := runtime.FuncForPC(pc).Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func output(level string, format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	logEntry := fmt.Sprintf("[%s] %s", getCallerInfo(), message)

	logMutex.Lock()
	defer logMutex.Unlock()
	switch level {
	case "WARNING":
		warnLog.Println(logEntry)
	case "ERROR":
		errorLog.Println(logEntry)
	case "DEBUG":
		debugLog.Println(logEntry)
	default:
		infoLog.Println(logEntry)
	}
}

func Info(format string, v ...interface{}) {
	output("INFO", format, v...)
}

func Warn(format string, v ...interface{}) {
	output("WARNING", format, v...)
}

func Error(format string, v ...interface{}) {
	output("ERROR", format, v...)
}

func Debug(format string, v ...interface{}) {
	output("DEBUG", format, v...)
}
