package dbglog

import (
	"fmt"
	golog "log"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

type sink interface {
	Println(...interface{})
}

type logger struct {
	sink

	Level   Level
	Color   bool
	filters []string
}

var (
	colorName  = color.New(color.FgYellow)
	colorDebug = color.New(color.FgBlue)
	colorInfo  = color.New(color.FgGreen)
	colorWarn  = color.New(color.FgYellow)
	colorError = color.New(color.FgRed)
	colorFatal = color.New(color.FgRed, color.Bold)
)

func levelColor(level Level) *color.Color {
	switch level {
	case DEBUG:
		return colorDebug
	case INFO:
		return colorInfo
	case WARN:
		return colorWarn
	case ERROR:
		return colorError
	default:
		return colorFatal
	}
}

func (l *logger) prologue(level Level, name string) string {
	var where string
	if name == "" {
		_, file, line, _ := runtime.Caller(4)
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		where = short + ":" + strconv.Itoa(line)
	} else {
		where = name
	}

	head := strings.ToUpper(level.String())
	if l.Color {
		return colorName.Sprint(where+":") + " " + levelColor(level).Sprint(head+":") + " "
	}
	return head + " " + where + ": "
}

func (l *logger) log(level Level, name, format string, arg ...interface{}) {
	msg := l.prologue(level, name) + fmt.Sprintf(format, arg...)
	for _, f := range l.filters {
		if strings.Contains(msg, f) {
			return
		}
	}
	l.Println(msg)
}

func (l *logger) logln(level Level, name string, arg ...interface{}) {
	msg := l.prologue(level, name) + fmt.Sprint(arg...)
	for _, f := range l.filters {
		if strings.Contains(msg, f) {
			return
		}
	}
	l.Println(msg)
}

var (
	loggers = make(map[string]*logger)
	mu      sync.RWMutex
)

// AddLogger registers a sink under name, logging only events at level or
// higher severity.
func AddLogger(name string, out sink, level Level, useColor bool) {
	mu.Lock()
	defer mu.Unlock()

	loggers[name] = &logger{sink: out, Level: level, Color: useColor}
}

// AddWriterLogger is a convenience for wrapping an io.Writer (os.Stderr, a
// log file, ...) in a stdlib *log.Logger sink.
func AddWriterLogger(name string, out interface {
	Write([]byte) (int, error)
}, level Level, useColor bool) {
	AddLogger(name, golog.New(out, "", golog.LstdFlags), level, useColor)
}

func DelLogger(name string) {
	mu.Lock()
	defer mu.Unlock()
	delete(loggers, name)
}

func Loggers() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(loggers))
	for k := range loggers {
		names = append(names, k)
	}
	return names
}

func SetLevel(name string, level Level) error {
	mu.Lock()
	defer mu.Unlock()

	l, ok := loggers[name]
	if !ok {
		return fmt.Errorf("no such logger %v", name)
	}
	l.Level = level
	return nil
}

func AddFilter(name, filter string) error {
	mu.Lock()
	defer mu.Unlock()

	l, ok := loggers[name]
	if !ok {
		return fmt.Errorf("no such logger %v", name)
	}
	for _, f := range l.filters {
		if f == filter {
			return nil
		}
	}
	l.filters = append(l.filters, filter)
	return nil
}

func dispatch(level Level, name, format string, arg ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()

	for _, l := range loggers {
		if l.Level <= level {
			l.log(level, name, format, arg...)
		}
	}
}

func dispatchln(level Level, name string, arg ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()

	for _, l := range loggers {
		if l.Level <= level {
			l.logln(level, name, arg...)
		}
	}
}

func Debug(format string, arg ...interface{}) { dispatch(DEBUG, "", format, arg...) }
func Info(format string, arg ...interface{})  { dispatch(INFO, "", format, arg...) }
func Warn(format string, arg ...interface{})  { dispatch(WARN, "", format, arg...) }
func Error(format string, arg ...interface{}) { dispatch(ERROR, "", format, arg...) }

func Debugln(arg ...interface{}) { dispatchln(DEBUG, "", arg...) }
func Infoln(arg ...interface{})  { dispatchln(INFO, "", arg...) }
func Warnln(arg ...interface{})  { dispatchln(WARN, "", arg...) }
func Errorln(arg ...interface{}) { dispatchln(ERROR, "", arg...) }
