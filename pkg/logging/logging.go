// Package logging sets up the zerolog logger used by the eqldoc command.
package logging

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

type Options struct {
	Debug     bool
	WithColor bool
	// Caller adds the package, file and line of each log call
	Caller bool
}

// New builds a console logger writing to w. Without Debug only warnings and
// errors are written.
func New(w io.Writer, opts Options) zerolog.Logger {
	level := zerolog.WarnLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !opts.WithColor,
		TimeFormat: "15:04:05.000",
	}

	ctx := zerolog.New(console).Level(level).With().Timestamp()
	logger := ctx.Logger()
	if opts.Caller {
		logger = logger.Hook(CallerHook{WithColor: opts.WithColor})
	}
	return logger
}

// WithContext attaches a logger built from opts to ctx.
func WithContext(ctx context.Context, w io.Writer, opts Options) context.Context {
	logger := New(w, opts)
	return logger.WithContext(ctx)
}

type CallerHook struct {
	WithColor bool
}

// frames between Run and the log call: Event.msg and Event.Msg
const callerSkip = 3

func (c CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	pc, file, line, ok := runtime.Caller(callerSkip)
	if !ok {
		return
	}

	funcd := runtime.FuncForPC(pc)
	if funcd == nil {
		return
	}

	pkg, _ := GetPackageAndFuncFromFuncName(funcd.Name())

	e.Str("caller", FormatCaller(pkg, file, line, c.WithColor))
}

func GetPackageAndFuncFromFuncName(pc string) (pkg, function string) {
	funcName := pc
	lastSlash := strings.LastIndexByte(funcName, '/')
	if lastSlash < 0 {
		lastSlash = 0
	}

	firstDot := strings.IndexByte(funcName[lastSlash:], '.') + lastSlash
	if firstDot < lastSlash {
		return funcName, ""
	}

	pkg = funcName[:firstDot]
	fname := funcName[firstDot+1:]

	if strings.Contains(pkg, ".(") {
		splt := strings.Split(pkg, ".(")
		pkg = splt[0]
		fname = "(" + splt[1] + "." + fname
	}

	return pkg, fname
}

func FormatCaller(pkg, path string, number int, colorize bool) string {
	p := FileNameOfPath(path)
	if colorize {
		p = color.New(color.Bold).Sprint(p)
		num := color.New(color.FgHiRed, color.Bold).Sprintf("%d", number)
		sep := color.New(color.Faint).Sprint(":")

		return fmt.Sprintf("%s%s%s%s%s", pkg, sep, p, sep, num)
	}

	return fmt.Sprintf("%s:%s:%d", pkg, p, number)
}

func FileNameOfPath(path string) string {
	tot := strings.Split(path, "/")
	if len(tot) > 1 {
		return tot[len(tot)-1]
	}

	return path
}
