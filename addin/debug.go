/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package addin

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/valyala/bytebufferpool"
)

// logger is the runtime's internal leveled logger. The host owns the real
// log sink; this one exists for the coordination layer's own diagnostics and
// defaults to warnings only.
type logger struct {
	name      string
	out       io.Writer
	callDepth int
}

var (
	internalLogger  = &logger{"", os.Stdout, 3}
	lifecycleLogger = &logger{"lifecycle trace", os.Stdout, 3}
	level           int
	debugMode       = false
)

const (
	levelTrace = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
	levelNoPrint
)

var levelName = []string{
	"Trace",
	"Debug",
	"Info",
	"Warn",
	"Error",
}

func init() {
	level = levelWarn
	if v := os.Getenv("ADDIN_LOG_LEVEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n <= levelNoPrint {
			level = n
		}
	}
	if os.Getenv("ADDIN_DEBUG_MODE") != "" {
		debugMode = true
	}
}

// SetLogLevel changes the internal logger's level; the default is Warning.
// The process env `ADDIN_LOG_LEVEL` could also set the log level.
func SetLogLevel(l int) {
	if l <= levelNoPrint {
		level = l
	}
}

// SetLogOutput redirects both internal loggers, typically to the host's own
// log file. A nil writer restores stdout.
func SetLogOutput(out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	internalLogger.out = out
	lifecycleLogger.out = out
}

func (l *logger) printf(lv int, format string, a ...interface{}) {
	if level > lv {
		return
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString(levelName[lv])
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(time.Now().Format("2006-01-02 15:04:05.999999"))
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(l.location())
	if l.name != "" {
		_ = buf.WriteByte(' ')
		_, _ = buf.WriteString(l.name)
	}
	_ = buf.WriteByte(' ')
	_, _ = fmt.Fprintf(buf, format, a...)
	_ = buf.WriteByte('\n')
	if _, err := l.out.Write(buf.Bytes()); err != nil {
		fmt.Fprintf(os.Stderr, "addin logger write failed: %v\n", err)
	}
}

func (l *logger) errorf(format string, a ...interface{}) { l.printf(levelError, format, a...) }
func (l *logger) warnf(format string, a ...interface{})  { l.printf(levelWarn, format, a...) }
func (l *logger) infof(format string, a ...interface{})  { l.printf(levelInfo, format, a...) }
func (l *logger) debugf(format string, a ...interface{}) { l.printf(levelDebug, format, a...) }
func (l *logger) tracef(format string, a ...interface{}) { l.printf(levelTrace, format, a...) }

func (l *logger) location() string {
	_, file, line, ok := runtime.Caller(l.callDepth)
	if !ok {
		return "???:0"
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}
