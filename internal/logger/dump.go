package logger

import (
	"io"
	"log"
	"strings"
	"sync"
)

var (
	dumpMu      sync.Mutex
	dumpLog     *log.Logger
	dumpEnabled bool
)

// SetDumpWriter 设置报告 payload 的转储目标；nil 关闭转储。
func SetDumpWriter(w io.Writer) {
	dumpMu.Lock()
	defer dumpMu.Unlock()
	if w == nil {
		dumpLog = nil
		return
	}
	dumpLog = log.New(w, "", log.LstdFlags)
}

func EnableDump(enabled bool) {
	dumpMu.Lock()
	dumpEnabled = enabled
	dumpMu.Unlock()
}

// DumpSection 是一段带标题的转储内容。
type DumpSection struct {
	Title string
	Body  string
}

func writeDump(kind, executionID string, sections []DumpSection) {
	dumpMu.Lock()
	logger := dumpLog
	enabled := dumpEnabled
	dumpMu.Unlock()
	if logger == nil || !enabled {
		return
	}
	var b strings.Builder
	b.WriteString("[DUMP]")
	if kind != "" {
		b.WriteString("[")
		b.WriteString(kind)
		b.WriteString("]")
	}
	if executionID != "" {
		b.WriteString("[")
		b.WriteString(executionID)
		b.WriteString("]")
	}
	b.WriteString("\n")
	for _, sec := range sections {
		t := strings.TrimSpace(sec.Title)
		if t == "" {
			t = "CONTENT"
		}
		b.WriteString("--- ")
		b.WriteString(t)
		b.WriteString(" ---\n")
		body := sec.Body
		b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	logger.Print(b.String())
}

// DumpPayload writes a named payload for executionID when dumping is enabled.
func DumpPayload(kind, executionID, payload string) {
	text := strings.TrimSpace(payload)
	if text == "" {
		return
	}
	writeDump(kind, executionID, []DumpSection{{Title: "PAYLOAD", Body: text}})
}

// DumpSections writes several sections under one header.
func DumpSections(kind, executionID string, sections ...DumpSection) {
	if len(sections) == 0 {
		return
	}
	writeDump(kind, executionID, sections)
}
