package graph

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"krakenreport/internal/types"
)

// Kind 为步骤在构图时的分类。
type Kind int

const (
	KindOrdinary Kind = iota
	KindReadSignal
	KindWriteSignal
)

func (k Kind) String() string {
	switch k {
	case KindReadSignal:
		return "read_signal"
	case KindWriteSignal:
		return "write_signal"
	default:
		return "ordinary"
	}
}

const (
	DefaultReadPattern  = `(?i)\bwait for a signal containing\b`
	DefaultWritePattern = `(?i)\bsend a signal to user\b`
)

var (
	payloadPattern  = regexp.MustCompile(`"([^"]*)"`)
	receiverPattern = regexp.MustCompile(`(?i)\buser\s+(\d+)\b`)
	numberPattern   = regexp.MustCompile(`\b(\d+)\b`)
)

// Classification 是分类结果；Key 为信号载荷，Receiver 为写信号的目标用户（0 表示未知）。
type Classification struct {
	Kind     Kind
	Key      string
	Receiver int
}

// Classifier decides whether a step reads a signal, writes one, or is ordinary.
type Classifier struct {
	read  *regexp.Regexp
	write *regexp.Regexp
}

// NewClassifier compiles the read/write detection patterns; empty patterns use the defaults.
func NewClassifier(readPattern, writePattern string) (*Classifier, error) {
	readPattern = strings.TrimSpace(readPattern)
	if readPattern == "" {
		readPattern = DefaultReadPattern
	}
	writePattern = strings.TrimSpace(writePattern)
	if writePattern == "" {
		writePattern = DefaultWritePattern
	}
	read, err := regexp.Compile(readPattern)
	if err != nil {
		return nil, fmt.Errorf("compile read signal pattern: %w", err)
	}
	write, err := regexp.Compile(writePattern)
	if err != nil {
		return nil, fmt.Errorf("compile write signal pattern: %w", err)
	}
	return &Classifier{read: read, write: write}, nil
}

// DefaultClassifier uses the runner's built-in signal step wording.
func DefaultClassifier() *Classifier {
	c, err := NewClassifier("", "")
	if err != nil {
		panic(err)
	}
	return c
}

// Classify only promotes passed steps to signals. A signal step without a quoted payload
// is ordinary.
func (c *Classifier) Classify(step types.StepRecord) Classification {
	if c == nil || !step.Passed() {
		return Classification{Kind: KindOrdinary}
	}
	switch {
	case c.read.MatchString(step.Name):
		key, ok := SignalKey(step.Name)
		if !ok {
			return Classification{Kind: KindOrdinary}
		}
		return Classification{Kind: KindReadSignal, Key: key}
	case c.write.MatchString(step.Name):
		key, ok := SignalKey(step.Name)
		if !ok {
			return Classification{Kind: KindOrdinary}
		}
		return Classification{Kind: KindWriteSignal, Key: key, Receiver: receiverOf(step.Name, key)}
	default:
		return Classification{Kind: KindOrdinary}
	}
}

// SignalKey extracts the first non-empty quoted payload from step text.
func SignalKey(text string) (string, bool) {
	for _, m := range payloadPattern.FindAllStringSubmatch(text, -1) {
		if len(m) > 1 && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

func receiverOf(text, payload string) int {
	// 去掉载荷，避免载荷中的数字被误认为接收方
	text = strings.Replace(text, `"`+payload+`"`, "", 1)
	if m := receiverPattern.FindStringSubmatch(text); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	if m := numberPattern.FindStringSubmatch(text); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}
