package app

import (
	"fmt"
	"strings"

	"ladder/internal/config"
	"ladder/internal/position"
)

type StartupSummary struct {
	Env           string
	Executor      string
	HTTPAddr      string
	ReplacePolicy string
	DefaultSize   float64
	Symbols       []string
	Journal       string
	Telegram      bool
}

func newStartupSummary(cfg *config.Config, executor string) *StartupSummary {
	journal := "disabled"
	if cfg.Journal.Enabled {
		journal = cfg.Journal.Driver + " " + cfg.Journal.Path
	}
	return &StartupSummary{
		Env:           cfg.App.Env,
		Executor:      executor,
		HTTPAddr:      cfg.App.HTTPAddr,
		ReplacePolicy: cfg.Trading.ReplacePolicy,
		DefaultSize:   cfg.Trading.DefaultPositionSize,
		Symbols:       cfg.Trading.Symbols,
		Journal:       journal,
		Telegram:      cfg.Notify.Telegram.Enabled,
	}
}

func (s *StartupSummary) Print() {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("%*s\n", 30+len("STARTUP SUMMARY")/2, "STARTUP SUMMARY")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("  Env:            %s\n", orDash(s.Env))
	fmt.Printf("  Executor:       %s\n", s.Executor)
	fmt.Printf("  HTTP:           %s\n", s.HTTPAddr)
	fmt.Printf("  Replace policy: %s\n", s.ReplacePolicy)
	fmt.Printf("  Default size:   %g\n", s.DefaultSize)
	fmt.Printf("  Symbols:        %s\n", formatList(s.Symbols))
	fmt.Printf("  Journal:        %s\n", s.Journal)
	fmt.Printf("  Telegram:       %t\n", s.Telegram)
	fmt.Printf("  Ladder:         %s R, trailing from T2\n", formatMultiples())
	fmt.Println(strings.Repeat("=", 60))
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "any"
	}
	return strings.Join(items, ", ")
}

func formatMultiples() string {
	parts := make([]string, 0, len(position.RiskMultiples))
	for _, rr := range position.RiskMultiples {
		parts = append(parts, fmt.Sprintf("%g", rr))
	}
	return strings.Join(parts, "/")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
