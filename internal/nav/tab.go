package nav

import (
	"fmt"
	"strings"
)

// Tab is one of the fixed top-level sections.
type Tab int

const (
	Dashboard Tab = iota
	Evaluation
	Pillars
	Comparables
	Valuation
	Reports
	Settings
)

// DefaultTab is where a fresh navigator starts and where GoBack lands if the
// history ever runs dry.
const DefaultTab = Dashboard

// TabInfo is the immutable metadata of a tab.
type TabInfo struct {
	ID          string
	Title       string
	ShortTitle  string
	Icon        string
	Description string
	Hotkey      rune
}

var tabInfo = [...]TabInfo{
	Dashboard:   {ID: "dashboard", Title: "Dashboard", ShortTitle: "Home", Icon: "◈", Description: "Portfolio summary and pipeline activity", Hotkey: '1'},
	Evaluation:  {ID: "evaluation", Title: "Company Evaluation", ShortTitle: "Evaluate", Icon: "✎", Description: "Step-by-step evaluation of a company", Hotkey: '2'},
	Pillars:     {ID: "pillars", Title: "Scoring Pillars", ShortTitle: "Pillars", Icon: "▦", Description: "The dimensions every company is scored on", Hotkey: '3'},
	Comparables: {ID: "comparables", Title: "Comparables Database", ShortTitle: "Comps", Icon: "≋", Description: "Tracked companies side by side", Hotkey: '4'},
	Valuation:   {ID: "valuation", Title: "Valuation Engine", ShortTitle: "Value", Icon: "$", Description: "Scenario-weighted valuation", Hotkey: '5'},
	Reports:     {ID: "reports", Title: "Reports", ShortTitle: "Reports", Icon: "▤", Description: "Completed evaluations", Hotkey: '6'},
	Settings:    {ID: "settings", Title: "Settings", ShortTitle: "Settings", Icon: "⚙", Description: "Preferences and data maintenance", Hotkey: '7'},
}

// AllTabs returns every tab in display order.
func AllTabs() []Tab {
	out := make([]Tab, len(tabInfo))
	for i := range tabInfo {
		out[i] = Tab(i)
	}
	return out
}

func (t Tab) Valid() bool { return t >= 0 && int(t) < len(tabInfo) }

// Info returns the tab metadata; invalid tabs get an empty TabInfo.
func (t Tab) Info() TabInfo {
	if !t.Valid() {
		return TabInfo{}
	}
	return tabInfo[t]
}

func (t Tab) ID() string { return t.Info().ID }

func (t Tab) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tab(%d)", int(t))
	}
	return tabInfo[t].ID
}

// ParseTab accepts a tab id, title or hotkey digit, case-insensitively.
func ParseTab(s string) (Tab, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, info := range tabInfo {
		if s == info.ID || s == strings.ToLower(info.Title) || s == strings.ToLower(info.ShortTitle) || s == string(info.Hotkey) {
			return Tab(i), nil
		}
	}
	return DefaultTab, fmt.Errorf("unknown tab %q", s)
}

// TabForHotkey maps a hotkey rune to its tab.
func TabForHotkey(r rune) (Tab, bool) {
	for i, info := range tabInfo {
		if info.Hotkey == r {
			return Tab(i), true
		}
	}
	return 0, false
}
