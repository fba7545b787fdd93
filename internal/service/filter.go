package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
)

const (
	FilterAll   = "all"
	VerdictPass = "pass"
	VerdictFail = "fail"
	RangeToday  = "today"
	RangeWeek   = "week"
)

// HistoryFilter selects nodes for browsing. Empty fields match everything.
type HistoryFilter struct {
	Search  string
	Zone    string
	Verdict string
	Range   string
}

// Validate rejects unknown filter values.
func (f HistoryFilter) Validate() error {
	if f.Zone != "" && f.Zone != FilterAll && !domain.ValidTensionZone(f.Zone) {
		return fmt.Errorf("invalid zone %q", f.Zone)
	}
	switch f.Verdict {
	case "", FilterAll, VerdictPass, VerdictFail:
	default:
		return fmt.Errorf("invalid verdict %q", f.Verdict)
	}
	switch f.Range {
	case "", FilterAll, RangeToday, RangeWeek:
	default:
		return fmt.Errorf("invalid range %q", f.Range)
	}
	return nil
}

// FilterHistory returns the nodes matching f, in order. now anchors the
// date ranges.
func FilterHistory(nodes []domain.SoulStateNode, f HistoryFilter, now time.Time) []domain.SoulStateNode {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.SoulStateNode, 0, len(nodes))
	for _, n := range nodes {
		if search != "" &&
			!strings.Contains(strings.ToLower(n.Input), search) &&
			!strings.Contains(strings.ToLower(n.Deliberation.FinalSynthesis.ResponseText), search) {
			continue
		}
		if f.Zone != "" && f.Zone != FilterAll &&
			domain.ZoneFor(n.Deliberation.EntropyMeter.Value) != domain.TensionZone(f.Zone) {
			continue
		}
		if !matchVerdict(n, f.Verdict) || !matchRange(n, f.Range, now) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func matchVerdict(n domain.SoulStateNode, verdict string) bool {
	var audit domain.Audit
	if n.Deliberation.Audit != nil {
		audit = *n.Deliberation.Audit
	}
	switch verdict {
	case VerdictPass:
		return audit.Passed()
	case VerdictFail:
		return audit.Failed()
	}
	return true
}

func matchRange(n domain.SoulStateNode, r string, now time.Time) bool {
	t := n.Time().In(now.Location())
	switch r {
	case RangeToday:
		y1, m1, d1 := t.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case RangeWeek:
		return now.Sub(t) < 7*24*time.Hour
	}
	return true
}

// TensionPoint is one chart sample.
type TensionPoint struct {
	Index int                `json:"index"`
	Value float64            `json:"value"`
	Label string             `json:"label"`
	Zone  domain.TensionZone `json:"zone"`
}

// TensionSeries returns the tension of every non-error node, numbered from 1.
func TensionSeries(nodes []domain.SoulStateNode) []TensionPoint {
	out := make([]TensionPoint, 0, len(nodes))
	for _, n := range nodes {
		if n.IsError {
			continue
		}
		i := len(out) + 1
		v := n.Deliberation.EntropyMeter.Value
		out = append(out, TensionPoint{
			Index: i,
			Value: v,
			Label: fmt.Sprintf("Node %d", i),
			Zone:  domain.ZoneFor(v),
		})
	}
	return out
}
