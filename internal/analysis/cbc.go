package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	Hemoglobin = "Hemoglobin"
	Hematocrit = "Hematocrit"
	RBCCount   = "RBC count"
	MCV        = "MCV"
	MCH        = "MCH"
)

// promptParameters lists the extracted parameters with the aliases labs print.
var promptParameters = []string{
	"Hemoglobin (HGB or Hb)",
	"Hematocrit (HCT)",
	"Red Blood Cell (RBC) count",
	"Mean Corpuscular Volume (MCV)",
	"Mean Corpuscular Hemoglobin (MCH)",
}

type imageClass int

const (
	classValid imageClass = iota
	classNotReport
	classUnreadable
)

// classifySummary detects the two invalid-image outcomes. Wording about the
// whole image always counts; a lone "unclear" or "blurry" only counts when no
// parameter could be extracted, since it may describe a single value.
func classifySummary(summary string, extracted int) imageClass {
	s := strings.ToLower(strings.TrimSpace(summary))
	switch {
	case s == strings.ToLower(SummaryNotReport),
		strings.Contains(s, "not appear to be a valid"),
		strings.Contains(s, "not a valid cbc"),
		strings.Contains(s, "not a cbc"):
		return classNotReport
	case s == strings.ToLower(SummaryUnreadable),
		strings.Contains(s, "too blurry"),
		strings.Contains(s, "too unclear"),
		strings.Contains(s, "blurry or unclear"):
		return classUnreadable
	case extracted > 0:
		return classValid
	case strings.Contains(s, "blurry"),
		strings.Contains(s, "unclear"),
		strings.Contains(s, "unreadable"),
		strings.Contains(s, "illegible"):
		return classUnreadable
	}
	return classValid
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// canonicalParameter maps a printed parameter label to one of the five
// extracted names. MCHC and anything else unrecognized is rejected.
func canonicalParameter(label string) (string, bool) {
	words := strings.Fields(nonAlnum.ReplaceAllString(strings.ToLower(label), " "))
	has := make(map[string]bool, len(words))
	for _, w := range words {
		has[w] = true
	}
	hemoglobin := has["hemoglobin"] || has["haemoglobin"]

	switch {
	case has["mchc"] || (has["corpuscular"] && has["concentration"]):
		return "", false
	case has["mch"] || (has["corpuscular"] && hemoglobin):
		return MCH, true
	case has["mcv"] || (has["corpuscular"] && has["volume"]):
		return MCV, true
	case has["hgb"] || has["hb"] || hemoglobin:
		return Hemoglobin, true
	case has["hct"] || has["pcv"] || has["hematocrit"] || has["haematocrit"]:
		return Hematocrit, true
	case has["rbc"] || has["erythrocytes"] || has["erythrocyte"] || (has["red"] && (has["cell"] || has["cells"])):
		return RBCCount, true
	}
	return "", false
}

var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

func parseNumber(s string) (float64, bool) {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

type bounds struct {
	lo, hi         *float64
	loIncl, hiIncl bool
}

var (
	intervalPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:-|–|—|to)\s*(\d+(?:[.,]\d+)?)`)
	limitPattern    = regexp.MustCompile(`(<=|>=|≤|≥|<|>)\s*(\d+(?:[.,]\d+)?)`)
)

// parseRange understands "12-16", "12 – 16", "12.0 to 16.0", "< 5", ">= 150".
func parseRange(s string) (bounds, bool) {
	if m := intervalPattern.FindStringSubmatch(s); m != nil {
		lo, ok1 := parseNumber(m[1])
		hi, ok2 := parseNumber(m[2])
		if !ok1 || !ok2 || lo > hi {
			return bounds{}, false
		}
		return bounds{lo: &lo, hi: &hi, loIncl: true, hiIncl: true}, true
	}
	if m := limitPattern.FindStringSubmatch(s); m != nil {
		v, ok := parseNumber(m[2])
		if !ok {
			return bounds{}, false
		}
		switch m[1] {
		case "<":
			return bounds{hi: &v}, true
		case "<=", "≤":
			return bounds{hi: &v, hiIncl: true}, true
		case ">":
			return bounds{lo: &v}, true
		case ">=", "≥":
			return bounds{lo: &v, loIncl: true}, true
		}
	}
	return bounds{}, false
}

func (b bounds) below(v float64) bool {
	if b.lo == nil {
		return false
	}
	if b.loIncl {
		return v < *b.lo
	}
	return v <= *b.lo
}

func (b bounds) above(v float64) bool {
	if b.hi == nil {
		return false
	}
	if b.hiIncl {
		return v > *b.hi
	}
	return v >= *b.hi
}

func (b bounds) contains(v float64) bool {
	return !b.below(v) && !b.above(v)
}

// normalizeReport enforces the report invariants on raw model output:
// invalid images carry no parameters, isNormal follows each parameter's own
// printed range, and the summary follows the fixed decision rule.
func normalizeReport(out cbcReportOutput) CbcReport {
	extracted := 0
	for _, raw := range out.Parameters {
		if _, ok := canonicalParameter(raw.Parameter); ok {
			extracted++
		}
	}

	switch classifySummary(out.Summary, extracted) {
	case classNotReport:
		return CbcReport{Summary: SummaryNotReport, Parameters: []CbcParameter{}}
	case classUnreadable:
		return CbcReport{Summary: SummaryUnreadable, Parameters: []CbcParameter{}}
	}

	report := CbcReport{Summary: out.Summary, Parameters: []CbcParameter{}}
	seen := make(map[string]bool)
	anemic := false
	allNormal := true

	for _, raw := range out.Parameters {
		name, ok := canonicalParameter(raw.Parameter)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true

		p := CbcParameter{
			Parameter: name,
			Value:     strings.TrimSpace(raw.Value),
			Unit:      strings.TrimSpace(raw.Unit),
			Range:     strings.TrimSpace(raw.Range),
			IsNormal:  *raw.IsNormal,
		}

		low := !p.IsNormal
		if v, ok := parseNumber(p.Value); ok {
			if b, ok := parseRange(p.Range); ok {
				p.IsNormal = b.contains(v)
				low = b.below(v)
			}
		}

		if !p.IsNormal {
			allNormal = false
		}
		if low && (name == Hemoglobin || name == Hematocrit) {
			anemic = true
		}
		report.Parameters = append(report.Parameters, p)
	}

	switch {
	case anemic:
		report.Summary = SummaryAnemia
	case allNormal && len(report.Parameters) > 0:
		report.Summary = SummaryNormal
	}
	return report
}
