package equivalence

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/noah-isme/equivalence-api/internal/models"
)

// Notes emitted by Parse.
const (
	NoAnalysisNote     = "Nenhuma análise disponível."
	NoEquivalencesNote = "Nenhuma equivalência foi identificada. Verifique os documentos enviados."
	equivalentNoteFmt  = "Foram identificadas %d disciplina(s) equivalente(s) que podem ser eliminadas."
	pendingNoteFmt     = "Existem %d disciplina(s) pendente(s) que precisam ser cursadas."
	codeFence          = "```"
	fieldQuoteCutset   = `"`
)

var (
	headerMarkers  = []string{"disciplina", "carga"}
	fieldSeparator = regexp.MustCompile(`[,;]`)
	workloadHours  = regexp.MustCompile(`(?i)(\d+)h`)
)

// Parse converts raw analyzer output into a summary. It never fails: rows it
// cannot understand are either kept as pending or dropped.
func Parse(raw string) models.AnalysisSummary {
	summary := models.AnalysisSummary{
		EquivalentSubjects: []models.SubjectRecord{},
		PendingSubjects:    []models.SubjectRecord{},
		RawContent:         raw,
	}
	if strings.TrimSpace(raw) == "" {
		summary.Notes = NoAnalysisNote
		return summary
	}

	for _, line := range strings.Split(raw, "\n") {
		record, ok := parseLine(line)
		if !ok {
			continue
		}
		if record.NeedsReview {
			summary.ReviewCount++
		}
		if record.Status == models.SubjectStatusEquivalent {
			summary.EquivalentSubjects = append(summary.EquivalentSubjects, record)
			summary.TotalWorkloadHours += record.Workload
			continue
		}
		summary.PendingSubjects = append(summary.PendingSubjects, record)
	}

	summary.EquivalentCount = len(summary.EquivalentSubjects)
	summary.PendingCount = len(summary.PendingSubjects)
	summary.Notes = buildNotes(summary.EquivalentCount, summary.PendingCount)
	return summary
}

func parseLine(line string) (models.SubjectRecord, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, codeFence) || isHeader(line) {
		return models.SubjectRecord{}, false
	}

	fields := splitFields(line)
	switch {
	case len(fields) >= 2:
		status, needsReview := Classify(fields[1])
		record := models.SubjectRecord{
			Name:        fields[0],
			Workload:    extractWorkload(fields),
			Status:      status,
			NeedsReview: needsReview,
		}
		if len(fields) > 2 && fields[2] != "" {
			ref := fields[2]
			record.EquivalentTo = &ref
		}
		return record, true
	case len(fields) == 1 && fields[0] != "":
		return models.SubjectRecord{
			Name:        fields[0],
			Status:      models.SubjectStatusPending,
			NeedsReview: true,
		}, true
	default:
		return models.SubjectRecord{}, false
	}
}

func isHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range headerMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// splitFields splits on comma or semicolon. A line whose fields are all empty
// (e.g. ",;,") yields nothing.
func splitFields(line string) []string {
	parts := fieldSeparator.Split(line, -1)
	fields := make([]string, len(parts))
	nonEmpty := 0
	for i, part := range parts {
		fields[i] = strings.TrimSpace(strings.Trim(strings.TrimSpace(part), fieldQuoteCutset))
		if fields[i] != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return nil
	}
	if len(fields) >= 2 && fields[0] == "" {
		return nil
	}
	return fields
}

func extractWorkload(fields []string) int {
	for _, field := range fields {
		match := workloadHours.FindStringSubmatch(field)
		if match == nil {
			continue
		}
		hours, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		return hours
	}
	return 0
}

func buildNotes(equivalent, pending int) string {
	if equivalent == 0 && pending == 0 {
		return NoEquivalencesNote
	}
	notes := make([]string, 0, 2)
	if equivalent > 0 {
		notes = append(notes, fmt.Sprintf(equivalentNoteFmt, equivalent))
	}
	if pending > 0 {
		notes = append(notes, fmt.Sprintf(pendingNoteFmt, pending))
	}
	return strings.Join(notes, " ")
}
