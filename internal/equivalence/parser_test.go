package equivalence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/equivalence-api/internal/models"
)

func assertConsistentSummary(t *testing.T, s models.AnalysisSummary) {
	t.Helper()
	assert.Equal(t, len(s.EquivalentSubjects), s.EquivalentCount)
	assert.Equal(t, len(s.PendingSubjects), s.PendingCount)
	total := 0
	for _, subject := range s.EquivalentSubjects {
		total += subject.Workload
		assert.Equal(t, models.SubjectStatusEquivalent, subject.Status)
	}
	for _, subject := range s.PendingSubjects {
		assert.Equal(t, models.SubjectStatusPending, subject.Status)
	}
	assert.Equal(t, total, s.TotalWorkloadHours)
}

func TestParseEmpty(t *testing.T) {
	for _, raw := range []string{"", "   \n\t\n"} {
		s := Parse(raw)
		assert.Zero(t, s.EquivalentCount)
		assert.Zero(t, s.PendingCount)
		assert.Zero(t, s.TotalWorkloadHours)
		assert.Empty(t, s.EquivalentSubjects)
		assert.Empty(t, s.PendingSubjects)
		assert.NotNil(t, s.EquivalentSubjects)
		assert.Equal(t, NoAnalysisNote, s.Notes)
		assert.Equal(t, raw, s.RawContent)
	}
}

func TestParseEquivalentLine(t *testing.T) {
	s := Parse("Matemática,Equivalente,Cálculo I,40h")

	require.Len(t, s.EquivalentSubjects, 1)
	subject := s.EquivalentSubjects[0]
	assert.Equal(t, "Matemática", subject.Name)
	assert.Equal(t, 40, subject.Workload)
	require.NotNil(t, subject.EquivalentTo)
	assert.Equal(t, "Cálculo I", *subject.EquivalentTo)
	assert.Equal(t, models.SubjectStatusEquivalent, subject.Status)
	assert.False(t, subject.NeedsReview)
	assert.Equal(t, 40, s.TotalWorkloadHours)
	assertConsistentSummary(t, s)
}

func TestParsePendingLine(t *testing.T) {
	s := Parse("História,Pendente")

	require.Len(t, s.PendingSubjects, 1)
	subject := s.PendingSubjects[0]
	assert.Equal(t, "História", subject.Name)
	assert.Zero(t, subject.Workload)
	assert.Nil(t, subject.EquivalentTo)
	assert.Equal(t, models.SubjectStatusPending, subject.Status)
	assert.Zero(t, s.TotalWorkloadHours)
	assertConsistentSummary(t, s)
}

func TestParseSkipsHeadersAndFences(t *testing.T) {
	raw := strings.Join([]string{
		"```csv",
		`"Disciplina","Status","Equivalente a","Carga Horária"`,
		`"Algoritmos";"Equivalente";"Lógica de Programação";"80h"`,
		"Física,Não Equivalente,,60h",
		"```",
	}, "\n")

	s := Parse(raw)

	require.Len(t, s.EquivalentSubjects, 1)
	require.Len(t, s.PendingSubjects, 1)
	assert.Equal(t, "Algoritmos", s.EquivalentSubjects[0].Name)
	assert.Equal(t, "Lógica de Programação", *s.EquivalentSubjects[0].EquivalentTo)
	assert.Equal(t, "Física", s.PendingSubjects[0].Name)
	assert.Nil(t, s.PendingSubjects[0].EquivalentTo)
	assert.Equal(t, 60, s.PendingSubjects[0].Workload)
	assert.Equal(t, 80, s.TotalWorkloadHours)
	for _, subject := range append(s.EquivalentSubjects, s.PendingSubjects...) {
		assert.NotContains(t, strings.ToLower(subject.Name), "disciplina")
	}
	assertConsistentSummary(t, s)
}

func TestParseWorkloadOnlyCountsEquivalent(t *testing.T) {
	raw := "Química;Sim;Química Geral;30H\r\nBiologia;Pendente;;45h\r\nArtes;talvez;;20h\r\n"

	s := Parse(raw)

	assert.Equal(t, 1, s.EquivalentCount)
	assert.Equal(t, 2, s.PendingCount)
	assert.Equal(t, 30, s.TotalWorkloadHours)
	assert.Equal(t, 1, s.ReviewCount)
	assert.True(t, s.PendingSubjects[1].NeedsReview)
	assertConsistentSummary(t, s)
}

func TestParseSingleFieldAndUnusableLines(t *testing.T) {
	s := Parse("Sociologia\n,;,\n  ;  \n")

	require.Len(t, s.PendingSubjects, 1)
	assert.Equal(t, "Sociologia", s.PendingSubjects[0].Name)
	assert.True(t, s.PendingSubjects[0].NeedsReview)
	assert.Zero(t, s.PendingSubjects[0].Workload)
	assertConsistentSummary(t, s)
}

func TestParseWorkloadScansAllFields(t *testing.T) {
	s := Parse("Redes,Equivalente,Redes I (72h),60h")

	require.Len(t, s.EquivalentSubjects, 1)
	assert.Equal(t, 72, s.EquivalentSubjects[0].Workload)
}

func TestParseWorkloadRequiresAdjacentUnit(t *testing.T) {
	s := Parse("Redes,Equivalente,Redes I,60 horas")

	require.Len(t, s.EquivalentSubjects, 1)
	assert.Zero(t, s.EquivalentSubjects[0].Workload)
}

func TestParseNotes(t *testing.T) {
	s := Parse("A,Equivalente,B,10h\nC,Pendente")
	assert.Equal(t,
		"Foram identificadas 1 disciplina(s) equivalente(s) que podem ser eliminadas. Existem 1 disciplina(s) pendente(s) que precisam ser cursadas.",
		s.Notes)

	onlyHeaders := Parse("Disciplina,Status,Equivalente a,Carga Horária")
	assert.Equal(t, NoEquivalencesNote, onlyHeaders.Notes)
	assert.Zero(t, onlyHeaders.EquivalentCount+onlyHeaders.PendingCount)
}

func TestParseArbitraryInputStaysConsistent(t *testing.T) {
	inputs := []string{
		"|a|b|c|\n|---|---|---|",
		";;;;\n,,,,\n",
		"x,sim,y,99999999999999999999h",
		"Lorem ipsum dolor sit amet",
		"\x00\x01,\xff,equivalente",
		"Ética;SIM;Filosofia;40h;extra;20h",
	}
	for _, raw := range inputs {
		require.NotPanics(t, func() {
			s := Parse(raw)
			assertConsistentSummary(t, s)
			assert.Equal(t, raw, s.RawContent)
		})
	}
}
