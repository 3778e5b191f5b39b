// Package equivalence builds the curriculum comparison prompt and turns the
// analyzer's tabular answer into an AnalysisSummary.
package equivalence

import "strings"

const (
	// CertificateWeightClause is present in a prompt iff certificate text was supplied.
	CertificateWeightClause = "As certificações e cursos extras têm o mesmo peso que as disciplinas da grade do aluno para fins de equivalência."

	promptHeader = `Você é um especialista em análise curricular do Senac. Sua tarefa é comparar duas grades curriculares e identificar equivalências.

**Regras:**
1. Analise a "Grade Curricular do Aluno" e a "Grade Curricular Base".
2. Identifique as disciplinas da grade do aluno que são equivalentes às da grade base.
3. A equivalência pode ser por nome similar, ementa, carga horária compatível ou conteúdo relacionado.
4. Liste APENAS as disciplinas da grade do aluno que podem ser eliminadas por equivalência.
5. Se uma disciplina não tiver equivalência clara, marque-a como "Não Equivalente".
6. Apresente o resultado em formato CSV, uma disciplina por linha, com exatamente quatro colunas: "Disciplina", "Status", "Equivalente a", "Carga Horária".
7. Use "Equivalente" para disciplinas que podem ser eliminadas e "Não Equivalente" ou "Pendente" para as que precisam ser cursadas.
8. Inclua a carga horária no formato "XXh" (ex: "40h", "60h").`

	certificateRules = `

**Regra especial - Certificações e Cursos Extras:**
9. Considere também as certificações e cursos extras do aluno na análise de equivalência.
10. Se houver disciplinas na grade base similares ou equivalentes aos cursos extras e certificações apresentados, marque-as como equivalentes.
11. ` + CertificateWeightClause

	certificateReminder = `

**IMPORTANTE:** As certificações e cursos extras devem ser considerados na análise de equivalência.`

	resultMarker = `

**Resultado da Análise de Equivalência:**
`
)

// BuildPrompt assembles the analyzer instruction from the extracted texts.
// The certificate rules and block are added only when certificateText is not
// blank.
func BuildPrompt(studentText, baseText, certificateText string) string {
	hasCertificates := strings.TrimSpace(certificateText) != ""

	var b strings.Builder
	b.WriteString(promptHeader)
	if hasCertificates {
		b.WriteString(certificateRules)
	}

	writeBlock(&b, "Grade Curricular do Aluno", studentText)
	writeBlock(&b, "Grade Curricular Base", baseText)
	if hasCertificates {
		writeBlock(&b, "Certificações e Cursos Extras do Aluno", certificateText)
		b.WriteString(certificateReminder)
	}

	b.WriteString(resultMarker)
	return b.String()
}

func writeBlock(b *strings.Builder, label, text string) {
	b.WriteString("\n\n**")
	b.WriteString(label)
	b.WriteString(":**\n---\n")
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\n---")
}
