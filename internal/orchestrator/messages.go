package orchestrator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/portugo/pkg/diag"
)

// IssuesURL is where users report untranslated runtime messages.
const IssuesURL = "https://github.com/leapstack-labs/portugo/issues"

// legacyKeywords close blocks in the older Portugol dialect.
var legacyKeywords = []string{
	"fimse",
	"fimenquanto",
	"fimpara",
	"fimfuncao",
	"fimprograma",
	"fimescolha",
}

const (
	legacyNotice = "Parece que este código usa a sintaxe antiga do Portugol " +
		"(fimse, fimenquanto, fimpara...). Essa sintaxe não é suportada: " +
		"use chaves { } para delimitar os blocos."

	runtimeNotice = "O programa será executado mesmo assim. As mensagens de erro " +
		"exibidas durante a execução podem não estar traduzidas; se encontrar " +
		"alguma, relate em " + IssuesURL + "."

	startMarker  = "▶ Iniciando o programa..."
	failureLine  = "⛔ Não foi possível executar o código."
	finishFormat = "✅ Programa finalizado. Tempo de execução: %s ms"
	errorFormat  = "⛔ Erro: %s"
)

var bannerStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1).
	Width(64)

// usesLegacyDialect reports whether code contains a legacy block keyword.
func usesLegacyDialect(code string) bool {
	lower := strings.ToLower(code)
	for _, kw := range legacyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func legacyBanner() string {
	return bannerStyle.Render(legacyNotice) + "\n"
}

func countLine(n int) string {
	if n == 1 {
		return "⚠️ Foi encontrado 1 erro no código:"
	}
	return fmt.Sprintf("⚠️ Foram encontrados %d erros no código:", n)
}

// warningText renders everything shown before a program with semantic
// diagnostics starts.
func warningText(code string, diags []diag.Diagnostic) string {
	legacy := usesLegacyDialect(code)

	var b strings.Builder
	if legacy {
		b.WriteString(legacyBanner())
	}
	b.WriteString(countLine(len(diags)))
	b.WriteByte('\n')
	for _, d := range diags {
		b.WriteString("  ")
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(runtimeNotice)
	b.WriteString("\n\n")
	if legacy {
		b.WriteString(legacyBanner())
	}
	b.WriteString(startMarker)
	b.WriteByte('\n')
	return b.String()
}

func finishText(ms float64) string {
	return fmt.Sprintf(finishFormat, strconv.FormatFloat(ms, 'f', -1, 64))
}

func errorText(message string) string {
	return fmt.Sprintf(errorFormat, message)
}

// asLine returns text as a complete line following transcript.
func asLine(transcript, text string) string {
	if transcript != "" && !strings.HasSuffix(transcript, "\n") {
		return "\n" + text + "\n"
	}
	return text + "\n"
}
