// Package report renders an evaluated case as a readable protocol: case
// summary, critical alerts, recommendations and the phased checklist.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/rif-protocol-server/internal/domain"
)

// Format selects the rendering style.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat accepts "markdown"/"md" and "text"/"txt".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt", "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

const notInformed = "Não informado"

// Render writes the report for the patient and evaluation to w.
func Render(w io.Writer, patient domain.PatientInfo, eval *domain.Evaluation, format Format) error {
	_, err := io.WriteString(w, String(patient, eval, format))
	return err
}

// String returns the rendered report.
func String(patient domain.PatientInfo, eval *domain.Evaluation, format Format) string {
	r := renderer{markdown: format == FormatMarkdown}
	r.summary(patient)
	if eval != nil {
		r.numbered("ALERTAS CRÍTICOS - AÇÃO OBRIGATÓRIA", eval.CriticalAlerts)
		r.numbered("RECOMENDAÇÕES PRIORITÁRIAS", eval.Recommendations)
		r.plan(eval.Plan)
	}
	return r.b.String()
}

type renderer struct {
	b        strings.Builder
	markdown bool
}

func (r *renderer) heading(level int, title string) {
	if r.markdown {
		fmt.Fprintf(&r.b, "%s %s\n\n", strings.Repeat("#", level), title)
		return
	}
	fmt.Fprintf(&r.b, "%s\n", title)
	underline := "-"
	if level <= 2 {
		underline = "="
	}
	fmt.Fprintf(&r.b, "%s\n\n", strings.Repeat(underline, len([]rune(title))))
}

func (r *renderer) summary(p domain.PatientInfo) {
	r.heading(2, "Resumo do Caso")

	name := p.Name
	if name == "" {
		name = notInformed
	}
	fields := [][2]string{
		{"Paciente", name},
		{"Idade", fmt.Sprintf("%d anos", p.Age)},
		{"Número de falhas", fmt.Sprintf("%d", p.FailureCount)},
		{"IMC", fmt.Sprintf("%.1f kg/m²", p.BMI)},
		{"Tipo de embriões", p.EmbryoType.Label()},
		{"Qualidade", p.EmbryoQuality.Label()},
	}
	for _, f := range fields {
		if r.markdown {
			fmt.Fprintf(&r.b, "**%s**: %s  \n", f[0], f[1])
		} else {
			fmt.Fprintf(&r.b, "%s: %s\n", f[0], f[1])
		}
	}
	r.b.WriteString("\n")
}

func (r *renderer) numbered(title string, items []string) {
	if len(items) == 0 {
		return
	}
	r.heading(2, title)
	for i, it := range items {
		if r.markdown {
			fmt.Fprintf(&r.b, "**%d.** %s\n", i+1, it)
		} else {
			fmt.Fprintf(&r.b, "%d. %s\n", i+1, it)
		}
	}
	r.b.WriteString("\n")
}

func (r *renderer) plan(plan domain.PhasedPlan) {
	r.heading(2, "PROTOCOLO PASSO A PASSO PARA O PRÓXIMO CICLO")
	for _, phase := range plan.Phases {
		r.heading(3, phase.Title)
		section := ""
		for _, it := range phase.Items {
			if it.Section != section {
				if section != "" {
					r.b.WriteString("\n")
				}
				section = it.Section
				if r.markdown {
					fmt.Fprintf(&r.b, "**%s:**\n", section)
				} else {
					fmt.Fprintf(&r.b, "%s:\n", section)
				}
			}
			if r.markdown {
				fmt.Fprintf(&r.b, "- [ ] %s\n", it.Text)
			} else {
				fmt.Fprintf(&r.b, "  [ ] %s\n", it.Text)
			}
		}
		r.b.WriteString("\n")
	}
}
