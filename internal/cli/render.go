package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joseph-ayodele/fieldops/internal/entity"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(34)

	amountStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Width(12).
			Align(lipgloss.Right)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	totalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true).
			Width(12).
			Align(lipgloss.Right)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func amountRow(label string, v float64, detail string) string {
	row := lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), amountStyle.Render(money(v)))
	if detail != "" {
		row += "  " + detailStyle.Render(detail)
	}
	return row
}

// renderBreakdown lays out an estimate breakdown as a boxed table.
func renderBreakdown(title string, b entity.EstimateBreakdown) string {
	var rows []string
	for _, m := range b.Materials {
		detail := fmt.Sprintf("%g %s @ %s", m.Quantity, m.Unit, money(m.UnitPrice))
		if m.Gallons != nil {
			detail += fmt.Sprintf(" (%g gal mixed)", *m.Gallons)
		}
		rows = append(rows, amountRow(m.Name, m.Cost, detail))
	}
	rows = append(rows,
		"",
		amountRow("Materials", b.MaterialsCost, ""),
		amountRow("Labor", b.Labor.Cost, fmt.Sprintf("%g h @ %s", b.Labor.Hours, money(b.Labor.Rate))),
		amountRow("Equipment", b.Equipment.EquipmentCost, ""),
		amountRow("Fuel", b.Equipment.FuelCost, ""),
		amountRow("Travel", b.Travel.Cost, fmt.Sprintf("%g mi each way", b.Travel.Distance)),
		"",
		amountRow("Subtotal", b.Subtotal, ""),
		amountRow("Overhead", b.Overhead, ""),
		amountRow("Profit", b.Profit, ""),
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Total"), totalStyle.Render(money(b.Total))),
	)
	body := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), strings.Join(rows, "\n"))
	return boxStyle.Render(body)
}
