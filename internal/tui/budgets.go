package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/client"
	"github.com/simonvc/pocketledger/internal/ledger"
)

const barWidth = 20

type budgetsLoadedMsg struct {
	budgets    []ledger.BudgetStatus
	categories map[string]string
	err        error
}

type budgetDeleteConfirmedMsg struct {
	id string
}

type budgetDeletedMsg struct {
	id  string
	err error
}

type budgetsReconciledMsg struct {
	count int
	err   error
}

type budgetListModel struct {
	budgets        []ledger.BudgetStatus
	categories     map[string]string // id -> name
	cursor         int
	loading        bool
	err            error
	width          int
	height         int
	confirmDelete  bool
	deleteTargetID string
}

func (m *budgetListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		budgets, err := c.ListBudgets(context.Background())
		if err != nil {
			return budgetsLoadedMsg{err: err}
		}
		names := make(map[string]string)
		if cats, err := c.ListCategories(context.Background()); err == nil {
			for _, cat := range cats {
				names[cat.ID] = cat.Name
			}
		}
		return budgetsLoadedMsg{budgets: budgets, categories: names}
	}
}

func reconcile(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		budgets, err := c.ReconcileBudgets(context.Background())
		return budgetsReconciledMsg{count: len(budgets), err: err}
	}
}

func (m budgetListModel) update(msg tea.Msg) (budgetListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case budgetsLoadedMsg:
		m.loading = false
		m.budgets = msg.budgets
		m.categories = msg.categories
		m.err = msg.err
		if m.cursor >= len(m.budgets) {
			m.cursor = max(len(m.budgets)-1, 0)
		}

	case budgetDeletedMsg:
		m.confirmDelete = false
		m.deleteTargetID = ""
		if msg.err != nil {
			m.err = msg.err
		}

	case tea.KeyMsg:
		if m.confirmDelete {
			switch msg.String() {
			case "y", "Y":
				id := m.deleteTargetID
				m.confirmDelete = false
				return m, func() tea.Msg {
					return budgetDeleteConfirmedMsg{id: id}
				}
			default:
				m.confirmDelete = false
				m.deleteTargetID = ""
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.budgets)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Delete):
			if id := m.selectedID(); id != "" {
				m.confirmDelete = true
				m.deleteTargetID = id
				m.err = nil
			}
		}
	}
	return m, nil
}

func (m *budgetListModel) selectedID() string {
	if m.cursor >= 0 && m.cursor < len(m.budgets) {
		return m.budgets[m.cursor].ID
	}
	return ""
}

func (m *budgetListModel) categoryName(id string) string {
	if name, ok := m.categories[id]; ok {
		return name
	}
	return id
}

// bar renders spent/limit as a fixed-width gauge, capped at full.
func bar(pct decimal.Decimal) string {
	filled := int(pct.Mul(decimal.NewFromInt(barWidth)).Div(decimal.NewFromInt(100)).IntPart())
	filled = min(max(filled, 0), barWidth)
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func budgetStyle(b ledger.BudgetStatus) func(...string) string {
	switch {
	case b.SpentAmount.GreaterThan(b.Amount):
		return expenseStyle.Render
	case b.PercentageUsed.GreaterThanOrEqual(decimal.NewFromInt(80)):
		return warningStyle.Render
	default:
		return incomeStyle.Render
	}
}

func (m *budgetListModel) view() string {
	if m.loading {
		return "Loading budgets..."
	}
	if m.err != nil && len(m.budgets) == 0 {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if len(m.budgets) == 0 {
		return dimStyle.Render("No budgets yet. Create one with `pocketledger budget create`.")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Budgets"))
	b.WriteString("\n")

	header := fmt.Sprintf("  %-18s %-23s %12s %12s %-*s %7s", "CATEGORY", "WINDOW", "SPENT", "LIMIT", barWidth, "", "USED")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxRows := m.height - 4
	if maxRows < 1 {
		maxRows = 10
	}

	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}

	for i := start; i < len(m.budgets) && i < start+maxRows; i++ {
		bs := m.budgets[i]
		name := clip(m.categoryName(bs.CategoryID), 18)

		line := fmt.Sprintf("  %-18s %-23s %12s %12s %s %6s%%",
			name,
			bs.StartDate.String()+".."+bs.EndDate.String(),
			bs.SpentAmount.StringFixed(2),
			bs.Amount.StringFixed(2),
			bar(bs.PercentageUsed),
			bs.PercentageUsed.StringFixed(1),
		)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line[2:]))
		} else {
			b.WriteString(budgetStyle(bs)(line))
		}
		b.WriteString("\n")
	}

	switch {
	case m.confirmDelete:
		b.WriteString("\n" + errorStyle.Render("  Delete this budget? (y/n)"))
	case m.err != nil:
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()))
	default:
		b.WriteString(fmt.Sprintf("\n  %d budgets", len(m.budgets)))
	}
	return b.String()
}
