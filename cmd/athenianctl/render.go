package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Hacka25/athenian-trading/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func render(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(out, t.Render())
}

func renderUsers(users []domain.User) {
	rows := make([][]string, len(users))
	for i, u := range users {
		rows[i] = []string{u.Username, u.LongName(), u.Role}
	}
	render([]string{"Username", "Name", "Role"}, rows)
}

func renderUnits(units []domain.Unit) {
	rows := make([][]string, len(units))
	for i, u := range units {
		rows[i] = []string{u.Desc}
	}
	render([]string{"Unit"}, rows)
}

func renderAllocations(allocs []domain.HalfTrade) {
	rows := make([][]string, len(allocs))
	for i, a := range allocs {
		rows[i] = []string{a.User.Username, strconv.FormatInt(a.Amount.Amount, 10), a.Amount.Unit.Desc}
	}
	render([]string{"User", "Amount", "Unit"}, rows)
}

func renderTrades(trades []domain.Trade) {
	rows := make([][]string, len(trades))
	for i, t := range trades {
		ts := ""
		if !t.Timestamp.IsZero() {
			ts = t.Timestamp.Format(time.DateTime)
		}
		rows[i] = []string{ts, t.Buyer.Username, t.BuyerAmount.String(), t.Seller.Username, t.SellerAmount.String()}
	}
	render([]string{"Time", "Buyer", "Gives", "Seller", "Gives"}, rows)
}

// renderBalances prints one row per holding with the name shown once per
// user, the same layout the balances range gets.
func renderBalances(balances domain.Balances) {
	var rows [][]string
	for _, b := range balances {
		for i, h := range b.Holdings {
			name := ""
			if i == 0 {
				name = b.User.LongName()
			}
			rows = append(rows, []string{name, strconv.FormatInt(h.Amount, 10), h.Unit.Desc})
		}
	}
	render([]string{"Name", "Amount", "Unit"}, rows)
}
