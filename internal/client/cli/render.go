package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/dealwatch/internal/client/models"
	"github.com/shopspring/decimal"
)

const (
	timeLayout  = "2006-01-02 15:04:05"
	shortLayout = "2006-01-02 15:04"

	listFormat = "%-7s %-12s %-10s %-19s %-24s %-24s %s\n"
)

// coinInfo returns the display symbol and decimals of a coin type.
func coinInfo(coinType string) (string, int32) {
	parts := strings.Split(models.TypeTagBase(coinType), "::")
	if len(parts) != 3 {
		return "", 0
	}
	if parts[1] == "sui" && parts[2] == "SUI" && models.SameAddress(parts[0], "0x2") {
		return "SUI", 9
	}
	return parts[2], 0
}

func formatAmount(amount decimal.Decimal, coinType string) string {
	symbol, decimals := coinInfo(coinType)
	if decimals > 0 {
		amount = amount.Shift(-decimals)
	}
	if symbol == "" {
		return amount.String()
	}
	return amount.String() + " " + symbol
}

func requested(d models.Deal, t *models.SwapTerms) string {
	if t.RequestedObjectID != "" {
		return "object " + models.ShortAddress(t.RequestedObjectID)
	}
	return formatAmount(t.RequestedAmount, d.CounterType())
}

func termsSummary(d models.Deal) string {
	switch t := d.Terms.(type) {
	case *models.EscrowTerms:
		return formatAmount(t.Amount, d.DepositType())
	case *models.SwapTerms:
		return formatAmount(t.DepositAmount, d.DepositType()) + " for " + requested(d, t)
	default:
		return "-"
	}
}

func expires(d models.Deal, now time.Time) string {
	exp := d.ExpiresAt()
	if exp.IsZero() {
		return "never"
	}
	s := exp.UTC().Format(shortLayout)
	if spec, err := models.SpecFor(d.Kind); err == nil && !spec.IsTerminal(d.State) && d.Expired(now) {
		s += " expired"
	}
	return s
}

func status(v models.View) string {
	var parts []string
	if v.IsDestroyed {
		parts = append(parts, "destroyed")
	} else {
		parts = append(parts, "live")
	}
	if v.Inconsistent {
		parts = append(parts, "inconsistent")
	}
	return strings.Join(parts, ", ")
}

func roles(d models.Deal, addr string) string {
	rs := d.RolesOf(addr)
	if len(rs) == 0 {
		return "-"
	}
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = string(r)
	}
	return strings.Join(names, ",")
}

func renderList(w io.Writer, views []models.View, addr string, now time.Time) {
	if len(views) == 0 {
		fmt.Fprintln(w, "no deals found")
		return
	}
	fmt.Fprintf(w, listFormat, "KIND", "ID", "STATE", "ROLE", "TERMS", "EXPIRES", "STATUS")
	for _, v := range views {
		d := v.Deal
		fmt.Fprintf(w, listFormat,
			d.Kind, models.ShortAddress(d.ID), d.State, roles(d, addr),
			termsSummary(d), expires(d, now), status(v))
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func renderDetail(w io.Writer, v *models.View, addr string, now time.Time) {
	d := v.Deal
	field := func(name, value string) {
		fmt.Fprintf(w, "  %-12s %s\n", name+":", value)
	}

	fmt.Fprintf(w, "%s %s\n", d.Kind, d.ID)
	field("state", string(d.State))
	field("status", status(*v))
	field("creator", d.Creator)
	field("recipient", d.Recipient)
	if d.Arbiter != "" {
		field("arbiter", d.Arbiter)
	}

	switch t := d.Terms.(type) {
	case *models.EscrowTerms:
		field("amount", formatAmount(t.Amount, d.DepositType()))
		field("confirmed", fmt.Sprintf("creator %s, recipient %s", yesNo(t.CreatorConfirmed), yesNo(t.RecipientConfirmed)))
	case *models.SwapTerms:
		field("deposit", formatAmount(t.DepositAmount, d.DepositType()))
		field("requested", requested(d, t))
	}

	if !d.CreatedAt.IsZero() {
		field("created", d.CreatedAt.UTC().Format(timeLayout))
	}
	field("expires", expires(d, now))
	if d.Description != "" {
		field("description", d.Description)
	}

	if len(v.Timeline) > 0 {
		fmt.Fprintln(w, "timeline:")
		for _, ev := range v.Timeline {
			fmt.Fprintf(w, "  %s  %-16s %s\n", ev.Timestamp.UTC().Format(timeLayout), ev.Name, ev.ID)
		}
	}

	actions := v.AvailableActions(addr, now)
	if len(actions) == 0 {
		fmt.Fprintln(w, "actions: none")
		return
	}
	fmt.Fprintf(w, "actions: %s\n", strings.Join(actions, ", "))
}
