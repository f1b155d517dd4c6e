package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/topaz-sim/internal/params"
)

// printer keeps the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) line(label string, v float64) {
	p.printf("  %-28s %14s\n", label, Money(v))
}

// Money formats an amount rounded to whole pounds with thousands separators.
func Money(v float64) string {
	v = math.Round(v)
	if v == 0 {
		return "£0"
	}
	if v < 0 {
		return "-£" + humanize.Commaf(-v)
	}
	return "£" + humanize.Commaf(v)
}

// Units formats a unit count with thousands separators.
func Units(n int) string {
	return humanize.Comma(int64(n))
}

// WriteText renders a report as a plain-text management summary.
func WriteText(w io.Writer, r *ManagementReport) error {
	p := &printer{w: w}

	title := fmt.Sprintf("%s  Q%d Year %d", r.Company, r.Quarter, r.Year)
	if r.Strategy != "" {
		title += "  (" + r.Strategy + ")"
	}
	p.printf("%s\n%s\n", title, strings.Repeat("=", len(title)))

	p.printf("\nProfit and loss\n")
	p.line("Revenue", r.Revenue)
	p.line("Cost of sales", r.CostOfSales)
	p.line("Gross profit", r.GrossProfit)
	p.line("Overheads", r.TotalOverheads)
	p.line("EBITDA", r.EBITDA)
	p.line("Interest received", r.InterestReceived)
	p.line("Interest paid", r.InterestPaid)
	p.line("Depreciation", r.Depreciation)
	p.line("Profit before tax", r.ProfitBeforeTax)
	p.line("Tax", r.Tax)
	p.line("Net profit", r.NetProfit)
	p.line("Dividends", r.Dividends)

	p.printf("\nPosition\n")
	p.line("Cash", r.Cash)
	p.line("Overdraft", r.Overdraft)
	p.line("Unsecured loan", r.Loan)
	p.line("Net worth", r.NetWorth)
	p.printf("  %-28s %14s\n", "Share price", fmt.Sprintf("£%.2f", r.SharePrice))

	p.printf("\n%-12s", "Sales")
	for _, a := range params.Areas {
		p.printf(" %10s", a)
	}
	p.printf("\n")
	for _, prod := range params.Products {
		p.printf("%-12s", prod)
		for _, a := range params.Areas {
			p.printf(" %10s", Units(r.Sales[prod][a]))
		}
		p.printf("\n")
	}

	p.printf("\n%-12s", "Stock/backlog")
	for _, a := range params.Areas {
		p.printf(" %10s", a)
	}
	p.printf("\n")
	for _, prod := range params.Products {
		p.printf("%-12s", prod)
		for _, a := range params.Areas {
			p.printf(" %10s", Units(r.Stocks[prod][a])+"/"+Units(r.Backlog[prod][a]))
		}
		p.printf("  %.1f stars\n", r.StarRatings[prod])
	}

	p.printf("\nWorkforce: %d salespeople, %d assembly workers, %d machinists, %d machines, %d vans\n",
		r.Salespeople, r.AssemblyWorkers, r.Machinists, r.Machines, r.Vehicles)
	p.printf("Materials: %s in stock, %s on order\n",
		Units(int(r.Materials.Closing)), Units(int(r.Materials.OnOrder)))

	for _, ev := range r.Events {
		p.printf("Event: %s (%s)\n", ev.Description, ev.Severity)
	}
	for _, warn := range r.Warnings {
		p.printf("Warning: %s\n", warn)
	}
	return p.err
}
