package cli

import (
	"fmt"
	"io"
	"strconv"

	"foundersbook-backend/internal/application/notifications"
	"foundersbook-backend/internal/domain"

	"github.com/pterm/pterm"
)

// RenderParity writes one table row per founder per month.
func RenderParity(w io.Writer, rows []domain.MonthlyParity) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No monthly parity data found.")
		return err
	}
	data := pterm.TableData{{"Period", "Founder", "Expected", "Actual", "Disparity", "Status", "Settled"}}
	for _, mp := range rows {
		period := fmt.Sprintf("%04d-%02d", mp.Year, mp.Month)
		settled := strconv.FormatBool(mp.Settled)
		if mp.AmendedAfterSettlement {
			settled += " (amended)"
		}
		for _, f := range mp.PerFounder {
			data = append(data, []string{
				period,
				f.Name,
				f.ExpectedContribution.StringFixed(2),
				f.ActualContribution.StringFixed(2),
				f.Disparity.StringFixed(2),
				f.Status,
				settled,
			})
		}
		data = append(data, []string{period, "TOTAL", mp.TotalSpent.StringFixed(2), "", "", "unassigned " + mp.UnassignedSpent.StringFixed(2), settled})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func RenderSweep(w io.Writer, r notifications.SweepReport) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Kind", "Matched", "Sent", "Failed"},
		{string(r.Kind), strconv.Itoa(r.Matched), strconv.Itoa(r.Sent), strconv.Itoa(r.Failed)},
	}).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
