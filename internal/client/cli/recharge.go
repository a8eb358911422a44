package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
	"github.com/dmitrijs2005/gophrecharge/internal/client/services"
)

// Meters prints the meters the current user can recharge.
func (a *App) Meters(ctx context.Context) error {
	meters, err := a.rechargeService.Meters()
	if err != nil {
		report("Cannot list meters", err)
		return err
	}
	if len(meters) == 0 {
		printlnFn("No meters linked to this account.")
		return nil
	}
	for _, m := range meters {
		printlnFn(fmt.Sprintf("%d\t%d\t%s\t%s", m.ID, m.Number, m.Type, m.Name))
	}
	return nil
}

// Recharge prompts for meter, amount and payment method, then submits.
func (a *App) Recharge(ctx context.Context) error {
	meters, err := a.rechargeService.Meters()
	if err != nil {
		report("Recharge unsuccessful", err)
		return err
	}
	if len(meters) == 0 {
		printlnFn("No meters linked to this account.")
		return nil
	}

	var form services.RechargeForm

	if len(meters) == 1 {
		form.Meter = meters[0].ID
	} else {
		_ = a.Meters(ctx)
		v, err := getSimpleText(a.reader, "Meter id", a.out)
		if err != nil {
			return err
		}
		form.Meter, _ = strconv.ParseInt(v, 10, 64)
	}

	v, err := getSimpleText(a.reader, "Amount", a.out)
	if err != nil {
		return err
	}
	form.Amount, _ = strconv.ParseFloat(v, 64)

	labels := make([]string, 0, len(models.PaymentMethods))
	for _, pm := range models.PaymentMethods {
		labels = append(labels, fmt.Sprintf("%s (%s)", pm, pm.Label()))
	}
	v, err = getSimpleText(a.reader, "Payment method: "+strings.Join(labels, ", "), a.out)
	if err != nil {
		return err
	}
	form.PaymentMethod = models.PaymentMethod(strings.ToLower(v))

	if form.PaymentMethod.RequiresPayer() {
		v, err = getSimpleText(a.reader, "Payer phone number", a.out)
		if err != nil {
			return err
		}
		form.SubscriberMsisdn = v
	}

	resp, err := a.rechargeService.Submit(ctx, form)
	if err != nil {
		report("Recharge unsuccessful", err)
		return err
	}

	printlnFn(fmt.Sprintf("Recharge submitted, status: %s", resp.Status))
	return nil
}

// History prints one page of past recharges.
func (a *App) History(ctx context.Context, page int) error {
	res, err := a.rechargeService.History(ctx, page, services.DefaultPerPage)
	if err != nil {
		if !errors.Is(err, services.ErrSuperseded) {
			report("Cannot load history", err)
		}
		return err
	}

	if len(res.Data) == 0 {
		printlnFn("No recharges yet.")
		return nil
	}
	for _, r := range res.Data {
		printlnFn(fmt.Sprintf("%d\t%s\t%.0f\t%s\t%s",
			r.ID, r.CreatedAt, r.TotalPaid, r.PaymentMethod.Label(), models.StatusFromCode(r.Status)))
	}

	footer := fmt.Sprintf("page %d of %d (%d total)", res.CurrentPage, res.LastPage, res.Total)
	if res.HasNext() {
		footer += fmt.Sprintf(", next: history %d", res.CurrentPage+1)
	}
	printlnFn(footer)
	return nil
}
