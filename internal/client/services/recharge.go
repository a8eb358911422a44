package services

import (
	"context"

	"github.com/dmitrijs2005/gophrecharge/internal/client/client"
	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
)

const DefaultPerPage = 10

type RechargeService interface {
	// Meters lists the meters the current user can recharge.
	Meters() ([]models.Meter, error)
	History(ctx context.Context, page, perPage int) (*models.Page[models.Recharge], error)
	Submit(ctx context.Context, form RechargeForm) (*models.RechargeResponse, error)
}

type rechargeService struct {
	client  client.Client
	session Session

	submitGuard Guard
}

func NewRechargeService(c client.Client, s Session) RechargeService {
	return &rechargeService{client: c, session: s}
}

func (r *rechargeService) Meters() ([]models.Meter, error) {
	u, ok := r.session.User()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return u.AvailableMeters(), nil
}

func (r *rechargeService) History(ctx context.Context, page, perPage int) (*models.Page[models.Recharge], error) {
	u, ok := r.session.User()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	epoch := r.session.Epoch()
	res, err := r.client.GetRechargeHistory(ctx, u.ID, page, perPage)
	if err != nil {
		return nil, err
	}
	if r.session.Epoch() != epoch {
		return nil, ErrSuperseded
	}
	return res, nil
}

func (r *rechargeService) Submit(ctx context.Context, form RechargeForm) (*models.RechargeResponse, error) {
	u, ok := r.session.User()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	if err := validateForm(form); err != nil {
		return nil, err
	}

	req := models.RechargeRequest{
		UserID:        u.ID,
		Meter:         form.Meter,
		Amount:        form.Amount,
		PaymentMethod: form.PaymentMethod,
	}
	if form.PaymentMethod.RequiresPayer() {
		req.SubscriberMsisdn = NormalizePhone(form.SubscriberMsisdn)
	}

	var resp *models.RechargeResponse
	ran, err := r.submitGuard.Do(func() error {
		var err error
		resp, err = r.client.MakeRecharge(ctx, req)
		return err
	})
	if !ran {
		return nil, ErrInFlight
	}
	return resp, err
}
