package list_bookings

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/m04kA/SMC-EventBooking/internal/domain"
	"github.com/m04kA/SMC-EventBooking/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(actor domain.Actor, query url.Values) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{
		Actor: actor,
	}

	var err error
	if req.UserID, err = optionalInt64(query, "userId"); err != nil {
		return nil, err
	}
	if req.PartnerID, err = optionalInt64(query, "partnerId"); err != nil {
		return nil, err
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}
	if paymentStatus := query.Get("paymentStatus"); paymentStatus != "" {
		req.PaymentStatus = &paymentStatus
	}

	if v := query.Get("includeCancelled"); v != "" {
		includeCancelled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid includeCancelled value: %w", err)
		}
		req.IncludeCancelled = includeCancelled
	}

	if v := query.Get("limit"); v != "" {
		if req.Limit, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid limit value: %w", err)
		}
	}
	if v := query.Get("offset"); v != "" {
		if req.Offset, err = strconv.ParseUint(v, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid offset value: %w", err)
		}
	}

	return req, nil
}

func optionalInt64(query url.Values, name string) (*int64, error) {
	v := query.Get(name)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value: %w", name, err)
	}
	return &id, nil
}
