package lists

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
)

type createFunc func(ctx context.Context, payload json.RawMessage) (models.MutationResult, error)

type updateFunc func(ctx context.Context, id int64, payload json.RawMessage) (models.MutationResult, error)

// creates decodes a payload into In before calling fn.
func creates[In any](fn func(context.Context, In) models.MutationResult) createFunc {
	return func(ctx context.Context, payload json.RawMessage) (models.MutationResult, error) {
		var in In
		if err := decodePayload(payload, &in); err != nil {
			return models.MutationResult{}, err
		}
		return fn(ctx, in), nil
	}
}

func updates[In any](fn func(context.Context, int64, In) models.MutationResult) updateFunc {
	return func(ctx context.Context, id int64, payload json.RawMessage) (models.MutationResult, error) {
		var in In
		if err := decodePayload(payload, &in); err != nil {
			return models.MutationResult{}, err
		}
		return fn(ctx, id, in), nil
	}
}

func decodePayload(payload json.RawMessage, dest interface{}) error {
	if len(payload) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "empty payload")
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
	}
	return nil
}

// writableList adds create and update to a list. update may be nil.
type writableList struct {
	List
	create createFunc
	update updateFunc
}

func writable(l List, create createFunc, update updateFunc) List {
	return &writableList{List: l, create: create, update: update}
}

func (w *writableList) Create(ctx context.Context, payload json.RawMessage) (int64, error) {
	res, err := w.create(ctx, payload)
	if err != nil {
		return 0, err
	}
	if err := resultError(res); err != nil {
		return 0, err
	}
	w.Refresh(ctx)
	return res.ID, nil
}

func (w *writableList) Update(ctx context.Context, id int64, payload json.RawMessage) error {
	if w.update == nil {
		return w.List.Update(ctx, id, payload)
	}
	res, err := w.update(ctx, id, payload)
	if err != nil {
		return err
	}
	if err := resultError(res); err != nil {
		return err
	}
	w.Refresh(ctx)
	return nil
}

func resultError(res models.MutationResult) error {
	switch {
	case res.Success:
		return nil
	case res.SessionExpired:
		return appErrors.ErrSessionExpired
	default:
		return appErrors.Clone(appErrors.ErrBlocked, res.Message)
	}
}
