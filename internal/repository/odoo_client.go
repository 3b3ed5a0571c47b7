package repository

import (
	"context"

	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

// OdooClient is the subset of the JSON-RPC client used by the entity repositories.
type OdooClient interface {
	SearchRead(ctx context.Context, model string, domain odoo.Domain, opts odoo.SearchOptions, out interface{}) error
	SearchCount(ctx context.Context, model string, domain odoo.Domain) (int, error)
	Read(ctx context.Context, model string, ids []int64, fields []string, out interface{}) error
	Create(ctx context.Context, model string, values odoo.Values) (int64, error)
	Write(ctx context.Context, model string, ids []int64, values odoo.Values) error
	Unlink(ctx context.Context, model string, ids []int64) error
	CallMethod(ctx context.Context, model, method string, args []interface{}, kwargs map[string]interface{}, out interface{}) error
}

var currentOnly = odoo.Domain{odoo.Where("current", "=", true)}

func ids(values []int64) []int64 {
	if values == nil {
		return []int64{}
	}
	return values
}

func many2oneValue(id int64) interface{} {
	if id <= 0 {
		return false
	}
	return id
}
