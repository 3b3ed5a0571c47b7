package odoo

import "context"

// SearchOptions controls search_read paging and projection.
type SearchOptions struct {
	Fields []string
	Limit  int
	Offset int
	Order  string
}

func (o SearchOptions) kwargs(domain Domain) map[string]interface{} {
	if domain == nil {
		domain = Domain{}
	}
	fields := o.Fields
	if fields == nil {
		fields = []string{}
	}
	kw := map[string]interface{}{
		"domain": domain,
		"fields": fields,
		"offset": o.Offset,
	}
	if o.Limit > 0 {
		kw["limit"] = o.Limit
	}
	if o.Order != "" {
		kw["order"] = o.Order
	}
	return kw
}

// SearchRead runs search_read on model and decodes the records into out (a pointer to a slice).
func (c *Client) SearchRead(ctx context.Context, model string, domain Domain, opts SearchOptions, out interface{}) error {
	return c.callKW(ctx, model, "search_read", nil, opts.kwargs(domain), out)
}

// SearchCount returns the number of records matching domain.
func (c *Client) SearchCount(ctx context.Context, model string, domain Domain) (int, error) {
	if domain == nil {
		domain = Domain{}
	}
	var count int
	if err := c.callKW(ctx, model, "search_count", []interface{}{domain}, nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// Read loads specific records by id.
func (c *Client) Read(ctx context.Context, model string, ids []int64, fields []string, out interface{}) error {
	if fields == nil {
		fields = []string{}
	}
	return c.callKW(ctx, model, "read", []interface{}{ids}, map[string]interface{}{"fields": fields}, out)
}

// Create inserts a record and returns its id.
func (c *Client) Create(ctx context.Context, model string, values Values) (int64, error) {
	var id int64
	if err := c.callKW(ctx, model, "create", []interface{}{values}, nil, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// Write updates the given records.
func (c *Client) Write(ctx context.Context, model string, ids []int64, values Values) error {
	return c.callKW(ctx, model, "write", []interface{}{ids, values}, nil, nil)
}

// Unlink deletes the given records.
func (c *Client) Unlink(ctx context.Context, model string, ids []int64) error {
	return c.callKW(ctx, model, "unlink", []interface{}{ids}, nil, nil)
}

// CallMethod invokes an arbitrary public model method.
func (c *Client) CallMethod(ctx context.Context, model, method string, args []interface{}, kwargs map[string]interface{}, out interface{}) error {
	return c.callKW(ctx, model, method, args, kwargs, out)
}
