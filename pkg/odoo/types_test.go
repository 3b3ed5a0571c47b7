package odoo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMany2OneDecoding(t *testing.T) {
	cases := map[string]Many2One{
		`false`:              {},
		`null`:               {},
		`[]`:                 {},
		`[5, "Section A"]`:   {ID: 5, Name: "Section A", Valid: true},
		`[5, false]`:         {ID: 5, Valid: true},
		`12`:                 {ID: 12, Valid: true},
	}
	for input, want := range cases {
		var got Many2One
		require.NoError(t, json.Unmarshal([]byte(input), &got), input)
		assert.Equal(t, want, got, input)
	}
}

func TestMany2OneMarshal(t *testing.T) {
	b, err := json.Marshal(Many2One{})
	require.NoError(t, err)
	assert.Equal(t, "false", string(b))

	b, err = json.Marshal(Many2One{ID: 4, Name: "x", Valid: true})
	require.NoError(t, err)
	assert.Equal(t, "4", string(b))
}

func TestFalsyScalars(t *testing.T) {
	var payload struct {
		Name  String `json:"name"`
		Score Float  `json:"score"`
		UID   Int    `json:"uid"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"name":false,"score":false,"uid":false}`), &payload))
	assert.Equal(t, String(""), payload.Name)
	assert.Equal(t, Float(0), payload.Score)
	assert.Equal(t, Int(0), payload.UID)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Ana","score":17.5,"uid":4}`), &payload))
	assert.Equal(t, String("Ana"), payload.Name)
	assert.Equal(t, Float(17.5), payload.Score)
	assert.Equal(t, Int(4), payload.UID)
}

func TestDomainAndCopies(t *testing.T) {
	base := Domain{Where("type_enrollment", "=", "student")}
	extended := base.And(OpOr, Where("name", "ilike", "ana"), Where("vat", "ilike", "ana"))
	assert.Len(t, base, 1)
	assert.Len(t, extended, 4)
	assert.Equal(t, "|", extended[1])
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name string
		err  Error
		want string
	}{
		{
			name: "arguments first",
			err:  Error{Message: "Odoo Server Error", Data: ErrorData{Arguments: []interface{}{"Cannot delete"}, Message: "other"}},
			want: "Cannot delete",
		},
		{
			name: "data message",
			err:  Error{Message: "Odoo Server Error", Data: ErrorData{Message: "Record does not exist"}},
			want: "Record does not exist",
		},
		{
			name: "user error in debug",
			err:  Error{Message: "Odoo Server Error", Data: ErrorData{Debug: "Traceback\nodoo.exceptions.UserError('Section is full')"}},
			want: "Section is full",
		},
		{
			name: "validation error in debug",
			err:  Error{Message: "Odoo Server Error", Data: ErrorData{Debug: "x ValidationError(\"Dates overlap\") y"}},
			want: "Dates overlap",
		},
		{
			name: "last debug line",
			err:  Error{Message: "Odoo Server Error", Data: ErrorData{Debug: "Traceback\n  File x\npsycopg2.errors.ForeignKeyViolation: key is still referenced\n"}},
			want: "key is still referenced",
		},
		{
			name: "top level message",
			err:  Error{Message: "Invalid field"},
			want: "Invalid field",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.UserMessage())
		})
	}
}

func TestErrorMessageFallbackTruncates(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	e := Error{Message: "Odoo Server Error", raw: long}
	assert.Len(t, e.UserMessage(), 200)
}

func TestSessionExpiredDetection(t *testing.T) {
	assert.True(t, (&Error{Code: 100}).detectSessionExpired())
	assert.True(t, (&Error{Data: ErrorData{Name: "odoo.http.SessionExpiredException"}}).detectSessionExpired())
	assert.True(t, (&Error{raw: []byte(`{"message":"Access Denied"}`)}).detectSessionExpired())
	assert.False(t, (&Error{Code: 200, raw: []byte(`{"message":"Missing record"}`)}).detectSessionExpired())
}

func TestFloatTimeConversion(t *testing.T) {
	assert.Equal(t, "08:30", FloatToTimeString(8.5))
	assert.Equal(t, "14:45", FloatToTimeString(14.75))
	assert.Equal(t, "09:00", FloatToTimeString(8.9999))
	assert.Equal(t, "00:00", FloatToTimeString(-1))
	assert.InDelta(t, 8.5, TimeStringToFloat("08:30"), 1e-9)
	assert.InDelta(t, 14.75, TimeStringToFloat("14:45"), 1e-9)
	assert.Equal(t, float64(0), TimeStringToFloat(""))
	assert.Equal(t, "07:00 - 07:45", FormatTimeRange(7, 7.75))
	assert.Equal(t, 45, DurationMinutes(7, 7.75))
	assert.True(t, TimesOverlap(7, 8, 7.5, 9))
	assert.False(t, TimesOverlap(7, 8, 8, 9))
}
