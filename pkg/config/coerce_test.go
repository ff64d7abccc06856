// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		typ     Type
		value   any
		want    any
		wantErr bool
	}{
		{name: "bool true lower", typ: TypeBoolean, value: "true", want: true},
		{name: "bool true upper", typ: TypeBoolean, value: "TRUE", want: true},
		{name: "bool true title", typ: TypeBoolean, value: "True", want: true},
		{name: "bool false variants", typ: TypeBoolean, value: " FaLsE ", want: false},
		{name: "bool native", typ: TypeBoolean, value: true, want: true},
		{name: "bool yes rejected", typ: TypeBoolean, value: "yes", wantErr: true},
		{name: "bool one rejected", typ: TypeBoolean, value: "1", wantErr: true},
		{name: "bool int rejected", typ: TypeBoolean, value: 1, wantErr: true},

		{name: "string trimmed", typ: TypeString, value: "  hello \t", want: "hello"},
		{name: "string from int rejected", typ: TypeString, value: 5, wantErr: true},

		{name: "password wrapped", typ: TypePassword, value: " s3cret ", want: NewPassword("s3cret")},
		{name: "password passthrough", typ: TypePassword, value: NewPassword("x"), want: NewPassword("x")},
		{name: "password from int rejected", typ: TypePassword, value: 5, wantErr: true},

		{name: "int from string", typ: TypeInt, value: " 42 ", want: int32(42)},
		{name: "int negative", typ: TypeInt, value: "-7", want: int32(-7)},
		{name: "int native", typ: TypeInt, value: 42, want: int32(42)},
		{name: "int64 truncates", typ: TypeInt, value: int64(math.MaxInt32) + 1, want: int32(math.MinInt32)},
		{name: "float truncates", typ: TypeInt, value: 3.99, want: int32(3)},
		{name: "int invalid literal", typ: TypeInt, value: "4.2", wantErr: true},
		{name: "int overflow literal", typ: TypeInt, value: "2147483648", wantErr: true},
		{name: "int from bool rejected", typ: TypeInt, value: true, wantErr: true},

		{name: "double from string", typ: TypeDouble, value: "2.5", want: 2.5},
		{name: "double from int", typ: TypeDouble, value: 2, want: 2.0},
		{name: "double from float32", typ: TypeDouble, value: float32(0.5), want: 0.5},
		{name: "double invalid", typ: TypeDouble, value: "two", wantErr: true},

		{name: "list empty string", typ: TypeList, value: "", want: []string{}},
		{name: "list split", typ: TypeList, value: "a,b,c", want: []string{"a", "b", "c"}},
		{name: "list split trims", typ: TypeList, value: " a , b ,c ", want: []string{"a", "b", "c"}},
		{name: "list passthrough", typ: TypeList, value: []string{"x", "y"}, want: []string{"x", "y"}},
		{name: "list of any", typ: TypeList, value: []any{"x", "y"}, want: []string{"x", "y"}},
		{name: "list of mixed rejected", typ: TypeList, value: []any{"x", 1}, wantErr: true},
		{name: "list from int rejected", typ: TypeList, value: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := coerce("test.key", tt.typ, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsTypeMismatch(err))
				assert.Contains(t, err.Error(), "test.key")
				assert.Contains(t, err.Error(), tt.typ.String())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerce_ListPassthroughKeepsSlice(t *testing.T) {
	t.Parallel()

	in := []string{"a", "b"}
	got, err := coerce("list", TypeList, in)
	require.NoError(t, err)

	out := got.([]string)
	require.Len(t, out, 2)
	assert.Same(t, &in[0], &out[0])
}

func TestCoerce_PasswordMismatchHidesValue(t *testing.T) {
	t.Parallel()

	_, err := coerce("secret", TypePassword, 12345)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "12345")
}
