package outfmt

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_OutputJSON(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithQuery(WithMode(context.Background(), JSON), ".name")
	f := NewFormatter(ctx, &buf, &buf)

	require.NoError(t, f.Output(map[string]string{"name": "widget", "sku": "W-1"}))
	assert.Equal(t, "\"widget\"\n", buf.String())
}

func TestFormatter_OutputTextIsNoop(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(context.Background(), &buf, &buf)
	require.NoError(t, f.Output(map[string]string{"name": "widget"}))
	assert.Empty(t, buf.String())
}

func TestFormatter_Table(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(context.Background(), &buf, &buf)

	require.True(t, f.StartTable("ID", "NAME"))
	f.Row("1", "widget")
	require.NoError(t, f.EndTable())
	assert.Equal(t, "ID  NAME\n1   widget\n", buf.String())
}

func TestFormatter_TableSkippedInJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(WithMode(context.Background(), JSON), &buf, &buf)
	assert.False(t, f.StartTable("ID"))
}

func TestFormatter_Empty(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewFormatter(context.Background(), &out, &errOut)
	f.Empty("No orders found")
	assert.Empty(t, out.String())
	assert.Equal(t, "No orders found\n", errOut.String())
}
