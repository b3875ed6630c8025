package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type otherKey string

func TestUserIDFromCtx(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	tests := []struct {
		name   string
		ctx    context.Context
		want   uuid.UUID
		wantOK bool
	}{
		{name: "set", ctx: WithUserID(context.Background(), id), want: id, wantOK: true},
		{name: "absent", ctx: context.Background(), want: uuid.Nil},
		{name: "nil uuid", ctx: WithUserID(context.Background(), uuid.Nil), want: uuid.Nil},
		{name: "foreign string key", ctx: context.WithValue(context.Background(), otherKey("user_id"), id), want: uuid.Nil},
		{name: "overridden", ctx: WithUserID(WithUserID(context.Background(), uuid.New()), id), want: id, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := UserIDFromCtx(tt.ctx)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequestIDFromCtx(t *testing.T) {
	t.Parallel()

	assert.Empty(t, RequestIDFromCtx(context.Background()))

	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestIDFromCtx(ctx))

	// Both values live side by side.
	id := uuid.New()
	ctx = WithUserID(ctx, id)
	got, ok := UserIDFromCtx(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, "req-42", RequestIDFromCtx(ctx))
}
