package devtools

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/gqlbridge/pkg/operation"
)

var fixedNow = time.UnixMilli(1_700_000_000_123)

func TestClassify_Kinds(t *testing.T) {
	op := &operation.Operation{Kind: operation.KindQuery, OperationName: "GetUser", Query: "{user{id}}"}

	tests := []struct {
		name string
		item any
		want Kind
	}{
		{name: "operation pointer", item: op, want: KindOperation},
		{name: "operation value", item: *op, want: KindOperation},
		{name: "anonymous operation", item: &operation.Operation{Kind: operation.KindQuery, Query: "{ping}"}, want: KindOperation},
		{name: "teardown", item: op.Teardown(), want: KindOperation},
		{name: "result with error", item: &operation.Result{Operation: op, Error: operation.NewNetworkError(errors.New("network down"))}, want: KindError},
		{name: "result value with error", item: operation.Result{Error: operation.NewGraphQLError(operation.GraphQLError{Message: "x"})}, want: KindError},
		{name: "result without error", item: &operation.Result{Operation: op, Data: map[string]any{"user": map[string]any{"id": 1}}}, want: KindResponse},
		{name: "raw operation", item: map[string]any{"operationName": "GetUser", "query": "{user{id}}"}, want: KindOperation},
		{name: "raw error", item: map[string]any{"error": map[string]any{"message": "network down"}}, want: KindError},
		{name: "raw null error", item: map[string]any{"data": map[string]any{}, "error": nil}, want: KindResponse},
		{name: "raw response", item: map[string]any{"data": map[string]any{"user": map[string]any{"id": 1}}}, want: KindResponse},
		{name: "raw ambiguous prefers operation", item: map[string]any{"operationName": "X", "error": "boom"}, want: KindOperation},
		{name: "unrecognized", item: 42, want: KindResponse},
		{name: "nil", item: nil, want: KindResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Classify(tt.item, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev.Type)
			assert.Equal(t, int64(1_700_000_000_123), ev.Timestamp)
			assert.True(t, json.Valid(ev.Data))
		})
	}
}

func TestClassify_GetUserScenario(t *testing.T) {
	ev, err := Classify(map[string]any{"operationName": "GetUser", "query": "{user{id}}"}, fixedNow)
	require.NoError(t, err)

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"operation","data":{"operationName":"GetUser","query":"{user{id}}"},"timestamp":1700000000123}`, string(data))

	res, err := Classify(map[string]any{"data": map[string]any{"user": map[string]any{"id": 1}}}, fixedNow.Add(time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, KindResponse, res.Type)
	assert.JSONEq(t, `{"data":{"user":{"id":1}}}`, string(res.Data))
	assert.GreaterOrEqual(t, res.Timestamp, ev.Timestamp)
}

func TestClassify_ErrorScenario(t *testing.T) {
	ev, err := Classify(map[string]any{"error": map[string]any{"message": "network down"}}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, KindError, ev.Type)
	assert.JSONEq(t, `{"error":{"message":"network down"}}`, string(ev.Data))
}

func TestClassify_SnapshotsNetworkError(t *testing.T) {
	res := &operation.Result{Error: operation.NewNetworkError(errors.New("network down"))}

	ev, err := Classify(res, fixedNow)
	require.NoError(t, err)

	value, err := ev.Value()
	require.NoError(t, err)
	errObj := value.(map[string]any)["error"].(map[string]any)
	assert.Equal(t, "network down", errObj["networkError"])
	assert.Equal(t, "[Network] network down", errObj["message"])
}

func TestClassify_SnapshotIsIndependent(t *testing.T) {
	user := map[string]any{"id": 1}
	item := map[string]any{"data": map[string]any{"user": user}}

	ev, err := Classify(item, fixedNow)
	require.NoError(t, err)

	user["id"] = 2
	item["extra"] = true

	assert.JSONEq(t, `{"data":{"user":{"id":1}}}`, string(ev.Data))
}

func TestClassify_SnapshotFailure(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	tests := []struct {
		name string
		item any
		want Kind
	}{
		{name: "cycle", item: cyclic, want: KindResponse},
		{name: "channel", item: map[string]any{"error": make(chan int)}, want: KindError},
		{name: "NaN", item: &operation.Result{Data: math.NaN()}, want: KindResponse},
		{name: "func in operation", item: &operation.Operation{OperationName: "X", Context: map[string]any{"fn": func() {}}}, want: KindOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.item, fixedNow)
			require.Error(t, err)

			var snapErr *SnapshotError
			require.ErrorAs(t, err, &snapErr)
			assert.Equal(t, tt.want, snapErr.Type)
			assert.NotNil(t, errors.Unwrap(err))
		})
	}
}

func TestKind_Valid(t *testing.T) {
	assert.True(t, KindOperation.Valid())
	assert.True(t, KindError.Valid())
	assert.True(t, KindResponse.Valid())
	assert.False(t, Kind("teardown").Valid())
	assert.False(t, Kind("").Valid())
}

func TestEvent_OperationName(t *testing.T) {
	op := &operation.Operation{Kind: operation.KindQuery, OperationName: "GetUser", Query: "query GetUser {user{id}}"}

	tests := []struct {
		name string
		item any
		want string
	}{
		{name: "operation", item: op, want: "GetUser"},
		{name: "response", item: &operation.Result{Operation: op, Data: map[string]any{}}, want: "GetUser"},
		{name: "error", item: &operation.Result{Operation: op, Error: operation.NewNetworkError(errors.New("down"))}, want: "GetUser"},
		{name: "anonymous", item: &operation.Operation{Kind: operation.KindQuery, Query: "{ping}"}, want: ""},
		{name: "raw response", item: map[string]any{"data": 1}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Classify(tt.item, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev.OperationName())
		})
	}
}
