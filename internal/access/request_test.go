package access

import (
	"errors"
	"testing"

	"github.com/looplj/adminhub/internal/session"
)

func TestRequestConstructors(t *testing.T) {
	sess := session.New("user-1", false, true)
	item := map[string]any{"id": "user-2"}
	input := map[string]any{"name": "Ada"}

	t.Run("create", func(t *testing.T) {
		req := NewCreateRequest(sess, "users", input)
		if req.Operation != OperationCreate {
			t.Errorf("Operation = %v, want create", req.Operation)
		}

		if req.Item != nil {
			t.Error("create request must not bind an item")
		}

		if err := req.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("read", func(t *testing.T) {
		req := NewReadRequest(sess, "users", item)
		if req.Operation != OperationRead {
			t.Errorf("Operation = %v, want read", req.Operation)
		}

		if req.Input != nil {
			t.Error("read request must not carry input")
		}

		if err := req.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		req := NewUpdateRequest(sess, "users", item, input)
		if req.Item == nil || req.Input == nil {
			t.Error("update request must bind both item and input")
		}

		if err := req.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		req := NewDeleteRequest(sess, "users", item)
		if req.Input != nil {
			t.Error("delete request must not carry input")
		}

		if err := req.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})
}

func TestRequest_Validate(t *testing.T) {
	sess := session.Anonymous()

	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{
			name:    "missing list key",
			req:     Request{Session: sess, Operation: OperationRead},
			wantErr: true,
		},
		{
			name:    "unknown operation",
			req:     Request{Session: sess, ListKey: "users", Operation: Operation("query")},
			wantErr: true,
		},
		{
			name:    "create with item",
			req:     Request{Session: sess, ListKey: "users", Operation: OperationCreate, Item: map[string]any{"id": "x"}},
			wantErr: true,
		},
		{
			name:    "read with input",
			req:     Request{Session: sess, ListKey: "users", Operation: OperationRead, Input: map[string]any{"name": "x"}},
			wantErr: true,
		},
		{
			name:    "delete with input",
			req:     Request{Session: sess, ListKey: "users", Operation: OperationDelete, Input: map[string]any{"name": "x"}},
			wantErr: true,
		},
		{
			name:    "delete with field path",
			req:     Request{Session: sess, ListKey: "users", Operation: OperationDelete, FieldPath: "password"},
			wantErr: true,
		},
		{
			name:    "read without item",
			req:     Request{Session: sess, ListKey: "users", Operation: OperationRead},
			wantErr: false,
		},
		{
			name:    "update with item and input",
			req:     Request{Session: sess, ListKey: "users", Operation: OperationUpdate, Item: map[string]any{"id": "x"}, Input: map[string]any{"name": "y"}},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Validate() error should wrap ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestRequest_ForField(t *testing.T) {
	base := NewUpdateRequest(session.New("user-1", true, true), "users", map[string]any{"id": "user-2"}, map[string]any{"name": "x"})

	derived := base.ForField("password")
	if derived.FieldPath != "password" {
		t.Errorf("FieldPath = %q, want password", derived.FieldPath)
	}

	if base.FieldPath != "" {
		t.Error("ForField must not mutate the receiver")
	}

	if derived.ListKey != base.ListKey || derived.Operation != base.Operation {
		t.Error("ForField must keep the list-level arguments")
	}
}

func TestRequest_ItemID(t *testing.T) {
	tests := []struct {
		name string
		item map[string]any
		want string
	}{
		{"nil item", nil, ""},
		{"missing id", map[string]any{"name": "Ada"}, ""},
		{"non string id", map[string]any{"id": 42}, ""},
		{"string id", map[string]any{"id": "user-7"}, "user-7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewReadRequest(session.Anonymous(), "users", tt.item)
			if got := req.ItemID(); got != tt.want {
				t.Errorf("ItemID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequest_String(t *testing.T) {
	req := NewDeleteRequest(session.New("user-1", true, true), "users", map[string]any{"id": "user-2"})
	if got := req.String(); got != "delete users by admin:user-1" {
		t.Errorf("String() = %q", got)
	}

	fieldReq := NewReadRequest(session.Anonymous(), "users", nil).ForField("email")
	if got := fieldReq.String(); got != "read users.email by anonymous" {
		t.Errorf("String() = %q", got)
	}
}
