package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     LoginRequest
		wantErr bool
	}{
		{"public domain", LoginRequest{Email: "budi@koran.id", Password: "x"}, false},
		// domain nội bộ không có MX record vẫn phải login được
		{"internal domain", LoginRequest{Email: "redaktur@newsroom.local", Password: "x"}, false},
		{"missing at", LoginRequest{Email: "budi.koran.id", Password: "x"}, true},
		{"missing password", LoginRequest{Email: "budi@koran.id"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateUserRequest_Validate(t *testing.T) {
	valid := CreateUserRequest{
		Email:    "redaktur@newsroom.local",
		Password: "rahasia123",
		FullName: "Redaktur",
		Role:     "redaktur",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *CreateUserRequest)
	}{
		{"bad email", func(r *CreateUserRequest) { r.Email = "redaktur@" }},
		{"short password", func(r *CreateUserRequest) { r.Password = "abc1" }},
		{"password without number", func(r *CreateUserRequest) { r.Password = "rahasiasekali" }},
		{"password without letter", func(r *CreateUserRequest) { r.Password = "12345678" }},
		{"guest not assignable", func(r *CreateUserRequest) { r.Role = "guest" }},
		{"unknown role", func(r *CreateUserRequest) { r.Role = "admin" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}
