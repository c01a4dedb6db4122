package handler

import (
	"context"

	"clinic-booking/internal/middleware"
	"clinic-booking/internal/rpc"
)

func (h *Handler) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {
	u, err := h.users.CreateUser(ctx, req.Email, req.Password)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return &rpc.RegisterResponse{User: toUser(u)}, nil
}

func (h *Handler) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	tok, u, err := h.gate.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return &rpc.LoginResponse{Token: tok, User: toUser(u)}, nil
}

func (h *Handler) Logout(ctx context.Context, _ *rpc.LogoutRequest) (*rpc.LogoutResponse, error) {
	if err := h.gate.Logout(ctx, middleware.SessionFrom(ctx)); err != nil {
		return nil, h.fail(ctx, err)
	}
	return &rpc.LogoutResponse{}, nil
}

func (h *Handler) WhoAmI(ctx context.Context, _ *rpc.WhoAmIRequest) (*rpc.WhoAmIResponse, error) {
	u, err := h.gate.CurrentUser(ctx, middleware.SessionFrom(ctx))
	if err != nil {
		return nil, h.fail(ctx, err)
	}
	return &rpc.WhoAmIResponse{User: toUser(u)}, nil
}
