// Package rpc declares the booking.v1.BookingService gRPC service. Messages
// are plain structs carried by a JSON codec.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "booking.v1.BookingService"

const (
	MethodRegister               = "/" + ServiceName + "/Register"
	MethodLogin                  = "/" + ServiceName + "/Login"
	MethodLogout                 = "/" + ServiceName + "/Logout"
	MethodWhoAmI                 = "/" + ServiceName + "/WhoAmI"
	MethodBookAppointment        = "/" + ServiceName + "/BookAppointment"
	MethodListDoctorAppointments = "/" + ServiceName + "/ListDoctorAppointments"
	MethodSyncAppointment        = "/" + ServiceName + "/SyncAppointment"
)

type BookingServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	WhoAmI(context.Context, *WhoAmIRequest) (*WhoAmIResponse, error)
	BookAppointment(context.Context, *BookAppointmentRequest) (*BookAppointmentResponse, error)
	ListDoctorAppointments(context.Context, *ListDoctorAppointmentsRequest) (*ListDoctorAppointmentsResponse, error)
	SyncAppointment(context.Context, *SyncAppointmentRequest) (*SyncAppointmentResponse, error)
}

// UnimplementedBookingServiceServer can be embedded to satisfy the
// interface while a server is partially written.
type UnimplementedBookingServiceServer struct{}

func (UnimplementedBookingServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedBookingServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedBookingServiceServer) Logout(context.Context, *LogoutRequest) (*LogoutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}
func (UnimplementedBookingServiceServer) WhoAmI(context.Context, *WhoAmIRequest) (*WhoAmIResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method WhoAmI not implemented")
}
func (UnimplementedBookingServiceServer) BookAppointment(context.Context, *BookAppointmentRequest) (*BookAppointmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method BookAppointment not implemented")
}
func (UnimplementedBookingServiceServer) ListDoctorAppointments(context.Context, *ListDoctorAppointmentsRequest) (*ListDoctorAppointmentsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListDoctorAppointments not implemented")
}
func (UnimplementedBookingServiceServer) SyncAppointment(context.Context, *SyncAppointmentRequest) (*SyncAppointmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SyncAppointment not implemented")
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary adapts a typed method to the grpc.MethodDesc handler shape.
func unary[Req any, Resp any](fullMethod string, call func(BookingServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BookingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unary(MethodRegister, BookingServiceServer.Register)},
		{MethodName: "Login", Handler: unary(MethodLogin, BookingServiceServer.Login)},
		{MethodName: "Logout", Handler: unary(MethodLogout, BookingServiceServer.Logout)},
		{MethodName: "WhoAmI", Handler: unary(MethodWhoAmI, BookingServiceServer.WhoAmI)},
		{MethodName: "BookAppointment", Handler: unary(MethodBookAppointment, BookingServiceServer.BookAppointment)},
		{MethodName: "ListDoctorAppointments", Handler: unary(MethodListDoctorAppointments, BookingServiceServer.ListDoctorAppointments)},
		{MethodName: "SyncAppointment", Handler: unary(MethodSyncAppointment, BookingServiceServer.SyncAppointment)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "booking/v1/booking.proto",
}

type BookingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingServiceClient(cc grpc.ClientConnInterface) *BookingServiceClient {
	return &BookingServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *BookingServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *BookingServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, MethodLogout, in, opts)
}

func (c *BookingServiceClient) WhoAmI(ctx context.Context, in *WhoAmIRequest, opts ...grpc.CallOption) (*WhoAmIResponse, error) {
	return invoke[WhoAmIResponse](ctx, c.cc, MethodWhoAmI, in, opts)
}

func (c *BookingServiceClient) BookAppointment(ctx context.Context, in *BookAppointmentRequest, opts ...grpc.CallOption) (*BookAppointmentResponse, error) {
	return invoke[BookAppointmentResponse](ctx, c.cc, MethodBookAppointment, in, opts)
}

func (c *BookingServiceClient) ListDoctorAppointments(ctx context.Context, in *ListDoctorAppointmentsRequest, opts ...grpc.CallOption) (*ListDoctorAppointmentsResponse, error) {
	return invoke[ListDoctorAppointmentsResponse](ctx, c.cc, MethodListDoctorAppointments, in, opts)
}

func (c *BookingServiceClient) SyncAppointment(ctx context.Context, in *SyncAppointmentRequest, opts ...grpc.CallOption) (*SyncAppointmentResponse, error) {
	return invoke[SyncAppointmentResponse](ctx, c.cc, MethodSyncAppointment, in, opts)
}
