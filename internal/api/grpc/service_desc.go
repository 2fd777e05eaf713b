package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	BookingServiceName = "toolshare.booking.v1.BookingService"
	ListingServiceName = "toolshare.booking.v1.ListingService"
)

type structCall[S any] func(S, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unary adapts a handler method to grpc.MethodHandler. Requests and responses
// are google.protobuf.Struct messages, so the default proto codec applies.
func unary[S any](serviceName, method string, call structCall[S]) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		h := srv.(S)
		if interceptor == nil {
			return call(h, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(h, ctx, req.(*structpb.Struct))
		})
	}
}

// BookingServer is the command surface for the rental lifecycle.
type BookingServer interface {
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RequestBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApproveBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeclineBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RescheduleBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MarkReturned(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmReturn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRental(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func bookingMethod(name string, call structCall[BookingServer]) grpc.MethodDesc {
	return grpc.MethodDesc{MethodName: name, Handler: unary(BookingServiceName, name, call)}
}

var BookingServiceDesc = grpc.ServiceDesc{
	ServiceName: BookingServiceName,
	HandlerType: (*BookingServer)(nil),
	Methods: []grpc.MethodDesc{
		bookingMethod("Ping", BookingServer.Ping),
		bookingMethod("RequestBooking", BookingServer.RequestBooking),
		bookingMethod("ApproveBooking", BookingServer.ApproveBooking),
		bookingMethod("DeclineBooking", BookingServer.DeclineBooking),
		bookingMethod("RescheduleBooking", BookingServer.RescheduleBooking),
		bookingMethod("CancelBooking", BookingServer.CancelBooking),
		bookingMethod("MarkReturned", BookingServer.MarkReturned),
		bookingMethod("ConfirmReturn", BookingServer.ConfirmReturn),
		bookingMethod("GetRental", BookingServer.GetRental),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "toolshare/booking/v1/booking.proto",
}

// ListingServer is the owner-side command surface for listings.
type ListingServer interface {
	UpdateListingTier(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddBlackout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveBlackout(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func listingMethod(name string, call structCall[ListingServer]) grpc.MethodDesc {
	return grpc.MethodDesc{MethodName: name, Handler: unary(ListingServiceName, name, call)}
}

var ListingServiceDesc = grpc.ServiceDesc{
	ServiceName: ListingServiceName,
	HandlerType: (*ListingServer)(nil),
	Methods: []grpc.MethodDesc{
		listingMethod("UpdateListingTier", ListingServer.UpdateListingTier),
		listingMethod("AddBlackout", ListingServer.AddBlackout),
		listingMethod("RemoveBlackout", ListingServer.RemoveBlackout),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "toolshare/booking/v1/listing.proto",
}

func RegisterBookingServer(s grpc.ServiceRegistrar, srv BookingServer) {
	s.RegisterService(&BookingServiceDesc, srv)
}

func RegisterListingServer(s grpc.ServiceRegistrar, srv ListingServer) {
	s.RegisterService(&ListingServiceDesc, srv)
}
