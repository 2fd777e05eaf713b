package grpc

import (
	"context"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UserIDKey is the metadata header the auth interceptor sets after validating
// the caller's access token.
const UserIDKey = "user-id"

// GetUserIDFromContext extracts the user ID from the gRPC metadata.
// It expects a header named "user-id".
func GetUserIDFromContext(ctx context.Context) (int32, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return 0, status.Errorf(codes.Unauthenticated, "metadata is not provided")
	}

	userIDs := md.Get(UserIDKey)
	if len(userIDs) == 0 {
		return 0, status.Errorf(codes.Unauthenticated, "user_id is not provided in metadata")
	}

	userID, err := strconv.ParseInt(userIDs[0], 10, 32)
	if err != nil {
		return 0, status.Errorf(codes.InvalidArgument, "invalid user_id format: %v", err)
	}
	if userID <= 0 {
		return 0, status.Errorf(codes.Unauthenticated, "invalid user_id: %d", userID)
	}

	return int32(userID), nil
}
