package interceptor

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"toolshare-backend/internal/config"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/security"
)

type AuthInterceptor struct {
	tokenManager security.TokenManager
}

func NewAuthInterceptor(tm security.TokenManager) *AuthInterceptor {
	return &AuthInterceptor{tokenManager: tm}
}

// Unary returns a server interceptor function to authenticate and authorize unary RPCs
func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		level := config.GetSecurityLevel(info.FullMethod)

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			return handler(ctx, req)
		}

		// Extract token from metadata
		token, err := i.extractToken(ctx)
		if err != nil {
			return nil, err
		}

		claims, err := i.tokenManager.ValidateAccessToken(token)
		if err != nil {
			logger.Debug("Rejected token", "method", info.FullMethod, "error", err)
			if errors.Is(err, security.ErrWrongTokenType) {
				return nil, status.Error(codes.PermissionDenied, "access token required")
			}
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}

		// Inject user ID into context. We use a Copy to avoid side effects
		// and Set to overwrite any existing "user-id" header from the client for security.
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			md = metadata.New(nil)
		} else {
			md = md.Copy()
		}

		md.Set("user-id", strconv.Itoa(int(claims.UserID)))
		newCtx := metadata.NewIncomingContext(ctx, md)

		return handler(newCtx, req)
	}
}

func (i *AuthInterceptor) extractToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "metadata is not provided")
	}

	authHeader := md["authorization"]
	if len(authHeader) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}

	return BearerToken(authHeader[0]), nil
}

// BearerToken strips an optional "Bearer " prefix from an authorization header value.
func BearerToken(header string) string {
	if len(header) > 7 && strings.ToUpper(header[0:7]) == "BEARER " {
		return header[7:]
	}
	return header
}
