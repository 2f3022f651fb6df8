package auth

import (
	"context"
)

type contextKey string

var (
	operatorClaimsKey contextKey = "operator_claims"
	requestIDKey      contextKey = "request_id"
)

func SetOperatorClaims(ctx context.Context, claims *OperatorClaims) context.Context {
	return context.WithValue(ctx, operatorClaimsKey, claims)
}

func GetOperatorClaims(ctx context.Context) *OperatorClaims {
	if claims, ok := ctx.Value(operatorClaimsKey).(*OperatorClaims); ok {
		return claims
	}
	return nil
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
